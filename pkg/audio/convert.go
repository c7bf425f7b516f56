// ABOUTME: Sample format conversion helpers
// ABOUTME: Full-scale normalization between integer PCM, raw bytes and float32
package audio

import (
	"encoding/binary"
	"math"
)

const (
	scale16 = 32768.0      // 2^15
	scale24 = 8388608.0    // 2^23
	scale32 = 2147483648.0 // 2^31
)

// clampUnit sanitizes one normalized sample: NaN becomes 0, everything else
// is clamped to [-1, 1].
func clampUnit(v float32) float32 {
	switch {
	case v != v: // NaN
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// Int16ToFloat32 converts int16 PCM to normalized float32. Returns the
// number of samples converted (the shorter of the two slices).
func Int16ToFloat32(dst []float32, src []int16) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = float32(src[i]) / scale16
	}
	return n
}

// Float32ToInt16 converts normalized float32 to int16 PCM, rounding half
// away from zero and clipping to the int16 range.
func Float32ToInt16(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		v := math.Round(float64(clampUnit(src[i])) * scale16)
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		dst[i] = int16(v)
	}
	return n
}

// Int32ToFloat32 converts int32 PCM to normalized float32.
func Int32ToFloat32(dst []float32, src []int32) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = float32(float64(src[i]) / scale32)
	}
	return n
}

// Float32ToInt32 converts normalized float32 to int32 PCM, rounding half
// away from zero and clipping to the int32 range.
func Float32ToInt32(dst []int32, src []float32) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		v := math.Round(float64(clampUnit(src[i])) * scale32)
		if v > math.MaxInt32 {
			v = math.MaxInt32
		} else if v < math.MinInt32 {
			v = math.MinInt32
		}
		dst[i] = int32(v)
	}
	return n
}

// DecodeInt16LE unpacks little-endian 16-bit PCM bytes into normalized
// float32 samples. Returns the number of samples decoded.
func DecodeInt16LE(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/2)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(src[i*2:]))
		dst[i] = float32(s) / scale16
	}
	return n
}

// EncodeInt16LE packs normalized float32 samples into little-endian 16-bit
// PCM bytes. Returns the number of samples encoded.
func EncodeInt16LE(dst []byte, src []float32) int {
	n := min(len(dst)/2, len(src))
	for i := 0; i < n; i++ {
		v := math.Round(float64(clampUnit(src[i])) * scale16)
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(v)))
	}
	return n
}

// DecodeInt24LE unpacks little-endian 24-bit (3 byte) PCM with sign
// extension into normalized float32 samples.
func DecodeInt24LE(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/3)
	for i := 0; i < n; i++ {
		b := src[i*3:]
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF // sign extend
		}
		dst[i] = float32(float64(v) / scale24)
	}
	return n
}

// EncodeInt24LE packs normalized float32 samples into little-endian 24-bit
// (3 byte) PCM.
func EncodeInt24LE(dst []byte, src []float32) int {
	n := min(len(dst)/3, len(src))
	for i := 0; i < n; i++ {
		v := math.Round(float64(clampUnit(src[i])) * scale24)
		if v > scale24-1 {
			v = scale24 - 1
		} else if v < -scale24 {
			v = -scale24
		}
		s := int32(v)
		dst[i*3] = byte(s)
		dst[i*3+1] = byte(s >> 8)
		dst[i*3+2] = byte(s >> 16)
	}
	return n
}

// DecodeInt32LE unpacks little-endian 32-bit PCM bytes into normalized
// float32 samples.
func DecodeInt32LE(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/4)
	for i := 0; i < n; i++ {
		s := int32(binary.LittleEndian.Uint32(src[i*4:]))
		dst[i] = float32(float64(s) / scale32)
	}
	return n
}

// EncodeInt32LE packs normalized float32 samples into little-endian 32-bit
// PCM bytes.
func EncodeInt32LE(dst []byte, src []float32) int {
	n := min(len(dst)/4, len(src))
	for i := 0; i < n; i++ {
		v := math.Round(float64(clampUnit(src[i])) * scale32)
		if v > math.MaxInt32 {
			v = math.MaxInt32
		} else if v < math.MinInt32 {
			v = math.MinInt32
		}
		binary.LittleEndian.PutUint32(dst[i*4:], uint32(int32(v)))
	}
	return n
}

// DecodeFloat32LE unpacks little-endian IEEE 754 float32 bytes, sanitizing
// NaN to 0 and clamping to [-1, 1].
func DecodeFloat32LE(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/4)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(src[i*4:])
		dst[i] = clampUnit(math.Float32frombits(bits))
	}
	return n
}

// EncodeFloat32LE packs float32 samples into little-endian IEEE 754 bytes.
func EncodeFloat32LE(dst []byte, src []float32) int {
	n := min(len(dst)/4, len(src))
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(src[i]))
	}
	return n
}
