// ABOUTME: Tests for sample format conversions
// ABOUTME: Verifies full-scale normalization, clipping and NaN handling
package audio

import (
	"math"
	"testing"
)

func TestInt16Float32RoundTrip(t *testing.T) {
	// n/32768 is exact in float32 for every int16 value, so the round trip
	// must be lossless.
	src := []int16{0, 1, -1, 100, -100, 12345, -12345, 32767, -32768}

	floats := make([]float32, len(src))
	if n := Int16ToFloat32(floats, src); n != len(src) {
		t.Fatalf("expected %d samples, got %d", len(src), n)
	}

	back := make([]int16, len(src))
	Float32ToInt16(back, floats)

	for i, original := range src {
		if back[i] != original {
			t.Errorf("round-trip failed: %d -> %f -> %d", original, floats[i], back[i])
		}
	}
}

func TestFloat32ToInt16Clipping(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"half", 0.5, 16384},
		{"full scale positive clips", 1.0, 32767},
		{"full scale negative", -1.0, -32768},
		{"over range", 2.0, 32767},
		{"under range", -2.0, -32768},
		{"nan", float32(math.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]int16, 1)
			Float32ToInt16(out, []float32{tt.input})
			if out[0] != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, out[0])
			}
		})
	}
}

func TestInt32Float32Conversion(t *testing.T) {
	// Powers of two survive the float32 mantissa exactly.
	exact := []int32{0, 1 << 20, -(1 << 20), 1 << 30, -(1 << 30), math.MinInt32}
	floats := make([]float32, len(exact))
	Int32ToFloat32(floats, exact)

	back := make([]int32, len(exact))
	Float32ToInt32(back, floats)
	for i, original := range exact {
		if back[i] != original {
			t.Errorf("round-trip failed: %d -> %f -> %d", original, floats[i], back[i])
		}
	}

	// Arbitrary values land within float32 precision of full scale.
	approx := []int32{123456789, -987654321}
	floats = make([]float32, len(approx))
	Int32ToFloat32(floats, approx)
	Float32ToInt32(back[:len(approx)], floats)
	for i, original := range approx {
		diff := int64(back[i]) - int64(original)
		if diff < -256 || diff > 256 {
			t.Errorf("expected within 256 of %d, got %d", original, back[i])
		}
	}
}

func TestDecodeInt24LE(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected float32
	}{
		{"zero", []byte{0, 0, 0}, 0},
		{"positive", []byte{0x00, 0x00, 0x40}, 0.5},
		{"negative small", []byte{0x00, 0xFF, 0xFF}, -256.0 / scale24},
		{"max negative", []byte{0x00, 0x00, 0x80}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]float32, 1)
			if n := DecodeInt24LE(out, tt.input); n != 1 {
				t.Fatalf("expected 1 sample, got %d", n)
			}
			if out[0] != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, out[0])
			}
		})
	}
}

func TestInt24RoundTrip(t *testing.T) {
	src := []float32{0, 0.5, -0.5, 0.999, -1}
	raw := make([]byte, len(src)*3)
	EncodeInt24LE(raw, src)

	back := make([]float32, len(src))
	DecodeInt24LE(back, raw)

	for i, want := range src {
		if diff := back[i] - want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("sample %d: expected %f, got %f", i, want, back[i])
		}
	}
}

func TestDecodeFloat32LESanitizes(t *testing.T) {
	raw := make([]byte, 12)
	EncodeFloat32LE(raw[0:], []float32{float32(math.NaN())})
	EncodeFloat32LE(raw[4:], []float32{2.5})
	EncodeFloat32LE(raw[8:], []float32{-3})

	out := make([]float32, 3)
	DecodeFloat32LE(out, raw)

	expected := []float32{0, 1, -1}
	for i, want := range expected {
		if out[i] != want {
			t.Errorf("sample %d: expected %f, got %f", i, want, out[i])
		}
	}
}

func TestConvertShortDst(t *testing.T) {
	// The shorter slice bounds the conversion.
	src := []int16{1, 2, 3, 4}
	dst := make([]float32, 2)
	if n := Int16ToFloat32(dst, src); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}
