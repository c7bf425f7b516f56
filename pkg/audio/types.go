// ABOUTME: Audio type definitions
// ABOUTME: Defines sample formats, stream formats and sample blocks
package audio

import (
	"fmt"
	"time"
)

// MaxChannels is the largest channel count the library processes.
const MaxChannels = 8

// SampleFormat identifies the in-memory encoding of PCM samples.
type SampleFormat int

const (
	FormatInt16 SampleFormat = iota
	FormatInt32
	FormatFloat32
)

// BytesPerSample returns the storage size of one sample, or 0 for an
// unknown format.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatInt16:
		return 2
	case FormatInt32, FormatFloat32:
		return 4
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatInt16:
		return "int16"
	case FormatInt32:
		return "int32"
	case FormatFloat32:
		return "float32"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// Format describes a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
	Sample     SampleFormat
}

// DefaultFormat is the library's native working format: 48 kHz stereo float32.
func DefaultFormat() Format {
	return Format{SampleRate: 48000, Channels: 2, Sample: FormatFloat32}
}

// Validate checks that the format describes a processable stream.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate %d: %w", f.SampleRate, ErrInvalidSampleRate)
	}
	if f.Channels < 1 || f.Channels > MaxChannels {
		return fmt.Errorf("channels %d: %w", f.Channels, ErrInvalidChannels)
	}
	if f.Sample.BytesPerSample() == 0 {
		return fmt.Errorf("sample format %v: %w", f.Sample, ErrInvalidFormat)
	}
	return nil
}

// FrameBytes returns the storage size of one frame (one sample per channel).
func (f Format) FrameBytes() int {
	return f.Channels * f.Sample.BytesPerSample()
}

// Duration returns the wall time covered by the given frame count.
func (f Format) Duration(frames int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Block is a chunk of interleaved normalized samples. Data holds at least
// Frames*Format.Channels values in [-1, 1].
type Block struct {
	Format Format
	Frames int
	Data   []float32
}

// Samples returns the active portion of the block's data.
func (b Block) Samples() []float32 {
	return b.Data[:b.Frames*b.Format.Channels]
}

// Duration returns the wall time the block covers.
func (b Block) Duration() time.Duration {
	return b.Format.Duration(b.Frames)
}

// BlockFromBytes decodes little-endian raw PCM into a normalized block. The
// byte count must be a whole number of frames in the given format.
func BlockFromBytes(format Format, raw []byte) (Block, error) {
	if err := format.Validate(); err != nil {
		return Block{}, err
	}
	frameBytes := format.FrameBytes()
	if len(raw)%frameBytes != 0 {
		return Block{}, fmt.Errorf("%d bytes is not a whole frame count (%d bytes/frame): %w",
			len(raw), frameBytes, ErrInvalidFormat)
	}
	frames := len(raw) / frameBytes
	data := make([]float32, frames*format.Channels)

	switch format.Sample {
	case FormatInt16:
		DecodeInt16LE(data, raw)
	case FormatInt32:
		DecodeInt32LE(data, raw)
	case FormatFloat32:
		DecodeFloat32LE(data, raw)
	}
	return Block{Format: format, Frames: frames, Data: data}, nil
}

// AppendBytes serializes the block's samples to little-endian raw PCM in the
// block's sample format, appending to dst.
func (b Block) AppendBytes(dst []byte) []byte {
	samples := b.Samples()
	start := len(dst)
	dst = append(dst, make([]byte, len(samples)*b.Format.Sample.BytesPerSample())...)
	out := dst[start:]

	switch b.Format.Sample {
	case FormatInt16:
		EncodeInt16LE(out, samples)
	case FormatInt32:
		EncodeInt32LE(out, samples)
	case FormatFloat32:
		EncodeFloat32LE(out, samples)
	}
	return dst
}
