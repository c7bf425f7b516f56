// ABOUTME: Adapters bridging Block and go-audio buffer types
// ABOUTME: Lets tactus interoperate with the go-audio ecosystem
package audio

import (
	"fmt"

	goaudio "github.com/go-audio/audio"
)

// BlockToIntBuffer converts a block to a go-audio IntBuffer at the given bit
// depth (16, 24 or 32).
func BlockToIntBuffer(b Block, bitDepth int) (*goaudio.IntBuffer, error) {
	var scale float64
	switch bitDepth {
	case 16:
		scale = scale16
	case 24:
		scale = scale24
	case 32:
		scale = scale32
	default:
		return nil, fmt.Errorf("bit depth %d: %w", bitDepth, ErrInvalidFormat)
	}

	samples := b.Samples()
	data := make([]int, len(samples))
	for i, v := range samples {
		f := float64(clampUnit(v)) * scale
		if f > scale-1 {
			f = scale - 1
		}
		data[i] = int(f)
	}
	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: b.Format.Channels,
			SampleRate:  b.Format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}, nil
}

// BlockFromIntBuffer converts a go-audio IntBuffer to a normalized block.
// A zero SourceBitDepth is treated as 16-bit.
func BlockFromIntBuffer(buf *goaudio.IntBuffer) (Block, error) {
	if buf == nil || buf.Format == nil {
		return Block{}, fmt.Errorf("nil buffer: %w", ErrInvalidFormat)
	}

	var scale float64
	switch buf.SourceBitDepth {
	case 0, 16:
		scale = scale16
	case 8:
		scale = 128.0
	case 24:
		scale = scale24
	case 32:
		scale = scale32
	default:
		return Block{}, fmt.Errorf("bit depth %d: %w", buf.SourceBitDepth, ErrInvalidFormat)
	}

	format := Format{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Sample:     FormatFloat32,
	}
	if err := format.Validate(); err != nil {
		return Block{}, err
	}
	if len(buf.Data)%format.Channels != 0 {
		return Block{}, fmt.Errorf("%d samples across %d channels: %w",
			len(buf.Data), format.Channels, ErrInvalidFormat)
	}

	data := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = clampUnit(float32(float64(v) / scale))
	}
	return Block{Format: format, Frames: len(data) / format.Channels, Data: data}, nil
}

// BlockToFloat32Buffer converts a block to a go-audio Float32Buffer. The
// sample data is copied.
func BlockToFloat32Buffer(b Block) *goaudio.Float32Buffer {
	samples := b.Samples()
	data := make([]float32, len(samples))
	copy(data, samples)
	return &goaudio.Float32Buffer{
		Format: &goaudio.Format{
			NumChannels: b.Format.Channels,
			SampleRate:  b.Format.SampleRate,
		},
		Data: data,
	}
}

// BlockFromFloat32Buffer converts a go-audio Float32Buffer to a block,
// sanitizing samples to [-1, 1].
func BlockFromFloat32Buffer(buf *goaudio.Float32Buffer) (Block, error) {
	if buf == nil || buf.Format == nil {
		return Block{}, fmt.Errorf("nil buffer: %w", ErrInvalidFormat)
	}

	format := Format{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Sample:     FormatFloat32,
	}
	if err := format.Validate(); err != nil {
		return Block{}, err
	}
	if len(buf.Data)%format.Channels != 0 {
		return Block{}, fmt.Errorf("%d samples across %d channels: %w",
			len(buf.Data), format.Channels, ErrInvalidFormat)
	}

	data := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = clampUnit(v)
	}
	return Block{Format: format, Frames: len(data) / format.Channels, Data: data}, nil
}
