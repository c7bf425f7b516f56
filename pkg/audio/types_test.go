// ABOUTME: Tests for audio types
// ABOUTME: Tests format validation and block byte codecs
package audio

import (
	"errors"
	"testing"
	"time"
)

func TestSampleFormatBytesPerSample(t *testing.T) {
	tests := []struct {
		name     string
		format   SampleFormat
		expected int
	}{
		{"int16", FormatInt16, 2},
		{"int32", FormatInt32, 4},
		{"float32", FormatFloat32, 4},
		{"unknown", SampleFormat(99), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.BytesPerSample(); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr error
	}{
		{"valid stereo", Format{48000, 2, FormatFloat32}, nil},
		{"valid mono int16", Format{8000, 1, FormatInt16}, nil},
		{"valid 8 channel", Format{192000, 8, FormatInt32}, nil},
		{"zero rate", Format{0, 2, FormatFloat32}, ErrInvalidSampleRate},
		{"negative rate", Format{-44100, 2, FormatFloat32}, ErrInvalidSampleRate},
		{"zero channels", Format{48000, 0, FormatFloat32}, ErrInvalidChannels},
		{"too many channels", Format{48000, 9, FormatFloat32}, ErrInvalidChannels},
		{"unknown sample format", Format{48000, 2, SampleFormat(99)}, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFormatFrameBytes(t *testing.T) {
	f := Format{SampleRate: 48000, Channels: 2, Sample: FormatInt16}
	if got := f.FrameBytes(); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}

	f.Sample = FormatFloat32
	f.Channels = 6
	if got := f.FrameBytes(); got != 24 {
		t.Errorf("expected 24, got %d", got)
	}
}

func TestFormatDuration(t *testing.T) {
	f := Format{SampleRate: 48000, Channels: 2, Sample: FormatFloat32}
	if got := f.Duration(48000); got != time.Second {
		t.Errorf("expected 1s, got %v", got)
	}
	if got := f.Duration(4800); got != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", got)
	}
}

func TestBlockFromBytesInt16(t *testing.T) {
	format := Format{SampleRate: 48000, Channels: 2, Sample: FormatInt16}
	// Two frames: (0, 16384), (-16384, -32768), little-endian
	raw := []byte{
		0x00, 0x00, 0x00, 0x40,
		0x00, 0xC0, 0x00, 0x80,
	}

	b, err := BlockFromBytes(format, raw)
	if err != nil {
		t.Fatalf("BlockFromBytes failed: %v", err)
	}
	if b.Frames != 2 {
		t.Fatalf("expected 2 frames, got %d", b.Frames)
	}

	expected := []float32{0, 0.5, -0.5, -1}
	for i, want := range expected {
		if b.Data[i] != want {
			t.Errorf("sample %d: expected %f, got %f", i, want, b.Data[i])
		}
	}
}

func TestBlockFromBytesPartialFrame(t *testing.T) {
	format := Format{SampleRate: 48000, Channels: 2, Sample: FormatInt16}
	_, err := BlockFromBytes(format, []byte{0x00, 0x00, 0x00})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestBlockAppendBytesRoundTrip(t *testing.T) {
	format := Format{SampleRate: 44100, Channels: 1, Sample: FormatInt16}
	samples := []float32{0, 0.25, -0.25, 0.5, -1}
	b := Block{Format: format, Frames: len(samples), Data: samples}

	raw := b.AppendBytes(nil)
	if len(raw) != len(samples)*2 {
		t.Fatalf("expected %d bytes, got %d", len(samples)*2, len(raw))
	}

	decoded, err := BlockFromBytes(format, raw)
	if err != nil {
		t.Fatalf("BlockFromBytes failed: %v", err)
	}
	for i, want := range samples {
		if diff := decoded.Data[i] - want; diff > 1e-4 || diff < -1e-4 {
			t.Errorf("sample %d: expected %f, got %f", i, want, decoded.Data[i])
		}
	}
}

func TestBlockSamples(t *testing.T) {
	b := Block{
		Format: Format{SampleRate: 48000, Channels: 2, Sample: FormatFloat32},
		Frames: 2,
		Data:   make([]float32, 16), // oversized backing
	}
	if got := len(b.Samples()); got != 4 {
		t.Errorf("expected 4 active samples, got %d", got)
	}
}
