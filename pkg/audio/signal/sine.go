// ABOUTME: Sine tone source
// ABOUTME: Phase-continuous test tone generator
package signal

import "math"

// Sine generates a pure tone, phase-continuous across reads. The zero and
// negative fields of the constructor default to 48000 Hz, stereo, 440 Hz at
// half amplitude, the library's standard test tone.
type Sine struct {
	sampleRate int
	channels   int
	frequency  float64
	amplitude  float64
	index      uint64
}

// NewSine creates a sine source. Zero arguments take defaults: 48000 Hz,
// 2 channels, 440 Hz, amplitude 0.5.
func NewSine(sampleRate, channels int, frequency, amplitude float64) *Sine {
	if sampleRate == 0 {
		sampleRate = 48000
	}
	if channels == 0 {
		channels = 2
	}
	if frequency == 0 {
		frequency = 440.0 // A4 note
	}
	if amplitude == 0 {
		amplitude = 0.5
	}
	return &Sine{
		sampleRate: sampleRate,
		channels:   channels,
		frequency:  frequency,
		amplitude:  amplitude,
	}
}

// ReadSamples fills dst with whole frames of the tone, the same value on
// every channel. The source is unbounded and never returns an error.
func (s *Sine) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	for i := 0; i < frames; i++ {
		t := float64(s.index+uint64(i)) / float64(s.sampleRate)
		v := float32(s.amplitude * math.Sin(2*math.Pi*s.frequency*t))
		for ch := 0; ch < s.channels; ch++ {
			dst[i*s.channels+ch] = v
		}
	}
	s.index += uint64(frames)
	return frames * s.channels, nil
}

// SampleRate returns the tone's sample rate in Hz.
func (s *Sine) SampleRate() int { return s.sampleRate }

// Channels returns the interleaved channel count.
func (s *Sine) Channels() int { return s.channels }

// Close is a no-op.
func (s *Sine) Close() error { return nil }
