// ABOUTME: Logarithmic frequency sweep source
// ABOUTME: Finite test signal covering a frequency range at constant amplitude
package signal

import (
	"io"
	"math"
	"time"
)

// Sweep generates a logarithmic sine sweep from a start to an end frequency
// over a fixed duration, then reports io.EOF. Sweeps are the standard probe
// signal for measuring a converter's frequency response.
type Sweep struct {
	sampleRate  int
	channels    int
	startHz     float64
	endHz       float64
	amplitude   float64
	totalFrames int64

	index int64
	phase float64
}

// NewSweep creates a sweep source. Zero arguments take defaults: 48000 Hz,
// 2 channels, 20 Hz up to 90% of Nyquist, amplitude 0.5, 1 second.
func NewSweep(sampleRate, channels int, startHz, endHz float64, duration time.Duration) *Sweep {
	if sampleRate == 0 {
		sampleRate = 48000
	}
	if channels == 0 {
		channels = 2
	}
	if startHz <= 0 {
		startHz = 20
	}
	if endHz <= 0 {
		endHz = 0.45 * float64(sampleRate)
	}
	if duration <= 0 {
		duration = time.Second
	}
	return &Sweep{
		sampleRate:  sampleRate,
		channels:    channels,
		startHz:     startHz,
		endHz:       endHz,
		amplitude:   0.5,
		totalFrames: int64(duration) * int64(sampleRate) / int64(time.Second),
	}
}

// ReadSamples fills dst with whole frames of the sweep. Once the final
// frames have been delivered it returns io.EOF.
func (s *Sweep) ReadSamples(dst []float32) (int, error) {
	if s.index >= s.totalFrames {
		return 0, io.EOF
	}

	frames := int64(len(dst) / s.channels)
	if remain := s.totalFrames - s.index; frames > remain {
		frames = remain
	}

	// Instantaneous frequency moves exponentially from start to end; the
	// phase accumulates per sample so the waveform stays continuous.
	ratio := s.endHz / s.startHz
	for i := int64(0); i < frames; i++ {
		progress := float64(s.index+i) / float64(s.totalFrames)
		freq := s.startHz * math.Pow(ratio, progress)
		s.phase += 2 * math.Pi * freq / float64(s.sampleRate)

		v := float32(s.amplitude * math.Sin(s.phase))
		for ch := 0; ch < s.channels; ch++ {
			dst[int(i)*s.channels+ch] = v
		}
	}
	s.index += frames

	var err error
	if s.index >= s.totalFrames {
		err = io.EOF
	}
	return int(frames) * s.channels, err
}

// SampleRate returns the sweep's sample rate in Hz.
func (s *Sweep) SampleRate() int { return s.sampleRate }

// Channels returns the interleaved channel count.
func (s *Sweep) Channels() int { return s.channels }

// Close is a no-op.
func (s *Sweep) Close() error { return nil }
