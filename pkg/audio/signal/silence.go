// ABOUTME: Silence source
// ABOUTME: Unbounded zero-sample generator for priming and gap filling
package signal

// Silence generates unbounded zero samples.
type Silence struct {
	sampleRate int
	channels   int
}

// NewSilence creates a silence source. Zero arguments take defaults:
// 48000 Hz, 2 channels.
func NewSilence(sampleRate, channels int) *Silence {
	if sampleRate == 0 {
		sampleRate = 48000
	}
	if channels == 0 {
		channels = 2
	}
	return &Silence{sampleRate: sampleRate, channels: channels}
}

// ReadSamples fills dst with whole frames of silence.
func (s *Silence) ReadSamples(dst []float32) (int, error) {
	n := len(dst) / s.channels * s.channels
	for i := 0; i < n; i++ {
		dst[i] = 0
	}
	return n, nil
}

// SampleRate returns the source's sample rate in Hz.
func (s *Silence) SampleRate() int { return s.sampleRate }

// Channels returns the interleaved channel count.
func (s *Silence) Channels() int { return s.channels }

// Close is a no-op.
func (s *Silence) Close() error { return nil }
