// ABOUTME: Frame-limiting source wrapper
// ABOUTME: Truncates an unbounded source to a fixed number of frames
package signal

import (
	"io"

	"github.com/tactus-audio/tactus-go/pkg/audio"
)

// Limited wraps a source and stops it after a fixed number of frames,
// turning an unbounded generator into a finite stream.
type Limited struct {
	src       audio.Source
	remaining int64
}

// Limit returns a source that delivers at most frames frames from src and
// then reports io.EOF.
func Limit(src audio.Source, frames int64) *Limited {
	return &Limited{src: src, remaining: frames}
}

// ReadSamples reads from the wrapped source, clamped to the remaining frame
// budget. io.EOF arrives with (or after) the final frames, whichever the
// wrapped source produces first.
func (l *Limited) ReadSamples(dst []float32) (int, error) {
	if l.remaining <= 0 {
		return 0, io.EOF
	}

	ch := l.src.Channels()
	limit := int64(len(dst) / ch)
	if limit > l.remaining {
		limit = l.remaining
	}

	n, err := l.src.ReadSamples(dst[:limit*int64(ch)])
	l.remaining -= int64(n / ch)
	if l.remaining <= 0 && err == nil {
		err = io.EOF
	}
	return n, err
}

// SampleRate returns the wrapped source's sample rate in Hz.
func (l *Limited) SampleRate() int { return l.src.SampleRate() }

// Channels returns the wrapped source's channel count.
func (l *Limited) Channels() int { return l.src.Channels() }

// Close closes the wrapped source.
func (l *Limited) Close() error { return l.src.Close() }
