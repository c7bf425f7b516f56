// ABOUTME: Null audio output that discards samples
// ABOUTME: Used by tests, benchmarks and the clock bench tool
package output

import (
	"fmt"
	"sync/atomic"

	"github.com/tactus-audio/tactus-go/pkg/audio"
)

// Null is an output that counts and discards everything written to it. It
// never paces the writer, which makes it useful for measuring the rest of
// the pipeline at full speed.
type Null struct {
	sampleRate int
	channels   int
	opened     bool
	frames     atomic.Int64
}

// NewNull creates a discarding output.
func NewNull() *Null {
	return &Null{}
}

// Open records the stream format.
func (n *Null) Open(sampleRate, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("null output rate %d: %w", sampleRate, audio.ErrInvalidSampleRate)
	}
	if channels < 1 || channels > audio.MaxChannels {
		return fmt.Errorf("null output channels %d: %w", channels, audio.ErrInvalidChannels)
	}
	n.sampleRate = sampleRate
	n.channels = channels
	n.opened = true
	return nil
}

// Write discards the samples, counting the frames.
func (n *Null) Write(samples []float32) error {
	if !n.opened {
		return fmt.Errorf("output not initialized")
	}
	n.frames.Add(int64(len(samples) / n.channels))
	return nil
}

// Close marks the output closed.
func (n *Null) Close() error {
	n.opened = false
	return nil
}

// FramesWritten returns the total frames discarded since Open.
func (n *Null) FramesWritten() int64 {
	return n.frames.Load()
}
