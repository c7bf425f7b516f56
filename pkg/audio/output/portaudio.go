//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform callback playback fed from a lock-free ring buffer
package output

import (
	"fmt"
	"log"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/tactus-audio/tactus-go/pkg/audio/ring"
)

// Device-side buffering between Write and the PortAudio callback.
const portAudioBufferMs = 500

// PortAudio output implementation. Like the malgo backend it decouples
// the caller from the real-time callback with an SPSC ring buffer; the
// callback zero-fills on underrun instead of blocking.
type PortAudio struct {
	stream   *portaudio.Stream
	rb       *ring.Buffer
	channels int
	volume   int
	muted    bool
	scaled   []float32
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{volume: 100}
}

// Open initializes PortAudio
func (p *PortAudio) Open(sampleRate, channels int) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	rb, err := ring.New(sampleRate*portAudioBufferMs/1000, channels)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to create playback buffer: %w", err)
	}
	p.rb = rb
	p.channels = channels

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), 0, func(out []float32) {
		got := p.rb.Read(out, len(out)/p.channels)
		for i := got * p.channels; i < len(out); i++ {
			out[i] = 0
		}
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	log.Printf("Audio output initialized: %dHz, %d channels (portaudio)", sampleRate, channels)
	return nil
}

// Write queues audio samples for playback, waiting for callback drain
// when the ring is full.
func (p *PortAudio) Write(samples []float32) error {
	if p.stream == nil {
		return fmt.Errorf("output not opened")
	}

	if cap(p.scaled) < len(samples) {
		p.scaled = make([]float32, len(samples))
	}
	applyVolume(p.scaled[:len(samples)], samples, p.volume, p.muted)

	frames := len(samples) / p.channels
	written := 0
	for written < frames {
		free := p.rb.AvailableWrite()
		if free == 0 {
			if p.stream == nil {
				return fmt.Errorf("output closed during write")
			}
			time.Sleep(time.Millisecond)
			continue
		}
		n := frames - written
		if n > free {
			n = free
		}
		written += p.rb.Write(p.scaled[written*p.channels:len(samples)], n)
	}

	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			return err
		}
		if err := p.stream.Close(); err != nil {
			return err
		}
		p.stream = nil
	}
	return portaudio.Terminate()
}

// SetVolume sets the volume (0-100)
func (p *PortAudio) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.volume = volume
}

// SetMuted sets mute state
func (p *PortAudio) SetMuted(muted bool) {
	p.muted = muted
}
