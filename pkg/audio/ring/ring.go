// ABOUTME: Lock-free single-producer single-consumer audio ring buffer
// ABOUTME: Fixed-capacity frame transport between the pump and delivery threads
package ring

import (
	"fmt"
	"sync/atomic"

	"github.com/tactus-audio/tactus-go/pkg/audio"
)

// Buffer is a lock-free single-producer, single-consumer ring buffer of
// interleaved audio frames.
//
// Two monotonically increasing frame counters index a power-of-two backing
// store through bit masking. The producer stores writePos only after copying
// samples in; the consumer stores readPos only after copying samples out.
// Go's sync/atomic gives those stores release ordering, so published samples
// are visible before the counter that announces them.
//
// Thread assignment:
//   - Write: producer goroutine only
//   - Read, Clear: consumer goroutine only
//   - availability and diagnostic queries: any goroutine
type Buffer struct {
	writePos atomic.Uint64
	_        [56]byte // keep the counters on separate cache lines
	readPos  atomic.Uint64
	_        [56]byte

	overruns  atomic.Uint64
	underruns atomic.Uint64

	data      []float32
	mask      uint64
	capFrames int
	channels  int
}

// New creates a buffer holding at least capacityFrames interleaved frames.
// The capacity rounds up to the next power of two; CapacityFrames reports
// the rounded value.
func New(capacityFrames, channels int) (*Buffer, error) {
	if capacityFrames <= 0 {
		return nil, fmt.Errorf("ring capacity %d frames: %w", capacityFrames, audio.ErrBufferTooSmall)
	}
	if channels < 1 || channels > audio.MaxChannels {
		return nil, fmt.Errorf("ring channels %d: %w", channels, audio.ErrInvalidChannels)
	}

	size := 1
	for size < capacityFrames {
		size <<= 1
	}
	return &Buffer{
		data:      make([]float32, size*channels),
		mask:      uint64(size - 1),
		capFrames: size,
		channels:  channels,
	}, nil
}

// Write copies up to frames interleaved frames from src into the buffer and
// returns the number actually written. It never blocks: when free space runs
// short the transfer is partial and the overrun counter increments. Only call
// from the producer goroutine.
func (b *Buffer) Write(src []float32, frames int) int {
	if frames <= 0 {
		return 0
	}
	if have := len(src) / b.channels; frames > have {
		frames = have
	}

	w := b.writePos.Load()
	r := b.readPos.Load()
	free := b.capFrames - int(w-r)

	n := frames
	if n > free {
		n = free
		b.overruns.Add(1)
	}
	if n == 0 {
		return 0
	}

	pos := int(w&b.mask) * b.channels
	count := n * b.channels
	// Copy in one or two segments depending on wrap-around.
	first := len(b.data) - pos
	if first >= count {
		copy(b.data[pos:pos+count], src[:count])
	} else {
		copy(b.data[pos:], src[:first])
		copy(b.data[:count-first], src[first:count])
	}

	b.writePos.Store(w + uint64(n))
	return n
}

// Read copies up to frames interleaved frames into dst and returns the
// number actually read. It never blocks: when the buffer runs short the
// transfer is partial and the underrun counter increments. Only call from
// the consumer goroutine.
func (b *Buffer) Read(dst []float32, frames int) int {
	if frames <= 0 {
		return 0
	}
	if room := len(dst) / b.channels; frames > room {
		frames = room
	}

	r := b.readPos.Load()
	w := b.writePos.Load()
	available := int(w - r)

	n := frames
	if n > available {
		n = available
		b.underruns.Add(1)
	}
	if n == 0 {
		return 0
	}

	pos := int(r&b.mask) * b.channels
	count := n * b.channels
	first := len(b.data) - pos
	if first >= count {
		copy(dst[:count], b.data[pos:pos+count])
	} else {
		copy(dst[:first], b.data[pos:])
		copy(dst[first:count], b.data[:count-first])
	}

	b.readPos.Store(r + uint64(n))
	return n
}

// Clear discards everything buffered at the time of the call by advancing
// the read position to the write position. Only call from the consumer
// goroutine; frames the producer writes concurrently may survive.
func (b *Buffer) Clear() {
	b.readPos.Store(b.writePos.Load())
}

// AvailableRead returns the number of frames buffered for reading.
func (b *Buffer) AvailableRead() int {
	return int(b.writePos.Load() - b.readPos.Load())
}

// AvailableWrite returns the number of frames of free space.
func (b *Buffer) AvailableWrite() int {
	return b.capFrames - b.AvailableRead()
}

// CapacityFrames returns the rounded buffer capacity in frames.
func (b *Buffer) CapacityFrames() int {
	return b.capFrames
}

// Channels returns the interleaved channel count.
func (b *Buffer) Channels() int {
	return b.channels
}

// Overruns returns the number of Write calls shortened by a full buffer.
func (b *Buffer) Overruns() uint64 {
	return b.overruns.Load()
}

// Underruns returns the number of Read calls shortened by an empty buffer.
func (b *Buffer) Underruns() uint64 {
	return b.underruns.Load()
}
