// ABOUTME: Fixed pre-allocated audio buffer pool with refcounted handles
// ABOUTME: Hands out buffers without allocating; handles auto-return on last release
package pool

import (
	"fmt"
	"sync/atomic"

	"github.com/tactus-audio/tactus-go/pkg/audio"
)

const (
	defaultBuffers         = 8
	defaultFramesPerBuffer = 1024
	defaultChannels        = 2
)

// Config holds pool configuration
type Config struct {
	// Buffers is the number of pre-allocated buffers (default: 8)
	Buffers int

	// FramesPerBuffer is the fixed size of each buffer (default: 1024)
	FramesPerBuffer int

	// Channels is the interleaved channel count (default: 2)
	Channels int
}

// withDefaults returns the configuration with zero values filled in.
func (c Config) withDefaults() Config {
	if c.Buffers == 0 {
		c.Buffers = defaultBuffers
	}
	if c.FramesPerBuffer == 0 {
		c.FramesPerBuffer = defaultFramesPerBuffer
	}
	if c.Channels == 0 {
		c.Channels = defaultChannels
	}
	return c
}

// Validate checks the configuration after defaulting.
func (c Config) Validate() error {
	if c.Buffers < 1 {
		return fmt.Errorf("pool size %d: %w", c.Buffers, audio.ErrBufferTooSmall)
	}
	if c.FramesPerBuffer < 1 {
		return fmt.Errorf("buffer size %d frames: %w", c.FramesPerBuffer, audio.ErrBufferTooSmall)
	}
	if c.Channels < 1 || c.Channels > audio.MaxChannels {
		return fmt.Errorf("pool channels %d: %w", c.Channels, audio.ErrInvalidChannels)
	}
	return nil
}

// Pool is a closed set of pre-allocated, fixed-size audio buffers. Acquire
// and the handle release path never allocate and never block, so both are
// safe on the real-time thread. When every buffer is out, Acquire returns
// nil and counts the failure instead of growing the pool.
type Pool struct {
	cfg     Config
	handles []*Handle

	cursor    atomic.Uint32
	available atomic.Int32
	failures  atomic.Uint64
}

// Handle grants temporary exclusive use of one pool buffer. It is reference
// counted: Retain shares it, Release drops one reference, and the final
// Release returns the buffer to the pool automatically. There is no separate
// explicit return API.
type Handle struct {
	pool    *Pool
	index   int
	data    []float32
	claimed atomic.Bool
	refs    atomic.Int32
}

// New pre-allocates every buffer and handle up front.
func New(cfg Config) (*Pool, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:     cfg,
		handles: make([]*Handle, cfg.Buffers),
	}
	for i := range p.handles {
		p.handles[i] = &Handle{
			pool:  p,
			index: i,
			data:  make([]float32, cfg.FramesPerBuffer*cfg.Channels),
		}
	}
	p.available.Store(int32(cfg.Buffers))
	return p, nil
}

// Acquire claims a free buffer and returns its handle with one reference
// held, or nil when the pool is exhausted. The scan starts at a rotating
// cursor so repeated acquire/release traffic spreads across slots.
func (p *Pool) Acquire() *Handle {
	n := len(p.handles)
	start := int((p.cursor.Add(1) - 1) % uint32(n))

	for i := 0; i < n; i++ {
		h := p.handles[(start+i)%n]
		if h.claimed.CompareAndSwap(false, true) {
			h.refs.Store(1)
			p.available.Add(-1)
			return h
		}
	}
	p.failures.Add(1)
	return nil
}

// Size returns the fixed number of buffers in the pool.
func (p *Pool) Size() int {
	return p.cfg.Buffers
}

// FramesPerBuffer returns the fixed frame capacity of each buffer.
func (p *Pool) FramesPerBuffer() int {
	return p.cfg.FramesPerBuffer
}

// Channels returns the interleaved channel count of each buffer.
func (p *Pool) Channels() int {
	return p.cfg.Channels
}

// Available returns the number of buffers currently free. The count is
// advisory under concurrent traffic and is clamped to [0, Size].
func (p *Pool) Available() int {
	v := int(p.available.Load())
	if v < 0 {
		return 0
	}
	if v > p.cfg.Buffers {
		return p.cfg.Buffers
	}
	return v
}

// IsEmpty reports whether no buffers are free.
func (p *Pool) IsEmpty() bool {
	return p.Available() == 0
}

// IsFull reports whether every buffer is home.
func (p *Pool) IsFull() bool {
	return p.Available() == p.cfg.Buffers
}

// AllocationFailures returns the number of Acquire calls that found the
// pool exhausted.
func (p *Pool) AllocationFailures() uint64 {
	return p.failures.Load()
}

// Samples returns the handle's full interleaved buffer.
func (h *Handle) Samples() []float32 {
	return h.data
}

// Frames returns the buffer capacity in frames.
func (h *Handle) Frames() int {
	return h.pool.cfg.FramesPerBuffer
}

// Channels returns the interleaved channel count.
func (h *Handle) Channels() int {
	return h.pool.cfg.Channels
}

// Retain adds a reference so another owner can hold the buffer. Retaining a
// handle that has already fully released is a guarded no-op.
func (h *Handle) Retain() {
	for {
		refs := h.refs.Load()
		if refs <= 0 {
			return
		}
		if h.refs.CompareAndSwap(refs, refs+1) {
			return
		}
	}
}

// Release drops one reference; the final release returns the buffer to the
// pool. Releasing past zero is a programming error, guarded so the count
// never goes negative and the buffer returns exactly once.
func (h *Handle) Release() {
	for {
		refs := h.refs.Load()
		if refs <= 0 {
			return
		}
		if h.refs.CompareAndSwap(refs, refs-1) {
			if refs == 1 {
				h.claimed.Store(false)
				h.pool.available.Add(1)
			}
			return
		}
	}
}
