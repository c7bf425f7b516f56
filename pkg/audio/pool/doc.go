// ABOUTME: Pre-allocated audio buffer pool package
// ABOUTME: Zero-allocation acquire/release with automatic return-to-pool handles
// Package pool provides a fixed set of pre-allocated audio buffers for
// zero-allocation streaming.
//
// All storage is allocated when the pool is built. Acquire claims a buffer
// with atomic flag operations and returns a reference-counted Handle; the
// final Release on a handle returns the buffer automatically. Nothing in the
// acquire or release path blocks or allocates, so both ends are safe to call
// from the real-time audio thread. An exhausted pool yields nil rather than
// growing, and counts the failure for diagnostics.
//
// Example:
//
//	p, err := pool.New(pool.Config{Buffers: 8, FramesPerBuffer: 1024, Channels: 2})
//
//	h := p.Acquire()
//	if h == nil {
//	    // pool exhausted: degrade, never block
//	}
//	fill(h.Samples())
//	h.Release() // buffer returns to the pool
package pool
