// ABOUTME: Lock-free SPSC ring buffer package for real-time audio
// ABOUTME: Bounded frame transport with partial-transfer semantics
// Package ring provides a lock-free circular buffer for audio frames.
//
// The buffer is safe for exactly one producer goroutine and one consumer
// goroutine with no mutexes: each position counter has a single writer, so
// there are no CAS loops and no ABA hazards. Transfers are partial rather
// than blocking, which keeps worst-case latency on the audio path bounded;
// shortened transfers increment diagnostic overrun/underrun counters instead
// of raising errors.
//
// Capacity rounds up to a power of two so positions wrap with bit masking.
//
// Example:
//
//	rb, err := ring.New(8192, 2)
//
//	// producer goroutine:
//	written := rb.Write(block, frames)
//
//	// consumer goroutine (e.g. an audio device callback):
//	got := rb.Read(out, frames)
//	// zero-fill out[got*rb.Channels():] on underrun
package ring
