// ABOUTME: Test and demo signal source package
// ABOUTME: Provides sine, sweep and silence generators implementing audio.Source
// Package signal provides generated audio sources for tests, demos and
// measurement.
//
// All generators implement audio.Source and produce interleaved normalized
// float32 samples with identical values on every channel:
//   - Sine: unbounded phase-continuous tone
//   - Sweep: finite logarithmic frequency sweep
//   - Silence: unbounded zeros
//   - Limit: wraps any source with a frame budget
//
// Example:
//
//	// exactly one second of A4 at 44.1 kHz
//	src := signal.Limit(signal.NewSine(44100, 2, 440, 0.5), 44100)
package signal
