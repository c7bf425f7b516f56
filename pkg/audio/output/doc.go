// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface with oto, malgo, PortAudio and null sinks
// Package output provides audio playback sinks behind a small Output
// interface.
//
// Backends:
//   - Oto: io.Pipe into a persistent oto player (no CGo)
//   - Malgo: miniaudio device fed from a lock-free ring buffer
//   - PortAudio: cross-platform callback playback (build with -tags portaudio)
//   - Null: counting sink for tests and benchmarks
//
// All backends accept interleaved float32 samples in [-1, 1].
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(48000, 2)
//	err = out.Write(samples)
package output
