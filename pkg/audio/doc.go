// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Block, Source and sample conversion functions
// Package audio provides fundamental audio types and utilities for real-time audio processing.
//
// This package defines core types used throughout the tactus library:
//   - Format: Describes a PCM stream (sample rate, channels, sample format)
//   - Block: A chunk of interleaved float32 samples with its format
//   - Source: The interface producers implement to feed the pipeline
//
// It also provides utilities for converting between sample formats:
//   - int16/int32 ↔ float32 full-scale conversions with clamping
//   - little-endian byte packing for 16/24/32-bit PCM
//   - adapters to and from github.com/go-audio/audio buffer types
//
// All processing inside the library happens on normalized float32 samples in
// [-1, 1], interleaved by channel. Integer formats exist at the edges only.
//
// Example:
//
//	format := audio.Format{
//	    SampleRate: 48000,
//	    Channels:   2,
//	    Sample:     audio.FormatFloat32,
//	}
//
//	// Convert captured 16-bit samples to the normalized domain
//	audio.Int16ToFloat32(dst, src)
package audio
