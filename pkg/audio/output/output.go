// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

// Output represents an audio output device. Samples are interleaved
// normalized float32; integer conversion happens inside the backend that
// needs it.
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write queues interleaved samples for playback. Blocking here is the
	// pipeline's pacing: a backend may stall the caller until the device
	// has room.
	Write(samples []float32) error

	// Close releases output resources
	Close() error
}
