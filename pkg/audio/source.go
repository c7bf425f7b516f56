// ABOUTME: Source interface for audio producers
// ABOUTME: Implementations feed interleaved float32 samples into the pipeline
package audio

// Source produces interleaved normalized samples.
//
// ReadSamples fills dst with up to len(dst) samples (individual values, not
// frames) and returns the number written. Implementations deliver whole
// frames only, so the count is always a multiple of Channels(). A source
// returns io.EOF once its final samples have been delivered; a short read
// without error means more data will follow.
type Source interface {
	ReadSamples(dst []float32) (int, error)
	SampleRate() int
	Channels() int
	Close() error
}
