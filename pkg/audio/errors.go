// ABOUTME: Sentinel errors for configuration failures
// ABOUTME: Callers match these with errors.Is
package audio

import "errors"

var (
	// ErrInvalidSampleRate reports a zero or negative sample rate.
	ErrInvalidSampleRate = errors.New("audio: invalid sample rate")

	// ErrInvalidChannels reports a channel count outside 1..MaxChannels.
	ErrInvalidChannels = errors.New("audio: invalid channel count")

	// ErrInvalidFormat reports an unusable sample format or layout.
	ErrInvalidFormat = errors.New("audio: invalid sample format")

	// ErrBufferTooSmall reports a destination too small for the request.
	ErrBufferTooSmall = errors.New("audio: buffer too small")
)
