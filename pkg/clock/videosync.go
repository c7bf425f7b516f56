// ABOUTME: Frame-accurate video synchronization extension for AudioClock
// ABOUTME: Quantizes audio time to frame boundaries and predicts drift ahead
package clock

import (
	"fmt"
	"time"
)

// SyncToVideoFrame records the offset between the audio timeline and a video
// frame timestamp. frameTime is the video clock's position for frame
// frameNumber. The clock must be running.
func (c *AudioClock) SyncToVideoFrame(frameTime RationalTime, frameNumber int64) error {
	if State(c.state.Load()) != StateRunning {
		return fmt.Errorf("cannot sync video frame: clock %v", c.State())
	}

	pos := c.CurrentTime()
	c.mu.Lock()
	c.avOffset = pos.Sub(frameTime)
	c.lastFrameTime = frameTime
	c.lastFrameNumber = frameNumber
	c.haveVideoSync = true
	c.mu.Unlock()
	return nil
}

// AVOffset returns audio position minus video position as of the most
// recent SyncToVideoFrame call. The second return is false until a frame
// has been synced.
func (c *AudioClock) AVOffset() (RationalTime, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.avOffset, c.haveVideoSync
}

// LastVideoFrame returns the timestamp and number of the most recently
// synced video frame.
func (c *AudioClock) LastVideoFrame() (RationalTime, int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFrameTime, c.lastFrameNumber
}

// FrameAccurateTime quantizes the current audio position to the nearest
// boundary of the given video frame rate (frames per second as a rational,
// e.g. 30000/1001 for NTSC). Consumers use this to align audio delivery to
// frame starts.
func (c *AudioClock) FrameAccurateTime(videoFrameRate RationalTime) RationalTime {
	if videoFrameRate.Sign() <= 0 {
		return c.CurrentTime()
	}
	return c.CurrentTime().Round(videoFrameRate.Inv())
}

// PredictDriftCorrection extrapolates the measured drift trend over the
// next lookAheadSamples and returns the correction that trend implies,
// letting callers pre-apply it before the drift becomes audible. Returns 0
// until two measurement windows have completed.
func (c *AudioClock) PredictDriftCorrection(lookAheadSamples int64) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.velocities) == 0 {
		return 0
	}
	var sum float64
	for _, v := range c.velocities {
		sum += v
	}
	velocity := sum / float64(len(c.velocities)) // ns per sample
	return time.Duration(velocity * float64(lookAheadSamples))
}

// UpdateAdaptiveThreshold recomputes the drift threshold from recent
// correction frequency and returns the resulting value. The clock calls
// this itself after every measurement when Config.AdaptiveThreshold is set;
// it is exported for callers that manage the cadence themselves.
func (c *AudioClock) UpdateAdaptiveThreshold() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateAdaptiveThresholdLocked()
	return c.threshold
}

// updateAdaptiveThresholdLocked widens the threshold when recent windows
// corrected frequently (tolerate jitter instead of chasing it) and narrows
// it after sustained stability. The result stays within [base/4, base*4].
func (c *AudioClock) updateAdaptiveThresholdLocked() {
	base := c.cfg.DriftThreshold
	lo, hi := base/4, base*4

	if len(c.windowCorrected) >= 4 {
		corrected := 0
		for _, f := range c.windowCorrected {
			if f {
				corrected++
			}
		}
		if corrected*4 > len(c.windowCorrected) { // more than 25% of windows
			widened := c.threshold * 3 / 2
			if widened > hi {
				widened = hi
			}
			c.threshold = widened
			return
		}
	}

	if c.consecutiveStable >= 8 && c.threshold > lo {
		narrowed := c.threshold * 9 / 10
		if narrowed < lo {
			narrowed = lo
		}
		c.threshold = narrowed
	}
}

// ValidateSyncAccuracy reports whether the current position is within
// toleranceSamples of the expected reference position. Callers use a false
// result to decide that a hard re-sync is needed.
func (c *AudioClock) ValidateSyncAccuracy(reference RationalTime, toleranceSamples int64) bool {
	if c.cfg.SampleRate <= 0 {
		return false
	}
	diff := c.CurrentTime().Sub(reference).Abs()
	tol := FromSamples(toleranceSamples, c.cfg.SampleRate)
	return diff.Cmp(tol) <= 0
}
