// ABOUTME: Sample-accurate audio clock with wall-clock drift compensation
// ABOUTME: Advances a rational timeline and applies bounded corrections
package clock

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// State is the clock lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitialized
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Config holds audio clock configuration
type Config struct {
	// SampleRate is the timeline rate in Hz (default: 48000)
	SampleRate int

	// DriftThreshold is the drift magnitude that triggers a correction
	// (default: 1ms)
	DriftThreshold time.Duration

	// MeasurementWindow is the number of advanced samples between drift
	// measurements (default: one second of samples)
	MeasurementWindow int

	// CorrectionRate bounds each correction step to this fraction of the
	// measured drift (default: 0.1)
	CorrectionRate float64

	// DisableDriftCompensation turns corrections off; drift is still measured
	DisableDriftCompensation bool

	// AdaptiveThreshold widens the threshold under frequent corrections and
	// narrows it again after sustained stability
	AdaptiveThreshold bool

	// HistorySize is the drift history capacity in measurements (default: 64)
	HistorySize int
}

const (
	defaultSampleRate     = 48000
	defaultDriftThreshold = time.Millisecond
	defaultCorrectionRate = 0.1
	defaultHistorySize    = 64

	// Consecutive clean measurement windows before the clock reports stable.
	stableWindowTarget = 3

	// Recent windows considered when adapting the threshold.
	windowFlagCapacity = 16

	// Recent regression slopes retained for drift prediction.
	velocityCapacity = 8
)

// driftSample is one drift measurement tagged with its timeline position.
type driftSample struct {
	sampleCount int64
	drift       time.Duration
}

// AudioClock tracks a sample-accurate timeline and measures how far it has
// drifted from the wall clock. Position reads are lock-free and safe from
// any goroutine; AdvanceSamples must be called from a single goroutine (the
// audio thread). Corrections never jump the timeline: each step is bounded
// by CorrectionRate so playback position moves smoothly.
type AudioClock struct {
	cfg Config

	state        atomic.Int32
	sampleCount  atomic.Int64
	correctionNs atomic.Int64 // accumulated applied correction
	origin       atomic.Pointer[RationalTime]
	wallStartNs  atomic.Int64

	// Owned by the advancing goroutine.
	nextMeasure int64

	// Drift bookkeeping. The audio goroutine takes mu once per measurement
	// window; queries take the read side.
	mu                sync.RWMutex
	history           []driftSample
	velocities        []float64 // drift velocity in ns/sample, most recent last
	currentDrift      time.Duration
	corrections       uint64
	threshold         time.Duration
	consecutiveStable int
	windowCorrected   []bool

	// Video sync state, guarded by mu.
	lastFrameTime   RationalTime
	lastFrameNumber int64
	avOffset        RationalTime
	haveVideoSync   bool

	now func() time.Time
}

// New creates an audio clock in the Uninitialized state. Call Initialize
// before use.
func New(cfg Config) *AudioClock {
	return &AudioClock{cfg: cfg, now: time.Now}
}

// Initialize validates the configuration and allocates drift-tracking
// storage, moving the clock to Initialized.
func (c *AudioClock) Initialize() error {
	if State(c.state.Load()) != StateUninitialized {
		return fmt.Errorf("clock already initialized (state %v)", c.State())
	}

	// Set defaults
	if c.cfg.SampleRate == 0 {
		c.cfg.SampleRate = defaultSampleRate
	}
	if c.cfg.DriftThreshold == 0 {
		c.cfg.DriftThreshold = defaultDriftThreshold
	}
	if c.cfg.MeasurementWindow == 0 {
		c.cfg.MeasurementWindow = c.cfg.SampleRate // one second
	}
	if c.cfg.CorrectionRate == 0 {
		c.cfg.CorrectionRate = defaultCorrectionRate
	}
	if c.cfg.HistorySize == 0 {
		c.cfg.HistorySize = defaultHistorySize
	}

	if c.cfg.SampleRate < 0 {
		return fmt.Errorf("sample rate %d must be positive", c.cfg.SampleRate)
	}
	if c.cfg.MeasurementWindow < 0 {
		return fmt.Errorf("measurement window %d must be positive", c.cfg.MeasurementWindow)
	}
	if c.cfg.CorrectionRate < 0 || c.cfg.CorrectionRate > 1 {
		return fmt.Errorf("correction rate %g must be in [0, 1]", c.cfg.CorrectionRate)
	}
	if c.cfg.HistorySize < 0 {
		return fmt.Errorf("history size %d must be positive", c.cfg.HistorySize)
	}

	c.mu.Lock()
	c.history = make([]driftSample, 0, c.cfg.HistorySize)
	c.velocities = make([]float64, 0, velocityCapacity)
	c.windowCorrected = make([]bool, 0, windowFlagCapacity)
	c.threshold = c.cfg.DriftThreshold
	c.mu.Unlock()

	c.state.Store(int32(StateInitialized))
	return nil
}

// Start anchors the wall clock and begins the timeline at origin. Starting
// an already-running clock is a no-op returning success.
func (c *AudioClock) Start(origin RationalTime) error {
	switch State(c.state.Load()) {
	case StateUninitialized:
		return fmt.Errorf("cannot start: clock not initialized")
	case StateRunning:
		return nil
	}

	o := origin
	c.origin.Store(&o)
	c.wallStartNs.Store(c.now().UnixNano())
	c.sampleCount.Store(0)
	c.correctionNs.Store(0)
	c.nextMeasure = int64(c.cfg.MeasurementWindow)

	c.mu.Lock()
	c.history = c.history[:0]
	c.velocities = c.velocities[:0]
	c.windowCorrected = c.windowCorrected[:0]
	c.currentDrift = 0
	c.corrections = 0
	c.threshold = c.cfg.DriftThreshold
	c.consecutiveStable = 0
	c.mu.Unlock()

	c.state.Store(int32(StateRunning))
	return nil
}

// Stop halts advancement. Stopping an already-stopped clock is a no-op.
func (c *AudioClock) Stop() error {
	switch State(c.state.Load()) {
	case StateRunning:
		c.state.Store(int32(StateStopped))
		return nil
	case StateStopped:
		return nil
	}
	return fmt.Errorf("cannot stop: clock not started (state %v)", c.State())
}

// Reset returns an initialized clock to its post-Initialize state, clearing
// the timeline position and all drift history.
func (c *AudioClock) Reset() error {
	if State(c.state.Load()) == StateUninitialized {
		return fmt.Errorf("cannot reset: clock not initialized")
	}

	c.sampleCount.Store(0)
	c.correctionNs.Store(0)
	c.origin.Store(nil)
	c.wallStartNs.Store(0)
	c.nextMeasure = 0

	c.mu.Lock()
	c.history = c.history[:0]
	c.velocities = c.velocities[:0]
	c.windowCorrected = c.windowCorrected[:0]
	c.currentDrift = 0
	c.corrections = 0
	c.threshold = c.cfg.DriftThreshold
	c.consecutiveStable = 0
	c.lastFrameTime = RationalTime{}
	c.lastFrameNumber = 0
	c.avOffset = RationalTime{}
	c.haveVideoSync = false
	c.mu.Unlock()

	c.state.Store(int32(StateInitialized))
	return nil
}

// AdvanceSamples adds n samples to the timeline and returns the resulting
// position as origin + samples/rate. Advancing by 0 is a valid no-op.
// Crossing a measurement window boundary triggers one drift measurement.
func (c *AudioClock) AdvanceSamples(n int) (RationalTime, error) {
	if n < 0 {
		return RationalTime{}, fmt.Errorf("cannot advance by %d samples", n)
	}
	if State(c.state.Load()) != StateRunning {
		return RationalTime{}, fmt.Errorf("cannot advance: clock %v", c.State())
	}

	count := c.sampleCount.Load()
	if n > 0 {
		count = c.sampleCount.Add(int64(n))
	}

	if c.cfg.MeasurementWindow > 0 && count >= c.nextMeasure {
		c.measureDrift(count)
		c.nextMeasure = count + int64(c.cfg.MeasurementWindow)
	}
	return c.timeAt(count), nil
}

// timeAt converts an absolute sample count to a timeline position.
func (c *AudioClock) timeAt(count int64) RationalTime {
	if c.cfg.SampleRate <= 0 {
		return RationalTime{}
	}
	pos := FromSamples(count, c.cfg.SampleRate)
	if o := c.origin.Load(); o != nil {
		pos = o.Add(pos)
	}
	return pos
}

// measureDrift compares elapsed wall time against the sample-derived
// timeline, records the measurement, and applies one bounded correction when
// the drift magnitude exceeds the threshold.
func (c *AudioClock) measureDrift(count int64) {
	elapsed := c.now().Sub(time.Unix(0, c.wallStartNs.Load()))
	expected := FromSamples(count, c.cfg.SampleRate).Duration()
	applied := time.Duration(c.correctionNs.Load())

	// Positive drift: wall clock ahead, audio timeline behind.
	drift := elapsed - expected - applied

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.history) == cap(c.history) && len(c.history) > 0 {
		copy(c.history, c.history[1:])
		c.history = c.history[:len(c.history)-1]
	}
	c.history = append(c.history, driftSample{sampleCount: count, drift: drift})
	c.currentDrift = drift

	if slope, ok := c.regressDriftLocked(); ok {
		if len(c.velocities) == cap(c.velocities) {
			copy(c.velocities, c.velocities[1:])
			c.velocities = c.velocities[:len(c.velocities)-1]
		}
		c.velocities = append(c.velocities, slope)
	}

	magnitude := drift
	if magnitude < 0 {
		magnitude = -magnitude
	}

	corrected := false
	if magnitude > c.threshold {
		c.consecutiveStable = 0
		if !c.cfg.DisableDriftCompensation {
			step := time.Duration(c.cfg.CorrectionRate * float64(drift))
			c.correctionNs.Add(int64(step))
			c.corrections++
			corrected = true
			if c.corrections <= 3 {
				log.Printf("Drift correction #%d: drift=%v step=%v threshold=%v",
					c.corrections, drift, step, c.threshold)
			}
		}
	} else {
		c.consecutiveStable++
	}

	if len(c.windowCorrected) == cap(c.windowCorrected) {
		copy(c.windowCorrected, c.windowCorrected[1:])
		c.windowCorrected = c.windowCorrected[:len(c.windowCorrected)-1]
	}
	c.windowCorrected = append(c.windowCorrected, corrected)

	if c.cfg.AdaptiveThreshold {
		c.updateAdaptiveThresholdLocked()
	}
}

// regressDriftLocked fits drift against sample position by ordinary least
// squares and returns the slope in ns per sample. Needs two measurements.
func (c *AudioClock) regressDriftLocked() (float64, bool) {
	n := len(c.history)
	if n < 2 {
		return 0, false
	}

	var sumX, sumY float64
	for _, s := range c.history {
		sumX += float64(s.sampleCount)
		sumY += float64(s.drift)
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var num, den float64
	for _, s := range c.history {
		dx := float64(s.sampleCount) - meanX
		num += dx * (float64(s.drift) - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// State returns the lifecycle state.
func (c *AudioClock) State() State {
	return State(c.state.Load())
}

// SampleRate returns the timeline rate in Hz.
func (c *AudioClock) SampleRate() int {
	return c.cfg.SampleRate
}

// SampleCount returns the number of samples advanced since Start.
func (c *AudioClock) SampleCount() int64 {
	return c.sampleCount.Load()
}

// CurrentTime returns the exact timeline position, origin + samples/rate.
// Safe to call from any goroutine.
func (c *AudioClock) CurrentTime() RationalTime {
	return c.timeAt(c.sampleCount.Load())
}

// CompensatedTime returns the timeline position with accumulated drift
// corrections applied. Unlike CurrentTime it is only nanosecond-exact.
func (c *AudioClock) CompensatedTime() RationalTime {
	return c.CurrentTime().Add(FromDuration(time.Duration(c.correctionNs.Load())))
}

// AppliedCorrection returns the total correction applied since Start.
func (c *AudioClock) AppliedCorrection() time.Duration {
	return time.Duration(c.correctionNs.Load())
}

// CurrentDrift returns the most recent drift measurement. Zero before the
// first full measurement window.
func (c *AudioClock) CurrentDrift() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentDrift
}

// AverageDrift returns the mean drift over the retained history.
func (c *AudioClock) AverageDrift() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.history) == 0 {
		return 0
	}
	var sum time.Duration
	for _, s := range c.history {
		sum += s.drift
	}
	return sum / time.Duration(len(c.history))
}

// MaxDrift returns the largest drift magnitude in the retained history,
// keeping its sign.
func (c *AudioClock) MaxDrift() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var worst time.Duration
	for _, s := range c.history {
		if absDuration(s.drift) > absDuration(worst) {
			worst = s.drift
		}
	}
	return worst
}

// DriftCorrections returns the number of corrections applied since Start.
func (c *AudioClock) DriftCorrections() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.corrections
}

// DriftThreshold returns the current (possibly adapted) threshold.
func (c *AudioClock) DriftThreshold() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.threshold
}

// IsStable reports whether the last consecutive measurement windows all
// stayed below the drift threshold. False before the first full window.
func (c *AudioClock) IsStable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.consecutiveStable >= stableWindowTarget
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
