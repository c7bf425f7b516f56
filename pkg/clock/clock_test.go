// ABOUTME: Tests for the drift-compensated audio clock
// ABOUTME: Uses an injected wall clock to make drift deterministic
package clock

import (
	"sync"
	"testing"
	"time"
)

// fakeWall is an injectable wall clock driven manually by tests.
type fakeWall struct {
	t time.Time
}

func newFakeWall() *fakeWall {
	return &fakeWall{t: time.Unix(1000, 0)}
}

func (f *fakeWall) now() time.Time {
	return f.t
}

func (f *fakeWall) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

// newRunningClock builds an initialized, started clock on a fake wall.
func newRunningClock(t *testing.T, cfg Config) (*AudioClock, *fakeWall) {
	t.Helper()
	c := New(cfg)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	w := newFakeWall()
	c.now = w.now
	if err := c.Start(RationalTime{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return c, w
}

func TestClockLifecycle(t *testing.T) {
	c := New(Config{SampleRate: 48000})

	if c.State() != StateUninitialized {
		t.Errorf("expected uninitialized, got %v", c.State())
	}
	if _, err := c.AdvanceSamples(100); err == nil {
		t.Error("expected error advancing uninitialized clock")
	}
	if err := c.Start(RationalTime{}); err == nil {
		t.Error("expected error starting uninitialized clock")
	}

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if c.State() != StateInitialized {
		t.Errorf("expected initialized, got %v", c.State())
	}
	if err := c.Initialize(); err == nil {
		t.Error("expected error on second Initialize")
	}
	if err := c.Stop(); err == nil {
		t.Error("expected error stopping never-started clock")
	}

	if err := c.Start(RationalTime{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if c.State() != StateRunning {
		t.Errorf("expected running, got %v", c.State())
	}

	// Starting a running clock is a no-op success.
	if err := c.Start(NewRationalTime(5, 1)); err != nil {
		t.Errorf("expected no-op success, got %v", err)
	}
	if !c.CurrentTime().Equal(RationalTime{}) {
		t.Errorf("expected origin unchanged by no-op start, got %v", c.CurrentTime())
	}

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if c.State() != StateStopped {
		t.Errorf("expected stopped, got %v", c.State())
	}
	if err := c.Stop(); err != nil {
		t.Errorf("expected idempotent stop, got %v", err)
	}
	if _, err := c.AdvanceSamples(100); err == nil {
		t.Error("expected error advancing stopped clock")
	}

	// Restart re-anchors.
	if err := c.Start(RationalTime{}); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if c.SampleCount() != 0 {
		t.Errorf("expected sample count reset, got %d", c.SampleCount())
	}

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if c.State() != StateInitialized {
		t.Errorf("expected initialized after reset, got %v", c.State())
	}
}

func TestAdvanceAdditivity(t *testing.T) {
	a, wa := newRunningClock(t, Config{SampleRate: 48000})
	b, wb := newRunningClock(t, Config{SampleRate: 48000})

	wa.advance(time.Second)
	wb.advance(time.Second)

	if _, err := a.AdvanceSamples(700); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	posA, err := a.AdvanceSamples(324)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	posB, err := b.AdvanceSamples(1024)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	if !posA.Equal(posB) {
		t.Errorf("expected %v, got %v", posB, posA)
	}
}

func TestExactPositionNoiselessSimulation(t *testing.T) {
	// 48 kHz clock advanced 1024 samples 100 times with the wall clock
	// tracking the sample timeline to the nanosecond: exactly 102400/48000 s,
	// zero drift, no corrections. The wall steps telescope so accumulated
	// wall time equals the timeline duration at every block boundary.
	c, w := newRunningClock(t, Config{SampleRate: 48000, MeasurementWindow: 48000})

	var pos RationalTime
	var err error
	var prev time.Duration
	for i := 0; i < 100; i++ {
		next := FromSamples(int64((i+1)*1024), 48000).Duration()
		w.advance(next - prev)
		prev = next
		pos, err = c.AdvanceSamples(1024)
		if err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
	}

	if !pos.Equal(NewRationalTime(102400, 48000)) {
		t.Errorf("expected 102400/48000, got %v", pos)
	}
	if pos.Num != 32 || pos.Den != 15 {
		t.Errorf("expected normalized 32/15, got %d/%d", pos.Num, pos.Den)
	}
	if got := c.CurrentDrift(); got != 0 {
		t.Errorf("expected zero drift, got %v", got)
	}
	if got := c.DriftCorrections(); got != 0 {
		t.Errorf("expected no corrections, got %d", got)
	}
	if got := c.AppliedCorrection(); got != 0 {
		t.Errorf("expected no applied correction, got %v", got)
	}
}

func TestAdvanceZeroIsNoOp(t *testing.T) {
	c, _ := newRunningClock(t, Config{SampleRate: 48000})

	if _, err := c.AdvanceSamples(480); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	before := c.CurrentTime()

	pos, err := c.AdvanceSamples(0)
	if err != nil {
		t.Fatalf("expected zero advance to succeed, got %v", err)
	}
	if !pos.Equal(before) {
		t.Errorf("expected %v, got %v", before, pos)
	}

	if _, err := c.AdvanceSamples(-1); err == nil {
		t.Error("expected error on negative advance")
	}
}

func TestOriginOffsetsPosition(t *testing.T) {
	c := New(Config{SampleRate: 48000})
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := c.Start(NewRationalTime(10, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	pos, err := c.AdvanceSamples(24000)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !pos.Equal(NewRationalTime(21, 2)) { // 10 + 0.5 s
		t.Errorf("expected 21/2, got %v", pos)
	}
}

func TestDriftMeasurementAndBoundedCorrection(t *testing.T) {
	// Wall clock runs 2ms fast per one-second window; threshold 1ms. Every
	// window must correct, and never by more than rate*drift.
	cfg := Config{
		SampleRate:        48000,
		MeasurementWindow: 48000,
		DriftThreshold:    time.Millisecond,
		CorrectionRate:    0.1,
		HistorySize:       16,
	}
	c, w := newRunningClock(t, cfg)

	prevApplied := time.Duration(0)
	for i := 0; i < 10; i++ {
		w.advance(time.Second + 2*time.Millisecond)
		if _, err := c.AdvanceSamples(48000); err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}

		drift := c.CurrentDrift()
		applied := c.AppliedCorrection()
		step := applied - prevApplied
		prevApplied = applied

		bound := time.Duration(cfg.CorrectionRate*float64(absDuration(drift))) + time.Nanosecond
		if absDuration(step) > bound {
			t.Errorf("window %d: correction step %v exceeds bound %v (drift %v)",
				i, step, bound, drift)
		}
	}

	if got := c.DriftCorrections(); got != 10 {
		t.Errorf("expected 10 corrections, got %d", got)
	}
	if c.AppliedCorrection() <= 0 {
		t.Errorf("expected positive accumulated correction, got %v", c.AppliedCorrection())
	}
	if c.IsStable() {
		t.Error("expected unstable clock under constant drift")
	}

	// Compensated time runs ahead of the raw sample position.
	if !c.CurrentTime().Less(c.CompensatedTime()) {
		t.Errorf("expected compensated %v ahead of %v", c.CompensatedTime(), c.CurrentTime())
	}
}

func TestDriftCompensationDisabled(t *testing.T) {
	cfg := Config{
		SampleRate:               48000,
		MeasurementWindow:        48000,
		DriftThreshold:           time.Millisecond,
		DisableDriftCompensation: true,
	}
	c, w := newRunningClock(t, cfg)

	for i := 0; i < 5; i++ {
		w.advance(time.Second + 3*time.Millisecond)
		if _, err := c.AdvanceSamples(48000); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}

	// Drift is measured but never corrected.
	if got := c.CurrentDrift(); got < 14*time.Millisecond {
		t.Errorf("expected accumulated drift >= 14ms, got %v", got)
	}
	if got := c.DriftCorrections(); got != 0 {
		t.Errorf("expected 0 corrections, got %d", got)
	}
	if got := c.AppliedCorrection(); got != 0 {
		t.Errorf("expected no correction applied, got %v", got)
	}
}

func TestDriftStatsFromHistory(t *testing.T) {
	cfg := Config{
		SampleRate:               1000,
		MeasurementWindow:        1000,
		DisableDriftCompensation: true,
		HistorySize:              4,
	}
	c, w := newRunningClock(t, cfg)

	// Skews per window: +1ms, +3ms, -2ms, +1ms (cumulative drift 1,4,2,3 ms).
	skews := []time.Duration{
		time.Millisecond, 3 * time.Millisecond, -2 * time.Millisecond, time.Millisecond,
	}
	for _, skew := range skews {
		w.advance(time.Second + skew)
		if _, err := c.AdvanceSamples(1000); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}

	if got := c.CurrentDrift(); got != 3*time.Millisecond {
		t.Errorf("expected current drift 3ms, got %v", got)
	}
	if got := c.MaxDrift(); got != 4*time.Millisecond {
		t.Errorf("expected max drift 4ms, got %v", got)
	}
	// (1+4+2+3)/4 = 2.5ms
	if got := c.AverageDrift(); got != 2500*time.Microsecond {
		t.Errorf("expected average drift 2.5ms, got %v", got)
	}
}

func TestIsStable(t *testing.T) {
	c, w := newRunningClock(t, Config{SampleRate: 1000, MeasurementWindow: 1000})

	if c.IsStable() {
		t.Error("expected unstable before first measurement window")
	}

	for i := 0; i < 2; i++ {
		w.advance(time.Second)
		if _, err := c.AdvanceSamples(1000); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}
	if c.IsStable() {
		t.Error("expected unstable before three clean windows")
	}

	w.advance(time.Second)
	if _, err := c.AdvanceSamples(1000); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !c.IsStable() {
		t.Error("expected stable after three clean windows")
	}
}

func TestAdaptiveThresholdWidens(t *testing.T) {
	cfg := Config{
		SampleRate:        1000,
		MeasurementWindow: 1000,
		DriftThreshold:    time.Millisecond,
		AdaptiveThreshold: true,
	}
	c, w := newRunningClock(t, cfg)

	for i := 0; i < 8; i++ {
		w.advance(time.Second + 10*time.Millisecond)
		if _, err := c.AdvanceSamples(1000); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}

	got := c.DriftThreshold()
	if got <= cfg.DriftThreshold {
		t.Errorf("expected threshold widened beyond %v, got %v", cfg.DriftThreshold, got)
	}
	if got > 4*cfg.DriftThreshold {
		t.Errorf("expected threshold clamped to %v, got %v", 4*cfg.DriftThreshold, got)
	}
}

func TestAdaptiveThresholdNarrows(t *testing.T) {
	cfg := Config{
		SampleRate:        1000,
		MeasurementWindow: 1000,
		DriftThreshold:    time.Millisecond,
		AdaptiveThreshold: true,
	}
	c, w := newRunningClock(t, cfg)

	for i := 0; i < 12; i++ {
		w.advance(time.Second)
		if _, err := c.AdvanceSamples(1000); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}

	got := c.DriftThreshold()
	if got >= cfg.DriftThreshold {
		t.Errorf("expected threshold narrowed below %v, got %v", cfg.DriftThreshold, got)
	}
	if got < cfg.DriftThreshold/4 {
		t.Errorf("expected threshold clamped above %v, got %v", cfg.DriftThreshold/4, got)
	}
}

func TestConcurrentPositionReads(t *testing.T) {
	c, w := newRunningClock(t, Config{SampleRate: 48000, MeasurementWindow: 4800})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = c.CurrentTime()
					_ = c.SampleCount()
					_ = c.CurrentDrift()
					_ = c.IsStable()
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		w.advance(480 * time.Second / 48000)
		if _, err := c.AdvanceSamples(480); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}
	close(stop)
	wg.Wait()

	if got := c.SampleCount(); got != 96000 {
		t.Errorf("expected 96000 samples, got %d", got)
	}
}
