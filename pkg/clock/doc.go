// ABOUTME: Precision audio clock package with exact rational timestamps
// ABOUTME: Provides RationalTime arithmetic and drift-compensated AudioClock
// Package clock provides sample-accurate audio timing.
//
// Two types carry the package:
//   - RationalTime: exact fractional timestamps (numerator/denominator), so
//     transport-level comparisons never accumulate float error
//   - AudioClock: a sample counter anchored to the wall clock, with bounded
//     drift corrections and frame-accurate video synchronization
//
// The audio thread advances the clock in lock-step with delivered samples;
// any other goroutine may read the position lock-free. A process normally
// shares one AudioClock by passing it explicitly to the components that
// need common timing.
//
// Example:
//
//	c := clock.New(clock.Config{SampleRate: 48000})
//	err := c.Initialize()
//	err = c.Start(clock.RationalTime{})
//
//	// audio thread, once per delivered block:
//	pos, err := c.AdvanceSamples(1024)
//
//	// UI thread:
//	fmt.Println(c.CurrentTime().Seconds(), c.CurrentDrift())
package clock
