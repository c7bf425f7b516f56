// ABOUTME: Engine package documentation
// ABOUTME: Describes the source-to-output playback pipeline
// Package engine connects an audio.Source to an output.Output through the
// DSP core: source blocks are staged in pooled buffers, converted to the
// delivery rate, queued on a lock-free ring, and paced out by a delivery
// goroutine that advances a drift-compensated sample clock.
//
// Example:
//
//	eng, err := engine.New(engine.Config{
//		Source:     signal.NewSine(44100, 2, 440, 0.5),
//		Output:     output.NewOto(),
//		OutputRate: 48000,
//	})
//	err = eng.Start()
//	err = eng.Drain(ctx)
//	eng.Stop()
package engine
