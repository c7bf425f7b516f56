// ABOUTME: Audio resampling package using windowed-sinc interpolation
// ABOUTME: Streaming converter with quality tiers and internal FIFO state
// Package resample provides high-quality audio sample rate conversion.
//
// The converter interpolates with a precomputed windowed-sinc filter table
// (Blackman window, 1024 quantized fractional positions) and keeps an
// internal input FIFO so arbitrary block boundaries stream cleanly through
// the filter. Downsampling lengthens the filter and lowers its cutoff for
// anti-aliasing.
//
// Quality modes:
//
//	mode     taps at unity ratio   character
//	Fastest  16                    lowest CPU, audible rolloff
//	Medium   64                    default, transparent for playback
//	Highest  256                   mastering-grade stopband
//
// The filter length additionally grows by 1/ratio when downsampling, capped
// at 512 taps.
//
// Example:
//
//	conv, err := resample.New(resample.Config{
//	    InputRate:  44100,
//	    OutputRate: 48000,
//	    InputChannels:  2,
//	    OutputChannels: 2,
//	    Quality:    resample.Medium,
//	})
//	out := make([]float32, conv.CalculateOutputSamples(1024)*2)
//	consumed, produced, err := conv.Convert(in, out)
package resample
