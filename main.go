// ABOUTME: Entry point for the Tactus playback demo
// ABOUTME: Parses CLI flags and streams a generated signal through the engine
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tactus-audio/tactus-go/internal/version"
	"github.com/tactus-audio/tactus-go/pkg/audio"
	"github.com/tactus-audio/tactus-go/pkg/audio/output"
	"github.com/tactus-audio/tactus-go/pkg/audio/resample"
	audiosignal "github.com/tactus-audio/tactus-go/pkg/audio/signal"
	"github.com/tactus-audio/tactus-go/pkg/engine"
)

var (
	freq     = flag.Float64("freq", 440, "Tone frequency in Hz")
	sweepTo  = flag.Float64("sweep-to", 0, "Sweep up to this frequency (0 = steady tone)")
	inRate   = flag.Int("rate", 44100, "Source sample rate in Hz")
	outRate  = flag.Int("out-rate", 48000, "Output sample rate in Hz")
	channels = flag.Int("channels", 2, "Channel count")
	quality  = flag.String("quality", "fastest", "Resampler quality: fastest, medium, highest")
	duration = flag.Duration("duration", 5*time.Second, "Playback duration (0 = until Ctrl-C)")
	sinkName = flag.String("sink", "oto", "Output sink: oto, malgo, portaudio, null")
	stats    = flag.Bool("stats", false, "Log engine stats every second")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.Printf("Starting %s %s playback demo", version.Product, version.Version)

	cfg := engine.Config{
		Source:         buildSource(),
		Output:         buildSink(*sinkName),
		OutputRate:     *outRate,
		OutputChannels: *channels,
		Quality:        parseQuality(*quality),
	}
	if *stats {
		cfg.OnStats = func(s engine.Stats) {
			log.Printf("pos=%.3fs in=%d out=%d ring=%d drift=%v avg=%v corrections=%d stable=%v",
				s.Position.Seconds(), s.FramesIn, s.FramesOut, s.RingBuffered,
				s.Drift, s.AverageDrift, s.Corrections, s.Stable)
		}
	}

	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	if err := eng.Start(); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		cancel()
	}()

	if err := eng.Drain(ctx); err != nil {
		log.Printf("Playback interrupted: %v", err)
	}
	eng.Stop()

	final := eng.Stats()
	log.Printf("Played %.2fs: %d frames in, %d frames out, %d drift corrections",
		final.Position.Seconds(), final.FramesIn, final.FramesOut, final.Corrections)
}

// buildSource constructs the generated test signal from the flags
func buildSource() audio.Source {
	if *sweepTo > 0 {
		if *duration <= 0 {
			log.Fatalf("A sweep needs a positive -duration")
		}
		log.Printf("Source: %gHz -> %gHz sweep over %v at %dHz", *freq, *sweepTo, *duration, *inRate)
		return audiosignal.NewSweep(*inRate, *channels, *freq, *sweepTo, *duration)
	}

	log.Printf("Source: %gHz tone at %dHz", *freq, *inRate)
	tone := audiosignal.NewSine(*inRate, *channels, *freq, 0.5)
	if *duration > 0 {
		frames := int64(duration.Seconds() * float64(*inRate))
		return audiosignal.Limit(tone, frames)
	}
	return tone
}

func buildSink(name string) output.Output {
	switch strings.ToLower(name) {
	case "oto":
		return output.NewOto()
	case "malgo":
		return output.NewMalgo()
	case "portaudio":
		return output.NewPortAudio()
	case "null":
		return output.NewNull()
	default:
		log.Fatalf("Unknown sink %q (want oto, malgo, portaudio or null)", name)
		return nil
	}
}

func parseQuality(name string) resample.Quality {
	switch strings.ToLower(name) {
	case "fastest":
		return resample.Fastest
	case "medium":
		return resample.Medium
	case "highest":
		return resample.Highest
	default:
		log.Fatalf("Unknown quality %q (want fastest, medium or highest)", name)
		return resample.Fastest
	}
}
