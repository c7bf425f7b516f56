// ABOUTME: Playback engine wiring a Source through the DSP core to an Output
// ABOUTME: Stages input in pooled buffers, resamples, and paces delivery by a sample clock
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tactus-audio/tactus-go/pkg/audio"
	"github.com/tactus-audio/tactus-go/pkg/audio/output"
	"github.com/tactus-audio/tactus-go/pkg/audio/pool"
	"github.com/tactus-audio/tactus-go/pkg/audio/resample"
	"github.com/tactus-audio/tactus-go/pkg/audio/ring"
	"github.com/tactus-audio/tactus-go/pkg/clock"
)

const (
	DefaultOutputRate  = 48000
	DefaultBlockFrames = 1024
	DefaultRingFrames  = 8192
	DefaultPoolBuffers = 8
)

// Config holds engine configuration
type Config struct {
	// Source supplies input audio (required)
	Source audio.Source

	// Output receives converted audio (default: counting null sink)
	Output output.Output

	// OutputRate is the delivery sample rate in Hz (default: 48000)
	OutputRate int

	// OutputChannels is the delivery channel count (default: source channels)
	OutputChannels int

	// Quality selects the resampler filter tier (default: Fastest)
	Quality resample.Quality

	// BlockFrames is the staging block size in frames (default: 1024)
	BlockFrames int

	// RingFrames is the delivery ring capacity in frames, rounded up to a
	// power of two (default: 8192)
	RingFrames int

	// PoolBuffers is the number of staging buffers (default: 8)
	PoolBuffers int

	// OnStats, if set, receives a stats snapshot every StatsInterval
	OnStats func(Stats)

	// StatsInterval is the OnStats cadence (default: 1s)
	StatsInterval time.Duration
}

// Stats is a point-in-time snapshot of engine counters
type Stats struct {
	SessionID    string
	FramesIn     int64
	FramesOut    int64
	Position     clock.RationalTime
	Drift        time.Duration
	AverageDrift time.Duration
	Corrections  uint64
	Stable       bool

	RingBuffered  int
	RingOverruns  uint64
	RingUnderruns uint64
	PoolInUse     int
	PoolFailures  uint64
}

// Engine pumps audio from a Source through sample rate conversion to an
// Output, advancing an AudioClock as frames are delivered. An engine plays
// one stream and is not restartable after Stop.
type Engine struct {
	cfg Config
	id  string

	conv          *resample.Converter
	rb            *ring.Buffer
	pool          *pool.Pool
	clk           *clock.AudioClock
	convOut       []float32
	convOutFrames int

	framesIn  atomic.Int64
	framesOut atomic.Int64

	mu      sync.Mutex
	started bool

	stop     chan struct{}
	stopOnce sync.Once
	pumpDone chan struct{} // closed when the pump goroutine exits
	done     chan struct{} // closed when delivery finishes
	wg       sync.WaitGroup
}

// New creates an engine for the given configuration
func New(cfg Config) (*Engine, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}

	// Set defaults
	if cfg.Output == nil {
		cfg.Output = output.NewNull()
	}
	if cfg.OutputRate == 0 {
		cfg.OutputRate = DefaultOutputRate
	}
	if cfg.OutputChannels == 0 {
		cfg.OutputChannels = cfg.Source.Channels()
	}
	if cfg.BlockFrames == 0 {
		cfg.BlockFrames = DefaultBlockFrames
	}
	if cfg.RingFrames == 0 {
		cfg.RingFrames = DefaultRingFrames
	}
	if cfg.PoolBuffers == 0 {
		cfg.PoolBuffers = DefaultPoolBuffers
	}
	if cfg.StatsInterval == 0 {
		cfg.StatsInterval = time.Second
	}

	conv, err := resample.New(resample.Config{
		InputRate:      cfg.Source.SampleRate(),
		OutputRate:     cfg.OutputRate,
		InputChannels:  cfg.Source.Channels(),
		OutputChannels: cfg.OutputChannels,
		Quality:        cfg.Quality,
		BufferSize:     cfg.BlockFrames,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create converter: %w", err)
	}

	rb, err := ring.New(cfg.RingFrames, cfg.OutputChannels)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery ring: %w", err)
	}

	pl, err := pool.New(pool.Config{
		Buffers:         cfg.PoolBuffers,
		FramesPerBuffer: cfg.BlockFrames,
		Channels:        cfg.Source.Channels(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging pool: %w", err)
	}

	clk := clock.New(clock.Config{SampleRate: cfg.OutputRate})
	if err := clk.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize clock: %w", err)
	}

	outFrames := conv.CalculateOutputSamples(cfg.BlockFrames)

	return &Engine{
		cfg:           cfg,
		id:            uuid.New().String(),
		conv:          conv,
		rb:            rb,
		pool:          pl,
		clk:           clk,
		convOut:       make([]float32, outFrames*cfg.OutputChannels),
		convOutFrames: outFrames,
		stop:          make(chan struct{}),
		pumpDone:      make(chan struct{}),
		done:          make(chan struct{}),
	}, nil
}

// Start opens the output and launches the pump and delivery goroutines
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return fmt.Errorf("engine already started")
	}

	if err := e.cfg.Output.Open(e.cfg.OutputRate, e.cfg.OutputChannels); err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	if err := e.clk.Start(clock.RationalTime{}); err != nil {
		e.cfg.Output.Close()
		return fmt.Errorf("failed to start clock: %w", err)
	}
	e.started = true

	e.wg.Add(2)
	go e.pump()
	go e.deliver()

	if e.cfg.OnStats != nil {
		e.wg.Add(1)
		go e.statsLoop()
	}

	log.Printf("Engine %s started: %dHz/%dch -> %dHz/%dch, quality %v",
		e.id, e.cfg.Source.SampleRate(), e.cfg.Source.Channels(),
		e.cfg.OutputRate, e.cfg.OutputChannels, e.cfg.Quality)

	return nil
}

// Stop halts playback, discarding anything still buffered, and releases the
// output and source. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
		e.wg.Wait()
		e.clk.Stop()
		if err := e.cfg.Output.Close(); err != nil {
			log.Printf("Engine %s: output close error: %v", e.id, err)
		}
		if err := e.cfg.Source.Close(); err != nil {
			log.Printf("Engine %s: source close error: %v", e.id, err)
		}
		log.Printf("Engine %s stopped: %d frames in, %d frames out",
			e.id, e.framesIn.Load(), e.framesOut.Load())
	})
}

// Drain blocks until the source is exhausted and every converted frame has
// been delivered, or the context is cancelled. Call Stop afterwards to
// release the output and source.
func (e *Engine) Drain(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ID returns the engine's session identifier
func (e *Engine) ID() string {
	return e.id
}

// Clock returns the delivery clock for sync queries
func (e *Engine) Clock() *clock.AudioClock {
	return e.clk
}

// Stats returns a snapshot of the engine counters
func (e *Engine) Stats() Stats {
	return Stats{
		SessionID:    e.id,
		FramesIn:     e.framesIn.Load(),
		FramesOut:    e.framesOut.Load(),
		Position:     e.clk.CurrentTime(),
		Drift:        e.clk.CurrentDrift(),
		AverageDrift: e.clk.AverageDrift(),
		Corrections:  e.clk.DriftCorrections(),
		Stable:       e.clk.IsStable(),

		RingBuffered:  e.rb.AvailableRead(),
		RingOverruns:  e.rb.Overruns(),
		RingUnderruns: e.rb.Underruns(),
		PoolInUse:     e.pool.Size() - e.pool.Available(),
		PoolFailures:  e.pool.AllocationFailures(),
	}
}

// pump reads source blocks into pooled staging buffers, converts them, and
// ships the converted frames to the delivery ring. Runs until the source
// ends or the engine stops.
func (e *Engine) pump() {
	defer e.wg.Done()
	defer close(e.pumpDone)

	inCh := e.cfg.Source.Channels()
	blockSamples := e.cfg.BlockFrames * inCh

	for {
		select {
		case <-e.stop:
			return
		default:
		}

		h := e.pool.Acquire()
		if h == nil {
			// Every staging buffer is in flight; wait for a release.
			time.Sleep(time.Millisecond)
			continue
		}

		block := h.Samples()[:blockSamples]
		filled := 0
		var readErr error
		for filled < blockSamples {
			n, err := e.cfg.Source.ReadSamples(block[filled:])
			filled += n
			if err != nil {
				readErr = err
				break
			}
			if n == 0 {
				break
			}
		}

		if filled > 0 {
			e.framesIn.Add(int64(filled / inCh))
			if !e.convertAndShip(block[:filled]) {
				h.Release()
				return
			}
		}
		h.Release()

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				log.Printf("Engine %s: source error: %v", e.id, readErr)
			}
			e.flushConverter()
			return
		}
		if filled == 0 {
			// Source had nothing yet; back off instead of spinning.
			time.Sleep(time.Millisecond)
		}
	}
}

// convertAndShip feeds one staged block through the converter and writes
// everything it produces to the ring. A follow-up pass with no new input
// catches output that did not fit in one call. Returns false if the engine
// stopped mid-write.
func (e *Engine) convertAndShip(in []float32) bool {
	for {
		_, produced, err := e.conv.Convert(in, e.convOut)
		if err != nil {
			log.Printf("Engine %s: conversion error: %v", e.id, err)
			return false
		}
		if produced > 0 && !e.shipToRing(e.convOut, produced) {
			return false
		}
		if produced < e.convOutFrames {
			return true
		}
		in = nil
	}
}

// flushConverter drains residual filter state at end-of-stream into the ring
func (e *Engine) flushConverter() bool {
	for {
		n := e.conv.Flush(e.convOut)
		if n == 0 {
			return true
		}
		if !e.shipToRing(e.convOut, n) {
			return false
		}
	}
}

// shipToRing writes frames to the delivery ring, waiting for drain when it
// is full. Returns false if the engine stopped while waiting.
func (e *Engine) shipToRing(samples []float32, frames int) bool {
	outCh := e.cfg.OutputChannels
	written := 0
	for written < frames {
		free := e.rb.AvailableWrite()
		if free == 0 {
			select {
			case <-e.stop:
				return false
			default:
			}
			time.Sleep(time.Millisecond)
			continue
		}
		n := frames - written
		if n > free {
			n = free
		}
		written += e.rb.Write(samples[written*outCh:frames*outCh], n)
	}
	return true
}

// deliver reads converted frames from the ring, writes them to the output,
// and advances the clock by the frames actually delivered. Exits once the
// pump has finished and the ring is drained, or on stop.
func (e *Engine) deliver() {
	defer e.wg.Done()
	defer close(e.done)

	outCh := e.cfg.OutputChannels
	block := make([]float32, e.cfg.BlockFrames*outCh)

	for {
		n := e.cfg.BlockFrames
		if avail := e.rb.AvailableRead(); avail < n {
			n = avail
		}
		if n == 0 {
			select {
			case <-e.stop:
				return
			default:
			}
			// Check finished before re-checking the ring so frames written
			// just before the pump exited are not missed.
			if e.pumpFinished() && e.rb.AvailableRead() == 0 {
				return
			}
			time.Sleep(time.Millisecond)
			continue
		}

		got := e.rb.Read(block[:n*outCh], n)
		if got == 0 {
			continue
		}
		if err := e.cfg.Output.Write(block[:got*outCh]); err != nil {
			log.Printf("Engine %s: output write error: %v", e.id, err)
			return
		}
		e.framesOut.Add(int64(got))
		if _, err := e.clk.AdvanceSamples(got); err != nil {
			log.Printf("Engine %s: clock advance error: %v", e.id, err)
			return
		}
	}
}

func (e *Engine) pumpFinished() bool {
	select {
	case <-e.pumpDone:
		return true
	default:
		return false
	}
}

// statsLoop invokes the OnStats callback on the configured interval
func (e *Engine) statsLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.cfg.OnStats(e.Stats())
		case <-e.stop:
			return
		case <-e.done:
			return
		}
	}
}
