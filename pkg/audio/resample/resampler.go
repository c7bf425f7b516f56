// ABOUTME: Streaming windowed-sinc sample rate converter
// ABOUTME: Carries fractional position and input history across block boundaries
package resample

import (
	"fmt"
	"math"

	"github.com/tactus-audio/tactus-go/pkg/audio"
)

// Quality selects the interpolation filter tier.
type Quality int

const (
	Fastest Quality = iota
	Medium
	Highest
)

func (q Quality) String() string {
	switch q {
	case Fastest:
		return "fastest"
	case Medium:
		return "medium"
	case Highest:
		return "highest"
	default:
		return fmt.Sprintf("unknown(%d)", int(q))
	}
}

// baseHalf returns the filter half-length at unity ratio.
func (q Quality) baseHalf() int {
	switch q {
	case Fastest:
		return 8
	case Medium:
		return 32
	case Highest:
		return 128
	default:
		return 0
	}
}

const (
	minFilterLength = 8
	maxFilterLength = 512

	// Conversion ratios outside this range are rejected.
	minRatio = 1.0 / 256
	maxRatio = 256.0

	defaultBufferSize = 4096
)

// Config holds converter configuration. Immutable once a Converter is
// constructed.
type Config struct {
	// InputRate and OutputRate are the stream rates in Hz
	InputRate  int
	OutputRate int

	// InputChannels and OutputChannels must match, except mono↔stereo
	InputChannels  int
	OutputChannels int

	// Quality selects the filter tier (default: Fastest)
	Quality Quality

	// BufferSize is the expected block size in frames, used to pre-size the
	// internal FIFO (default: 4096)
	BufferSize int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.InputRate <= 0 {
		return fmt.Errorf("input rate %d: %w", c.InputRate, audio.ErrInvalidSampleRate)
	}
	if c.OutputRate <= 0 {
		return fmt.Errorf("output rate %d: %w", c.OutputRate, audio.ErrInvalidSampleRate)
	}
	ratio := float64(c.OutputRate) / float64(c.InputRate)
	if ratio < minRatio || ratio > maxRatio {
		return fmt.Errorf("conversion ratio %g outside [%g, %g]: %w",
			ratio, minRatio, maxRatio, audio.ErrInvalidSampleRate)
	}
	if c.InputChannels < 1 || c.InputChannels > audio.MaxChannels {
		return fmt.Errorf("input channels %d: %w", c.InputChannels, audio.ErrInvalidChannels)
	}
	if c.OutputChannels < 1 || c.OutputChannels > audio.MaxChannels {
		return fmt.Errorf("output channels %d: %w", c.OutputChannels, audio.ErrInvalidChannels)
	}
	if c.InputChannels != c.OutputChannels && (c.InputChannels > 2 || c.OutputChannels > 2) {
		return fmt.Errorf("channel conversion %d to %d (only mono and stereo convert): %w",
			c.InputChannels, c.OutputChannels, audio.ErrInvalidChannels)
	}
	if c.Quality.baseHalf() == 0 {
		return fmt.Errorf("quality %v: %w", c.Quality, audio.ErrInvalidFormat)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer size %d: %w", c.BufferSize, audio.ErrInvalidFormat)
	}
	return nil
}

// Converter is a streaming sample rate converter. It is not internally
// synchronized: callers serialize access, normally by confining it to the
// audio goroutine.
type Converter struct {
	cfg          Config
	ratio        float64 // output frames per input frame
	step         float64 // input frames per output frame
	filterLength int
	half         int
	channels     int // processing channel count (after input conversion)
	table        [][]float64

	fifo       []float32 // interleaved history + pending input
	fifoFrames int
	pos        float64 // fractional read position in FIFO frame space
}

// New builds a converter, precomputing the sinc filter table for the
// configured ratio and quality.
func New(cfg Config) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = defaultBufferSize
	}

	ratio := float64(cfg.OutputRate) / float64(cfg.InputRate)

	// Downsampling stretches the filter by 1/ratio for anti-aliasing.
	cutoff := math.Min(1, ratio)
	length := int(float64(2*cfg.Quality.baseHalf()) / cutoff)
	if length < minFilterLength {
		length = minFilterLength
	}
	if length > maxFilterLength {
		length = maxFilterLength
	}
	length &^= 1 // force even

	c := &Converter{
		cfg:          cfg,
		ratio:        ratio,
		step:         1 / ratio,
		filterLength: length,
		half:         length / 2,
		channels:     cfg.OutputChannels,
		table:        buildSincTable(length, cutoff),
	}
	c.fifo = make([]float32, 0, (cfg.BufferSize+length)*c.channels)
	return c, nil
}

// Ratio returns output rate over input rate.
func (c *Converter) Ratio() float64 {
	return c.ratio
}

// Latency returns the filter group delay in output frames.
func (c *Converter) Latency() int {
	return c.half
}

// FilterLength returns the tap count of the interpolation filter.
func (c *Converter) FilterLength() int {
	return c.filterLength
}

// CalculateOutputSamples returns an upper bound on the frames produced from
// inputFrames more input. Actual production can fall short by up to the
// converter latency near stream boundaries; the residual arrives via Flush.
func (c *Converter) CalculateOutputSamples(inputFrames int) int {
	return int(math.Ceil(float64(inputFrames)*c.ratio)) + 2
}

// Convert feeds interleaved input frames through the filter and writes
// produced frames to out. Input is always absorbed in full into the internal
// FIFO; production stops when the filter window would pass the buffered
// input or when out is full. Returns input frames consumed and output frames
// produced.
func (c *Converter) Convert(in []float32, out []float32) (consumed, produced int, err error) {
	if len(in)%c.cfg.InputChannels != 0 {
		return 0, 0, fmt.Errorf("%d samples is not a whole frame count for %d channels: %w",
			len(in), c.cfg.InputChannels, audio.ErrInvalidFormat)
	}
	frames := len(in) / c.cfg.InputChannels

	c.ingest(in, frames)
	produced = c.produce(out, false)
	return frames, produced, nil
}

// Flush drains residual filter state at end-of-stream, treating taps beyond
// the final input frame as zero. Call repeatedly until it produces 0.
func (c *Converter) Flush(out []float32) int {
	return c.produce(out, true)
}

// Reset clears the FIFO and fractional position, keeping the filter table.
func (c *Converter) Reset() {
	c.fifo = c.fifo[:0]
	c.fifoFrames = 0
	c.pos = 0
}

// ingest slides out history the filter can no longer reach, then appends new
// frames, converting mono↔stereo when the channel counts differ.
func (c *Converter) ingest(in []float32, frames int) {
	dead := int(c.pos) - (c.half - 1)
	if dead > 0 {
		if dead > c.fifoFrames {
			dead = c.fifoFrames
		}
		copy(c.fifo, c.fifo[dead*c.channels:c.fifoFrames*c.channels])
		c.fifoFrames -= dead
		c.fifo = c.fifo[:c.fifoFrames*c.channels]
		c.pos -= float64(dead)
	}
	if frames == 0 {
		return
	}

	switch {
	case c.cfg.InputChannels == c.channels:
		c.fifo = append(c.fifo, in[:frames*c.channels]...)
	case c.cfg.InputChannels == 1:
		// mono in, stereo out: duplicate
		for i := 0; i < frames; i++ {
			c.fifo = append(c.fifo, in[i], in[i])
		}
	default:
		// stereo in, mono out: average
		for i := 0; i < frames; i++ {
			c.fifo = append(c.fifo, (in[2*i]+in[2*i+1])*0.5)
		}
	}
	c.fifoFrames += frames
}

// produce runs the interpolation loop. In final mode taps beyond the
// buffered input read as zero and production continues until the position
// passes the last real frame.
func (c *Converter) produce(out []float32, final bool) int {
	maxOut := len(out) / c.channels
	produced := 0

	for produced < maxOut {
		base := int(c.pos)
		if final {
			if base >= c.fifoFrames {
				break
			}
		} else if base+c.half >= c.fifoFrames {
			break
		}

		frac := c.pos - float64(base)
		row := c.table[int(frac*tableResolution+0.5)]
		start := base - c.half + 1

		for ch := 0; ch < c.channels; ch++ {
			var sum float64
			for j, coef := range row {
				idx := start + j
				if idx < 0 || idx >= c.fifoFrames {
					continue // tap outside buffered range
				}
				sum += coef * float64(c.fifo[idx*c.channels+ch])
			}
			out[produced*c.channels+ch] = float32(sum)
		}

		produced++
		c.pos += c.step
	}
	return produced
}
