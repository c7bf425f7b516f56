// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Callback-driven miniaudio playback fed from a lock-free ring buffer
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/tactus-audio/tactus-go/pkg/audio"
	"github.com/tactus-audio/tactus-go/pkg/audio/ring"
)

// Device-side buffering between Write and the miniaudio callback.
const malgoBufferMs = 500

// Malgo output implementation using malgo/miniaudio library. The device
// pulls samples on its own real-time thread, so Write feeds a lock-free
// SPSC ring buffer that the data callback drains; the callback never
// blocks and zero-fills on underrun.
type Malgo struct {
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	channels   int
	volume     int
	muted      bool
	ready      bool

	// Write side (producer) and callback side (consumer) of the SPSC ring.
	rb     *ring.Buffer
	scaled []float32 // Write-side volume scratch
	frame  []float32 // callback-side scratch, sized to the device period
	mu     sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo() Output {
	return &Malgo{
		volume: 100,
		muted:  false,
	}
}

// Open initializes the output device with specified format
func (m *Malgo) Open(sampleRate, channels int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// If already initialized with same format, reuse
	if m.device != nil && m.sampleRate == sampleRate && m.channels == channels {
		log.Printf("Audio output already initialized with same format, reusing device")
		return nil
	}

	// If format changed, reinitialize
	if m.device != nil {
		log.Printf("Format change detected (%dHz/%dch -> %dHz/%dch), reinitializing device",
			m.sampleRate, m.channels, sampleRate, channels)
		if err := m.closeDevice(); err != nil {
			return fmt.Errorf("failed to close old device: %w", err)
		}
	}

	// Create malgo context if needed
	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	rb, err := ring.New(sampleRate*malgoBufferMs/1000, channels)
	if err != nil {
		return fmt.Errorf("failed to create playback buffer: %w", err)
	}
	m.rb = rb

	// Configure device: float32 all the way to the driver, no integer
	// conversion needed.
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	// Set up callbacks
	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(pOutputSample, frameCount)
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: onSamples,
	}

	// Initialize device
	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	// Start device
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.sampleRate = sampleRate
	m.channels = channels
	m.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels (malgo/f32)", sampleRate, channels)

	return nil
}

// Write queues audio samples for playback. When the ring is full it waits
// for the callback to drain, pacing the caller to the device rate.
func (m *Malgo) Write(samples []float32) error {
	if !m.ready {
		return fmt.Errorf("output not initialized")
	}

	// Apply volume and mute
	if cap(m.scaled) < len(samples) {
		m.scaled = make([]float32, len(samples))
	}
	applyVolume(m.scaled[:len(samples)], samples, m.volume, m.muted)

	frames := len(samples) / m.channels
	written := 0
	for written < frames {
		free := m.rb.AvailableWrite()
		if free == 0 {
			if !m.ready {
				return fmt.Errorf("output closed during write")
			}
			time.Sleep(time.Millisecond)
			continue
		}
		n := frames - written
		if n > free {
			n = free
		}
		written += m.rb.Write(m.scaled[written*m.channels:len(samples)], n)
	}

	return nil
}

// dataCallback is called on the miniaudio thread to fill the output buffer.
// It must not block or allocate: a short ring read plays as silence.
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	frames := int(frameCount)
	need := frames * m.channels
	if cap(m.frame) < need {
		m.frame = make([]float32, need)
	}

	got := m.rb.Read(m.frame[:need], frames)
	for i := got * m.channels; i < need; i++ {
		m.frame[i] = 0
	}
	audio.EncodeFloat32LE(pOutput, m.frame[:need])
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeDevice(); err != nil {
		return err
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}

	return nil
}

// closeDevice stops and uninitializes the device (must hold m.mu)
func (m *Malgo) closeDevice() error {
	if m.device != nil {
		m.ready = false
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
	}
	return nil
}

// SetVolume sets the volume (0-100)
func (m *Malgo) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	m.volume = volume
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (m *Malgo) SetMuted(muted bool) {
	m.muted = muted
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (m *Malgo) GetVolume() int {
	return m.volume
}

// IsMuted returns mute state
func (m *Malgo) IsMuted() bool {
	return m.muted
}
