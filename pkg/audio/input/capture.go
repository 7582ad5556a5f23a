// ABOUTME: Malgo-based microphone capture source
// ABOUTME: Bridges the miniaudio callback thread to blocking Reads via a ring buffer
package input

import (
	"encoding/binary"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/harperreed/notecast/pkg/audio"
)

// CaptureConfig selects the capture device and stream layout
type CaptureConfig struct {
	SampleRate int
	Channels   int
	// Device picks the first capture device whose name contains this
	// string (case-insensitive). Empty selects the system default.
	Device string
	// BufferMillis sizes the ring buffer between callback and reader
	BufferMillis int
}

// Capture reads 16-bit PCM from a capture device
type Capture struct {
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	name       string
	sampleRate int
	channels   int

	ringBuffer *RingBuffer
	scratch    []int32 // owned by the callback thread
	signal     chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

// NewCapture opens and starts a capture device
func NewCapture(cfg CaptureConfig) (*Capture, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", cfg.SampleRate)
	}
	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", cfg.Channels)
	}
	if cfg.BufferMillis <= 0 {
		cfg.BufferMillis = 500
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	c := &Capture{
		malgoCtx:   ctx,
		name:       "default capture device",
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		ringBuffer: NewRingBuffer(cfg.SampleRate * cfg.Channels * cfg.BufferMillis / 1000),
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if cfg.Device != "" {
		info, err := findDevice(ctx.Context, cfg.Device)
		if err != nil {
			c.freeContext()
			return nil, err
		}
		deviceConfig.Capture.DeviceID = info.ID.Pointer()
		c.name = info.Name()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, frameCount uint32) {
			c.dataCallback(pInputSamples, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		c.freeContext()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		c.freeContext()
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}
	c.device = device

	log.Printf("Audio capture initialized: %s, %dHz, %d channels, 16-bit (malgo)",
		c.name, cfg.SampleRate, cfg.Channels)
	return c, nil
}

// dataCallback runs on the miniaudio thread
func (c *Capture) dataCallback(input []byte, frameCount uint32) {
	total := int(frameCount) * c.channels
	if len(input) < total*2 {
		total = len(input) / 2
	}
	if cap(c.scratch) < total {
		c.scratch = make([]int32, total)
	}
	samples := c.scratch[:total]
	for i := range samples {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(input[i*2:])))
	}

	// Whole frames only, so readers stay channel-aligned
	if free := c.ringBuffer.Free(); free < len(samples) {
		samples = samples[:free-free%c.channels]
	}
	c.ringBuffer.Write(samples)

	select {
	case c.signal <- struct{}{}:
	default:
	}
}

// Read blocks until captured samples are available or the source is closed
func (c *Capture) Read(samples []int32) (int, error) {
	samples = samples[:len(samples)-len(samples)%c.channels]
	for {
		if n := c.ringBuffer.Read(samples); n > 0 {
			return n, nil
		}
		select {
		case <-c.signal:
		case <-c.done:
			return 0, ErrClosed
		}
	}
}

// SampleRate returns the capture rate in Hz
func (c *Capture) SampleRate() int { return c.sampleRate }

// Channels returns the number of captured channels
func (c *Capture) Channels() int { return c.channels }

// Name returns the device name
func (c *Capture) Name() string { return c.name }

// Dropped returns the number of samples lost to reader lag
func (c *Capture) Dropped() uint64 { return c.ringBuffer.Dropped() }

// Close stops the device and unblocks pending Reads
func (c *Capture) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.device != nil {
			if err := c.device.Stop(); err != nil {
				log.Printf("Warning: capture device stop error: %v", err)
			}
			c.device.Uninit()
		}
		c.freeContext()
		if d := c.ringBuffer.Dropped(); d > 0 {
			log.Printf("Audio capture dropped %d samples", d)
		}
	})
	return nil
}

func (c *Capture) freeContext() {
	if err := c.malgoCtx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	c.malgoCtx.Free()
}

// Device describes a capture device
type Device struct {
	Name    string
	ID      string
	Default bool
}

// ListDevices enumerates capture devices
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for i := range infos {
		devices = append(devices, Device{
			Name:    infos[i].Name(),
			ID:      infos[i].ID.String(),
			Default: infos[i].IsDefault != 0,
		})
	}
	return devices, nil
}

func findDevice(ctx malgo.Context, want string) (*malgo.DeviceInfo, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}
	for i := range infos {
		if strings.Contains(strings.ToLower(infos[i].Name()), strings.ToLower(want)) {
			return &infos[i], nil
		}
	}
	return nil, fmt.Errorf("no capture device matching %q", want)
}
