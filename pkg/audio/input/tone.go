// ABOUTME: Synthetic melody source for demos and tests
// ABOUTME: Generates a sequence of sine notes and rests at a fixed rate
package input

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/harperreed/notecast/pkg/audio"
)

// DefaultToneAmplitude is the peak amplitude of generated notes (50% volume)
const DefaultToneAmplitude = 0.5

// Step is one note of a melody. A Frequency of 0 is a rest.
type Step struct {
	Frequency float64
	Duration  time.Duration
}

// ToneConfig describes a synthetic melody
type ToneConfig struct {
	SampleRate int
	Channels   int
	Steps      []Step
	Amplitude  float64
	// Loop restarts the melody instead of returning io.EOF
	Loop bool
}

// Tone generates sine waves following a melody
type Tone struct {
	cfg      ToneConfig
	bounds   []uint64 // cumulative frame index where each step ends
	frame    uint64
	phase    float64
	closed   bool
	sampleMu sync.Mutex
}

// NewTone creates a melody generator
func NewTone(cfg ToneConfig) (*Tone, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", cfg.SampleRate)
	}
	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", cfg.Channels)
	}
	if len(cfg.Steps) == 0 {
		return nil, fmt.Errorf("melody has no steps")
	}
	if cfg.Amplitude == 0 {
		cfg.Amplitude = DefaultToneAmplitude
	}

	bounds := make([]uint64, len(cfg.Steps))
	var end uint64
	for i, s := range cfg.Steps {
		if s.Duration <= 0 || s.Frequency < 0 {
			return nil, fmt.Errorf("invalid step %d: %.2fHz for %v", i, s.Frequency, s.Duration)
		}
		end += uint64(s.Duration.Seconds() * float64(cfg.SampleRate))
		bounds[i] = end
	}
	if end == 0 {
		return nil, fmt.Errorf("melody is shorter than one sample")
	}

	return &Tone{cfg: cfg, bounds: bounds}, nil
}

// NewSineTone creates an endless single-frequency tone
func NewSineTone(frequency float64, sampleRate, channels int) (*Tone, error) {
	return NewTone(ToneConfig{
		SampleRate: sampleRate,
		Channels:   channels,
		Steps:      []Step{{Frequency: frequency, Duration: time.Second}},
		Loop:       true,
	})
}

// Read generates the next samples of the melody
func (t *Tone) Read(samples []int32) (int, error) {
	t.sampleMu.Lock()
	defer t.sampleMu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	total := t.bounds[len(t.bounds)-1]
	numFrames := len(samples) / t.cfg.Channels
	step := t.stepAt(t.frame)
	written := 0

	for i := 0; i < numFrames; i++ {
		if t.frame >= total {
			if !t.cfg.Loop {
				break
			}
			t.frame = 0
			step = 0
		}
		for t.frame >= t.bounds[step] {
			step++
		}

		var v float64
		if f := t.cfg.Steps[step].Frequency; f > 0 {
			v = t.cfg.Amplitude * math.Sin(t.phase)
			t.phase += 2 * math.Pi * f / float64(t.cfg.SampleRate)
			if t.phase > 2*math.Pi {
				t.phase -= 2 * math.Pi
			}
		}

		sample := audio.SampleFromFloat(v)
		for ch := 0; ch < t.cfg.Channels; ch++ {
			samples[written] = sample
			written++
		}
		t.frame++
	}

	if written == 0 && numFrames > 0 {
		return 0, io.EOF
	}
	return written, nil
}

func (t *Tone) stepAt(frame uint64) int {
	for i, b := range t.bounds {
		if frame < b {
			return i
		}
	}
	return len(t.bounds) - 1
}

// SampleRate returns the generated rate in Hz
func (t *Tone) SampleRate() int { return t.cfg.SampleRate }

// Channels returns the number of generated channels
func (t *Tone) Channels() int { return t.cfg.Channels }

// Name describes the melody
func (t *Tone) Name() string {
	if len(t.cfg.Steps) == 1 {
		return fmt.Sprintf("Test Tone %.2fHz", t.cfg.Steps[0].Frequency)
	}
	return fmt.Sprintf("Test Melody (%d notes)", len(t.cfg.Steps))
}

// Close stops the generator
func (t *Tone) Close() error {
	t.sampleMu.Lock()
	defer t.sampleMu.Unlock()
	t.closed = true
	return nil
}
