// ABOUTME: Autocorrelation pitch estimator
// ABOUTME: Estimates the fundamental frequency of one mono sample window
package pitch

import (
	"errors"
	"fmt"
	"math"

	"github.com/harperreed/notecast/pkg/audio"
)

const (
	// DefaultSilenceThreshold is the RMS below which a window is treated as silence
	DefaultSilenceThreshold = 0.01

	// DefaultTrimThreshold is the amplitude under which edge samples mark trim points
	DefaultTrimThreshold = 0.2

	// DefaultMinLength is the shortest trimmed window that is analysed
	DefaultMinLength = 4
)

var (
	// ErrEmptyWindow is returned for a window with no samples
	ErrEmptyWindow = errors.New("empty sample window")

	// ErrInvalidSampleRate is returned for a zero or negative sample rate
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// Config tunes the estimator
type Config struct {
	SilenceThreshold float64
	TrimThreshold    float64
	MinLength        int
}

// DefaultConfig returns the standard estimator settings
func DefaultConfig() Config {
	return Config{
		SilenceThreshold: DefaultSilenceThreshold,
		TrimThreshold:    DefaultTrimThreshold,
		MinLength:        DefaultMinLength,
	}
}

// Validate checks the configuration for usable values
func (c Config) Validate() error {
	if c.SilenceThreshold < 0 {
		return fmt.Errorf("silence threshold must be >= 0, got %v", c.SilenceThreshold)
	}
	if c.TrimThreshold < 0 {
		return fmt.Errorf("trim threshold must be >= 0, got %v", c.TrimThreshold)
	}
	if c.MinLength < 3 {
		return fmt.Errorf("min length must be >= 3, got %d", c.MinLength)
	}
	return nil
}

// Estimator finds the fundamental frequency of a window by autocorrelation.
//
// The autocorrelation buffer is reused between calls, so an Estimator must
// not be shared between goroutines. Use one per stream.
type Estimator struct {
	config Config
	corr   []float64
}

// New creates an estimator. Zero-valued config fields take their defaults.
func New(config Config) *Estimator {
	def := DefaultConfig()
	if config.SilenceThreshold == 0 {
		config.SilenceThreshold = def.SilenceThreshold
	}
	if config.TrimThreshold == 0 {
		config.TrimThreshold = def.TrimThreshold
	}
	if config.MinLength == 0 {
		config.MinLength = def.MinLength
	}
	return &Estimator{config: config}
}

// Config returns the estimator settings in effect
func (e *Estimator) Config() Config {
	return e.config
}

// Estimate analyses one window. NoPitch is a normal result; an error means
// the caller broke the window contract.
func (e *Estimator) Estimate(w audio.Window) (Estimate, error) {
	if len(w.Samples) == 0 {
		return NoPitch(), ErrEmptyWindow
	}
	if w.SampleRate <= 0 {
		return NoPitch(), fmt.Errorf("%w: %d", ErrInvalidSampleRate, w.SampleRate)
	}

	if RMS(w.Samples) < e.config.SilenceThreshold {
		return NoPitch(), nil
	}

	start, end := TrimBounds(w.Samples, e.config.TrimThreshold)
	buf := w.Samples[start:end]
	n := len(buf)
	if n < e.config.MinLength {
		return NoPitch(), nil
	}

	c := e.autocorrelate(buf)

	// Skip the zero-lag peak and its falling shoulder
	d := 0
	for d+1 < n && c[d] > c[d+1] {
		d++
	}
	if d+1 >= n {
		return NoPitch(), nil
	}

	maxPos := d
	for i := d + 1; i < n; i++ {
		if c[i] > c[maxPos] {
			maxPos = i
		}
	}

	t0 := float64(maxPos)
	if maxPos > 0 && maxPos < n-1 {
		x1, x2, x3 := c[maxPos-1], c[maxPos], c[maxPos+1]
		a := (x1 + x3 - 2*x2) / 2
		b := (x3 - x1) / 2
		if a != 0 {
			t0 -= b / (2 * a)
		}
	}

	if !(t0 > 0) || math.IsInf(t0, 0) {
		return NoPitch(), nil
	}
	return Detected(float64(w.SampleRate) / t0), nil
}

// autocorrelate fills the reused buffer with c[i] = Σ x[j]·x[j+i]
func (e *Estimator) autocorrelate(buf []float64) []float64 {
	n := len(buf)
	if cap(e.corr) < n {
		e.corr = make([]float64, n)
	}
	c := e.corr[:n]

	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n-i; j++ {
			sum += buf[j] * buf[j+i]
		}
		c[i] = sum
	}
	return c
}

// RMS returns the root-mean-square amplitude of samples
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// TrimBounds returns the [start, end) range left after cutting the window
// edges at the first quiet sample from each side.
//
// The forward scan covers indexes [0, n/2); the backward scan covers
// n-1 down to n-n/2+1 and excludes the quiet sample it finds. A side with no
// quiet sample keeps the window bound. n/2 rounds down, so in an odd-length
// window the middle sample and its right neighbour are never scanned.
func TrimBounds(samples []float64, threshold float64) (int, int) {
	n := len(samples)
	start, end := 0, n

	for i := 0; i < n/2; i++ {
		if math.Abs(samples[i]) < threshold {
			start = i
			break
		}
	}
	for i := 1; i < n/2; i++ {
		if math.Abs(samples[n-i]) < threshold {
			end = n - i
			break
		}
	}

	if end < start {
		end = start
	}
	return start, end
}
