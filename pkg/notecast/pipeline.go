// ABOUTME: Analysis pipeline from an input source to onset events
// ABOUTME: Drives windowing, pitch estimation and onset detection on one goroutine
package notecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/harperreed/notecast/pkg/audio"
	"github.com/harperreed/notecast/pkg/audio/input"
	"github.com/harperreed/notecast/pkg/note"
	"github.com/harperreed/notecast/pkg/onset"
	"github.com/harperreed/notecast/pkg/pitch"
)

const (
	// DefaultWindowSize is the analysis window length in samples
	DefaultWindowSize = 2048

	// DefaultSampleRate is the analysis rate sources are converted to
	DefaultSampleRate = 44100
)

// PipelineConfig configures windowing and the analysis stages
type PipelineConfig struct {
	WindowSize int
	// HopSize defaults to WindowSize (non-overlapping windows)
	HopSize int
	// SampleRate is the analysis rate; sources at other rates are resampled.
	// Zero analyses at the source's own rate.
	SampleRate int
	Pitch      pitch.Config
	Onset      onset.Config
}

// DefaultPipelineConfig returns the standard analysis settings
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		WindowSize: DefaultWindowSize,
		HopSize:    DefaultWindowSize,
		SampleRate: DefaultSampleRate,
		Pitch:      pitch.DefaultConfig(),
		Onset:      onset.DefaultConfig(),
	}
}

// Validate checks the configuration for usable values
func (c PipelineConfig) Validate() error {
	if c.WindowSize < c.Pitch.MinLength || c.WindowSize <= 0 {
		return fmt.Errorf("window size %d is shorter than the minimum analysable length %d", c.WindowSize, c.Pitch.MinLength)
	}
	if c.HopSize <= 0 || c.HopSize > c.WindowSize {
		return fmt.Errorf("hop size must be 1..%d, got %d", c.WindowSize, c.HopSize)
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("sample rate must be >= 0, got %d", c.SampleRate)
	}
	if err := c.Pitch.Validate(); err != nil {
		return fmt.Errorf("pitch: %w", err)
	}
	if err := c.Onset.Validate(); err != nil {
		return fmt.Errorf("onset: %w", err)
	}
	return nil
}

// Result is the outcome of analysing one window
type Result struct {
	At       time.Duration // logical time of the window's last sample
	Estimate pitch.Estimate
	Note     note.Identity // zero unless Estimate is detected
	Onset    *onset.Event  // non-nil when this window started a note
}

// Pipeline turns windows into results. It is not safe for concurrent use.
type Pipeline struct {
	config    PipelineConfig
	estimator *pitch.Estimator
	stream    *onset.Stream
}

// NewPipeline creates a pipeline, filling zero values with defaults
func NewPipeline(config PipelineConfig) (*Pipeline, error) {
	defaults := DefaultPipelineConfig()
	if config.WindowSize == 0 {
		config.WindowSize = defaults.WindowSize
	}
	if config.HopSize == 0 {
		config.HopSize = config.WindowSize
	}
	if config.Pitch == (pitch.Config{}) {
		config.Pitch = defaults.Pitch
	}
	if config.Onset == (onset.Config{}) {
		config.Onset = defaults.Onset
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	stream, err := onset.NewStream(config.Onset)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:    config,
		estimator: pitch.New(config.Pitch),
		stream:    stream,
	}, nil
}

// Config returns the effective configuration
func (p *Pipeline) Config() PipelineConfig {
	return p.config
}

// Process estimates the pitch of one window and feeds the onset stream
func (p *Pipeline) Process(w audio.Window) (Result, error) {
	est, err := p.estimator.Estimate(w)
	if err != nil {
		return Result{}, err
	}

	res := Result{At: w.At, Estimate: est}
	if hz, ok := est.Frequency(); ok {
		res.Note = p.config.Onset.Mapper.Identify(hz)
	}
	if e, ok := p.stream.Process(est, w.At); ok {
		res.Onset = &e
	}
	return res, nil
}

// Reset clears onset state so the next detection emits
func (p *Pipeline) Reset() {
	p.stream.Reset()
}

// Run reads src until io.EOF or ctx is cancelled and calls handle for every
// window. Cancelling ctx closes src to unblock a pending Read. A handler
// error stops the run and is returned.
func (p *Pipeline) Run(ctx context.Context, src input.Source, handle func(Result) error) error {
	if p.config.SampleRate > 0 {
		resampled, err := input.NewResampled(src, p.config.SampleRate)
		if err != nil {
			return err
		}
		src = resampled
	}

	windower, err := audio.NewWindower(p.config.WindowSize, p.config.HopSize, src.SampleRate(), src.Channels())
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		if err := src.Close(); err != nil {
			log.Printf("Error closing source %s: %v", src.Name(), err)
		}
	})
	defer stop()

	log.Printf("Pipeline: analysing %s (%dHz, %dch, window %d, hop %d)",
		src.Name(), src.SampleRate(), src.Channels(), p.config.WindowSize, p.config.HopSize)

	emit := func(w audio.Window) error {
		res, err := p.Process(w)
		if err != nil {
			return fmt.Errorf("failed to analyse window at %v: %w", w.At, err)
		}
		return handle(res)
	}

	buf := make([]int32, p.config.HopSize*src.Channels())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if err := windower.Write(buf[:n], emit); err != nil {
				return err
			}
		}

		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF):
			log.Printf("Pipeline: %s finished at %v", src.Name(), windower.Clock().Now())
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			return fmt.Errorf("failed to read %s: %w", src.Name(), readErr)
		}
	}
}
