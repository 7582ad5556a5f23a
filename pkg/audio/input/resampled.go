// ABOUTME: Source adapter converting another source to a target rate
// ABOUTME: Pulls from the inner source and interpolates with the linear resampler
package input

import (
	"fmt"

	"github.com/harperreed/notecast/pkg/audio/resample"
)

// Resampled wraps a Source and converts it to a different sample rate
type Resampled struct {
	src       Source
	resampler *resample.Resampler
	in        []int32
	out       []int32
	pending   []int32 // converted samples not yet returned
}

// NewResampled returns src unchanged when it already runs at rate
func NewResampled(src Source, rate int) (Source, error) {
	if src.SampleRate() == rate {
		return src, nil
	}
	r, err := resample.New(src.SampleRate(), rate, src.Channels())
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}
	return &Resampled{src: src, resampler: r}, nil
}

// Read fills samples at the target rate
func (r *Resampled) Read(samples []int32) (int, error) {
	for len(r.pending) == 0 {
		if cap(r.in) < len(samples) {
			r.in = make([]int32, len(samples))
			r.out = make([]int32, r.resampler.OutputSize(len(samples)))
		}
		n, err := r.src.Read(r.in[:len(samples)])
		if n > 0 {
			m := r.resampler.Resample(r.in[:n], r.out)
			r.pending = r.out[:m]
		}
		if err != nil && len(r.pending) == 0 {
			return 0, err
		}
		if n == 0 && err == nil {
			return 0, nil
		}
	}

	n := copy(samples, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// SampleRate returns the converted rate
func (r *Resampled) SampleRate() int { return r.resampler.OutputRate() }

// Channels returns the inner source's channel count
func (r *Resampled) Channels() int { return r.src.Channels() }

// Name describes the inner source and conversion
func (r *Resampled) Name() string {
	return fmt.Sprintf("%s (%dHz -> %dHz)", r.src.Name(), r.resampler.InputRate(), r.resampler.OutputRate())
}

// Close closes the inner source
func (r *Resampled) Close() error { return r.src.Close() }
