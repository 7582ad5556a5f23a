// ABOUTME: Fixed-size analysis windows from interleaved PCM
// ABOUTME: Downmixes to mono and slices windows with a configurable hop
package audio

import (
	"fmt"

	"github.com/harperreed/notecast/pkg/clock"
)

// Windower accumulates interleaved PCM and emits fixed-size mono windows.
//
// Windows overlap when hop < size. The slice in an emitted Window is owned by
// the Windower and is only valid until the next call to Write.
type Windower struct {
	size       int
	hop        int
	channels   int
	sampleRate int

	pending []float64 // mono samples not yet consumed by a full hop
	out     []float64
	clock   *clock.SampleClock
}

// NewWindower creates a windower for the given stream layout
func NewWindower(size, hop, sampleRate, channels int) (*Windower, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid window size: %d", size)
	}
	if hop <= 0 || hop > size {
		return nil, fmt.Errorf("invalid hop size: %d (must be 1..%d)", hop, size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	return &Windower{
		size:       size,
		hop:        hop,
		channels:   channels,
		sampleRate: sampleRate,
		pending:    make([]float64, 0, size*2),
		out:        make([]float64, size),
		clock:      clock.NewSampleClock(sampleRate),
	}, nil
}

// Size returns the window length in samples
func (w *Windower) Size() int { return w.size }

// Hop returns the hop length in samples
func (w *Windower) Hop() int { return w.hop }

// SampleRate returns the rate stamped on emitted windows
func (w *Windower) SampleRate() int { return w.sampleRate }

// Write appends interleaved samples and calls emit once per completed window,
// in order. A partial trailing frame is ignored.
func (w *Windower) Write(samples []int32, emit func(Window) error) error {
	numFrames := len(samples) / w.channels
	for i := 0; i < numFrames; i++ {
		var sum float64
		for ch := 0; ch < w.channels; ch++ {
			sum += SampleToFloat(samples[i*w.channels+ch])
		}
		w.pending = append(w.pending, sum/float64(w.channels))
		w.clock.Advance(1)

		if len(w.pending) < w.size {
			continue
		}

		copy(w.out, w.pending[:w.size])
		win := Window{
			Samples:    w.out,
			SampleRate: w.sampleRate,
			At:         w.clock.Now(),
		}

		// Drop one hop, keep the overlap for the next window
		n := copy(w.pending, w.pending[w.hop:])
		w.pending = w.pending[:n]

		if err := emit(win); err != nil {
			return err
		}
	}
	return nil
}

// Clock returns the sample clock driven by this windower
func (w *Windower) Clock() clock.Clock { return w.clock }

// Reset discards buffered samples and restarts logical time at zero
func (w *Windower) Reset() {
	w.pending = w.pending[:0]
	w.clock.Reset()
}
