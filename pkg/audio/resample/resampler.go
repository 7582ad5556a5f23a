// ABOUTME: Streaming linear resampler for converting audio sample rates
// ABOUTME: Carries the last input frame across chunks so boundaries interpolate cleanly
package resample

import "fmt"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64 // input frames advanced per output frame

	// position is the read head in the virtual sequence prev + input,
	// where index 0 is prev when hasPrev is set
	position float64
	prev     []int32
	hasPrev  bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) (*Resampler, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates: %d -> %d", inputRate, outputRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		prev:       make([]int32, channels),
	}, nil
}

// InputRate returns the rate of samples passed to Resample
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the rate of samples written by Resample
func (r *Resampler) OutputRate() int { return r.outputRate }

// OutputSize returns an output length large enough for inputSamples
// interleaved input samples
func (r *Resampler) OutputSize(inputSamples int) int {
	frames := float64(inputSamples/r.channels+1) / r.ratio
	return (int(frames) + 2) * r.channels
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate, sized with OutputSize
// Returns the number of samples written to output.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}

	off := 0
	if r.hasPrev {
		off = 1
	}
	total := inputFrames + off
	at := func(frame, ch int) float64 {
		if frame < off {
			return float64(r.prev[ch])
		}
		return float64(input[(frame-off)*r.channels+ch])
	}

	outputFrames := len(output) / r.channels
	outIdx := 0
	for outIdx < outputFrames {
		idx := int(r.position)
		if idx+1 >= total {
			break
		}
		frac := r.position - float64(idx)

		for ch := 0; ch < r.channels; ch++ {
			output[outIdx*r.channels+ch] = int32(at(idx, ch)*(1.0-frac) + at(idx+1, ch)*frac)
		}

		outIdx++
		r.position += r.ratio
	}

	// The last input frame becomes index 0 of the next chunk
	r.position -= float64(total - 1)
	if r.position < 0 {
		// Output was too small; skip what could not be written
		r.position = 0
	}
	copy(r.prev, input[(inputFrames-1)*r.channels:inputFrames*r.channels])
	r.hasPrev = true

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
	r.hasPrev = false
	for i := range r.prev {
		r.prev[i] = 0
	}
}
