// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts capture or file rates to the analysis rate
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates and keeps
// state between calls, so a stream may be fed in chunks of any size.
//
// Example:
//
//	r, err := resample.New(48000, 44100, 1)
//	out := make([]int32, r.OutputSize(len(in)))
//	n := r.Resample(in, out)
package resample
