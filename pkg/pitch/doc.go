// ABOUTME: Pitch estimation package
// ABOUTME: Autocorrelation fundamental-frequency estimation per sample window
// Package pitch estimates the fundamental frequency of a monophonic window.
//
// The algorithm is the ACF2+ autocorrelation method:
//  1. Windows with RMS below the silence threshold are NoPitch.
//  2. Leading and trailing loud edges are trimmed at the first quiet sample.
//  3. The unnormalized autocorrelation is computed over the trimmed window.
//  4. The first rising lag is found, then the highest peak after it.
//  5. The peak lag is refined by parabolic interpolation.
//
// Results are tagged: NoPitch or Detected(hz). Contract violations such as
// an empty window or a non-positive sample rate are returned as errors.
//
// Example:
//
//	est := pitch.New(pitch.DefaultConfig())
//	result, err := est.Estimate(window)
//	if hz, ok := result.Frequency(); ok {
//	    fmt.Printf("%.1f Hz\n", hz)
//	}
package pitch
