// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer, Window and the analysis windower
// Package audio provides the audio types shared by capture and analysis.
//
// This package defines core types used throughout notecast:
//   - Format: Describes a captured stream (codec, sample rate, channels, bit depth)
//   - Buffer: Interleaved PCM in the 24-bit int32 convention
//   - Window: A fixed-length run of mono float samples for pitch estimation
//   - Windower: Slices interleaved PCM into Windows with a hop
//
// It also provides sample conversions:
//   - 16-bit ↔ 24-bit
//   - int32 ↔ packed bytes
//   - int32 ↔ float amplitude
//
// Example:
//
//	w, err := audio.NewWindower(2048, 2048, 44100, 2)
//	err = w.Write(samples, func(win audio.Window) error {
//	    est, err := estimator.Estimate(win)
//	    ...
//	})
package audio
