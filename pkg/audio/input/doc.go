// ABOUTME: Audio input package for capture collaborators
// ABOUTME: Provides the Source interface with microphone, file and tone implementations
// Package input supplies interleaved PCM to the analysis pipeline.
//
// Every Source yields int32 samples in the 24-bit range. Capture reads a
// microphone through malgo, File decodes an audio file, Tone synthesizes a
// melody of sine notes and Resampled converts any Source to another rate.
//
// Example:
//
//	src, err := input.NewCapture(input.CaptureConfig{SampleRate: 44100, Channels: 1})
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//	buf := make([]int32, 2048)
//	n, err := src.Read(buf)
package input
