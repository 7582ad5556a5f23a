// ABOUTME: Audio output package for monitoring analysed audio
// ABOUTME: Provides the Output interface and an oto playback implementation
// Package output plays audio while it is analysed, so a user can hear the
// melody or file the detector is working on.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(44100, 1)
//	err = out.Write(samples)
package output
