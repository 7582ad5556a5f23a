// ABOUTME: Logical clock package
// ABOUTME: Provides sample-count and wall clocks for stream timestamps
// Package clock provides the logical time source used to stamp analysis
// windows and note onsets.
//
// SampleClock derives time from the number of frames consumed, so replaying
// the same audio yields identical onset timestamps.
//
// Example:
//
//	c := clock.NewSampleClock(44100)
//	c.Advance(2048)
//	at := c.Now() // ~46.4ms
package clock
