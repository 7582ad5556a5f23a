// ABOUTME: Logical clocks for the analysis pipeline
// ABOUTME: Derives stream time from sample counts instead of wall time
package clock

import (
	"sync"
	"time"
)

// Clock reports logical time elapsed since the start of a stream
type Clock interface {
	Now() time.Duration
}

// SampleClock advances by frames consumed at a fixed sample rate.
// The same input always produces the same timestamps, live or offline.
type SampleClock struct {
	mu         sync.RWMutex
	sampleRate int64
	frames     int64
}

// NewSampleClock creates a clock for the given sample rate
func NewSampleClock(sampleRate int) *SampleClock {
	if sampleRate <= 0 {
		sampleRate = 1
	}
	return &SampleClock{sampleRate: int64(sampleRate)}
}

// Advance moves the clock forward by n frames
func (c *SampleClock) Advance(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	c.frames += int64(n)
	c.mu.Unlock()
}

// Now returns the logical time of the last frame consumed
func (c *SampleClock) Now() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FramesToDuration(c.frames, c.sampleRate)
}

// Frames returns the number of frames consumed so far
func (c *SampleClock) Frames() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frames
}

// Reset rewinds the clock to zero
func (c *SampleClock) Reset() {
	c.mu.Lock()
	c.frames = 0
	c.mu.Unlock()
}

// FramesToDuration converts a frame count to a duration without overflowing
// for long-running streams.
func FramesToDuration(frames, sampleRate int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	secs := frames / sampleRate
	rem := frames % sampleRate
	return time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(sampleRate)
}

// WallClock measures elapsed wall time since it was created
type WallClock struct {
	start time.Time
	now   func() time.Time
}

// NewWallClock starts a wall clock at the current time
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now(), now: time.Now}
}

// Now returns the time elapsed since the clock started
func (c *WallClock) Now() time.Duration {
	return c.now().Sub(c.start)
}
