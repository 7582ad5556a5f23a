// ABOUTME: Real-time pacing wrapper for synthetic and file sources
// ABOUTME: Delays reads so samples are delivered no faster than their sample rate
package input

import (
	"sync"
	"time"

	"github.com/harperreed/notecast/pkg/clock"
)

// Paced delivers a source's samples at wall-clock speed
type Paced struct {
	src    Source
	wall   *clock.WallClock
	frames int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewPaced wraps src so that Read returns frames no earlier than the time
// they would arrive from a live device
func NewPaced(src Source) *Paced {
	return &Paced{
		src:  src,
		wall: clock.NewWallClock(),
		done: make(chan struct{}),
	}
}

// Read waits until the previously returned frames have played out, then
// reads the next chunk
func (p *Paced) Read(samples []int32) (int, error) {
	due := clock.FramesToDuration(p.frames, int64(p.src.SampleRate()))
	if wait := due - p.wall.Now(); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-p.done:
			timer.Stop()
			return 0, ErrClosed
		}
	}

	n, err := p.src.Read(samples)
	p.frames += int64(n / p.src.Channels())
	return n, err
}

func (p *Paced) SampleRate() int { return p.src.SampleRate() }
func (p *Paced) Channels() int   { return p.src.Channels() }
func (p *Paced) Name() string    { return p.src.Name() }

// Close closes the wrapped source and wakes a waiting Read
func (p *Paced) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return p.src.Close()
}
