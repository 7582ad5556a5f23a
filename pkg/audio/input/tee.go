// ABOUTME: Source wrapper that copies every chunk read to a tap
// ABOUTME: Used to play analysed audio through a monitor output
package input

import "log"

// Tee passes reads through and hands a copy of each chunk to a tap
type Tee struct {
	src    Source
	tap    func([]int32) error
	failed bool
}

// NewTee wraps src. A tap error is logged once and the tap is then
// skipped; it never interrupts reading.
func NewTee(src Source, tap func([]int32) error) *Tee {
	return &Tee{src: src, tap: tap}
}

// Read reads from the wrapped source and feeds the tap
func (t *Tee) Read(samples []int32) (int, error) {
	n, err := t.src.Read(samples)
	if n > 0 && !t.failed {
		if tapErr := t.tap(samples[:n]); tapErr != nil {
			log.Printf("Tee: disabling tap on %s: %v", t.src.Name(), tapErr)
			t.failed = true
		}
	}
	return n, err
}

func (t *Tee) SampleRate() int { return t.src.SampleRate() }
func (t *Tee) Channels() int   { return t.src.Channels() }
func (t *Tee) Name() string    { return t.src.Name() }
func (t *Tee) Close() error    { return t.src.Close() }
