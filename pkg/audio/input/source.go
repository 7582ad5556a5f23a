// ABOUTME: Source interface definition
// ABOUTME: Common contract for all sample producers
package input

import "errors"

// ErrClosed is returned by Read after a source has been closed
var ErrClosed = errors.New("input source closed")

// Source produces interleaved PCM samples in 24-bit range
type Source interface {
	// Read fills samples and returns how many were written. It returns
	// io.EOF when a finite source is exhausted.
	Read(samples []int32) (int, error)

	// SampleRate returns the source rate in Hz
	SampleRate() int

	// Channels returns the number of interleaved channels
	Channels() int

	// Name describes the source for logs and the UI
	Name() string

	// Close releases the source
	Close() error
}
