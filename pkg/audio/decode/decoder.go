// ABOUTME: Stream interface definition
// ABOUTME: Opens audio files by extension into a streaming decoder
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/notecast/pkg/audio"
)

// ErrUnsupportedFormat is returned by Open for unknown file extensions
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Stream pulls decoded samples from an underlying reader
type Stream interface {
	// Read fills samples with interleaved PCM and returns the sample count.
	// It returns io.EOF once the input is exhausted.
	Read(samples []int32) (int, error)

	// Format describes the decoded samples
	Format() audio.Format

	// Close releases the stream and its reader
	Close() error
}

// Open opens a file and picks a stream decoder from its extension
func Open(path string) (Stream, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var open func(io.Reader) (Stream, error)
	switch ext {
	case ".mp3":
		open = NewMP3Stream
	case ".flac":
		open = NewFLACStream
	case ".wav", ".wave":
		open = NewWAVStream
	default:
		return nil, fmt.Errorf("%w: %q (supported: .wav, .flac, .mp3)", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	s, err := open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// closer returns r's Close method, or a no-op for plain readers
func closer(r io.Reader) func() error {
	if c, ok := r.(io.Closer); ok {
		return c.Close
	}
	return func() error { return nil }
}
