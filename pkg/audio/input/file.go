// ABOUTME: File source backed by a streaming decoder
// ABOUTME: Plays a WAV, FLAC or MP3 file once and then reports io.EOF
package input

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/harperreed/notecast/pkg/audio/decode"
)

// File reads samples from a decoded audio file
type File struct {
	stream decode.Stream
	name   string
}

// NewFile opens path with the decoder matching its extension
func NewFile(path string) (*File, error) {
	stream, err := decode.Open(path)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	f := stream.Format()
	log.Printf("Loaded %s: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		strings.ToUpper(f.Codec), base, f.SampleRate, f.Channels, f.BitDepth)

	return NewFileFromStream(stream, base), nil
}

// NewFileFromStream wraps an already opened decoder stream
func NewFileFromStream(stream decode.Stream, name string) *File {
	return &File{stream: stream, name: name}
}

// Read decodes the next samples; io.EOF marks the end of the file
func (f *File) Read(samples []int32) (int, error) { return f.stream.Read(samples) }

// SampleRate returns the file's native rate
func (f *File) SampleRate() int { return f.stream.Format().SampleRate }

// Channels returns the file's channel count
func (f *File) Channels() int { return f.stream.Format().Channels }

// Name returns the file's base name
func (f *File) Name() string { return f.name }

// Close closes the file
func (f *File) Close() error { return f.stream.Close() }
