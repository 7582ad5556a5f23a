// ABOUTME: FLAC stream decoder
// ABOUTME: Parses FLAC frames with mewkiz/flac and normalizes to 24-bit range
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/harperreed/notecast/pkg/audio"
)

// FLACStream decodes a FLAC bitstream frame by frame
type FLACStream struct {
	stream *flac.Stream
	close  func() error
	format audio.Format

	// Frame being drained and the next inter-channel sample to copy from it
	pending *frame.Frame
	offset  int
	eof     bool
}

// NewFLACStream creates a streaming FLAC decoder over r
func NewFLACStream(r io.Reader) (Stream, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	if info.NChannels == 0 || info.SampleRate == 0 {
		return nil, fmt.Errorf("failed to decode FLAC: %d channels at %d Hz", info.NChannels, info.SampleRate)
	}

	return &FLACStream{
		stream: stream,
		close:  closer(r),
		format: audio.Format{
			Codec:      "flac",
			SampleRate: int(info.SampleRate),
			Channels:   int(info.NChannels),
			BitDepth:   int(info.BitsPerSample),
		},
	}, nil
}

// Read copies whole frames into samples, parsing FLAC frames as needed.
// Samples left over from a FLAC frame carry into the next call.
func (s *FLACStream) Read(samples []int32) (int, error) {
	channels := s.format.Channels
	written := 0

	for written+channels <= len(samples) {
		if s.pending == nil || s.offset >= s.pending.Subframes[0].NSamples {
			if s.eof {
				break
			}
			f, err := s.stream.ParseNext()
			if errors.Is(err, io.EOF) {
				s.eof = true
				break
			}
			if err != nil {
				return written, fmt.Errorf("failed to parse FLAC frame: %w", err)
			}
			s.pending = f
			s.offset = 0
			continue
		}

		for ch := 0; ch < channels; ch++ {
			samples[written] = s.scale(s.pending.Subframes[ch].Samples[s.offset])
			written++
		}
		s.offset++
	}

	if written == 0 && s.eof {
		return 0, io.EOF
	}
	return written, nil
}

// scale shifts a sample at the stream's bit depth into 24-bit range
func (s *FLACStream) scale(sample int32) int32 {
	shift := s.format.BitDepth - 24
	if shift > 0 {
		return sample >> shift
	}
	return sample << -shift
}

// Format describes the decoded samples
func (s *FLACStream) Format() audio.Format { return s.format }

// Close closes the underlying reader
func (s *FLACStream) Close() error { return s.close() }
