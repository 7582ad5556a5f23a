// ABOUTME: MP3 stream decoder
// ABOUTME: Wraps go-mp3 and scales its 16-bit stereo output to 24-bit range
package decode

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/harperreed/notecast/pkg/audio"
)

// mp3Channels is fixed: go-mp3 always outputs interleaved stereo
const mp3Channels = 2

// MP3Stream decodes an MP3 bitstream
type MP3Stream struct {
	decoder *mp3.Decoder
	pcm     *PCMDecoder
	close   func() error
	format  audio.Format
	buf     []byte
	eof     bool
}

// NewMP3Stream creates a streaming MP3 decoder over r
func NewMP3Stream(r io.Reader) (Stream, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	pcm, err := NewPCM(16)
	if err != nil {
		return nil, err
	}

	return &MP3Stream{
		decoder: decoder,
		pcm:     pcm,
		close:   closer(r),
		format: audio.Format{
			Codec:      "mp3",
			SampleRate: decoder.SampleRate(),
			Channels:   mp3Channels,
			BitDepth:   16,
		},
	}, nil
}

// Read decodes whole stereo frames into samples
func (s *MP3Stream) Read(samples []int32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	// 2 bytes per int16 sample, whole frames only
	need := (len(samples) / mp3Channels) * mp3Channels * 2
	if need == 0 {
		return 0, nil
	}
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	n, err := io.ReadFull(s.decoder, buf)
	switch {
	case err == io.EOF:
		s.eof = true
		return 0, io.EOF
	case err == io.ErrUnexpectedEOF:
		s.eof = true
	case err != nil:
		return 0, fmt.Errorf("failed to read MP3 data: %w", err)
	}

	frameBytes := mp3Channels * s.pcm.BytesPerSample()
	n -= n % frameBytes
	return s.pcm.DecodeInto(samples, buf[:n]), nil
}

// Format describes the decoded samples
func (s *MP3Stream) Format() audio.Format { return s.format }

// Close closes the underlying reader
func (s *MP3Stream) Close() error { return s.close() }
