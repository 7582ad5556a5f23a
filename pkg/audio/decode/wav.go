// ABOUTME: WAV file stream decoder
// ABOUTME: Reads RIFF/WAVE integer PCM through go-audio/wav in whole frames
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/harperreed/notecast/pkg/audio"
)

// ErrInvalidWAV is returned when a RIFF/WAVE header cannot be parsed
var ErrInvalidWAV = errors.New("invalid WAV data")

const (
	wavFormatPCM        = 0x0001
	wavFormatExtensible = 0xFFFE
)

// WAVStream streams 8, 16, 24 or 32-bit integer PCM from a WAV file
type WAVStream struct {
	decoder *wav.Decoder
	close   func() error
	format  audio.Format
	buf     goaudio.IntBuffer
	data    []int

	// samples of a frame split across PCMBuffer calls
	pending []int32
	eof     bool
}

// NewWAVStream reads the WAV header from r and positions it at the samples.
// Readers that cannot seek are buffered in memory.
func NewWAVStream(r io.Reader) (Stream, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read WAV data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
		}
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header or fmt chunk", ErrInvalidWAV)
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: unsupported encoding %d (integer PCM only)", ErrInvalidWAV, d.WavAudioFormat)
	}
	switch d.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, d.BitDepth)
	}
	if d.NumChans == 0 || d.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidWAV, d.NumChans, d.SampleRate)
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: no data chunk: %v", ErrInvalidWAV, err)
	}

	return &WAVStream{
		decoder: d,
		close:   closer(r),
		format: audio.Format{
			Codec:      "pcm",
			SampleRate: int(d.SampleRate),
			Channels:   int(d.NumChans),
			BitDepth:   int(d.BitDepth),
		},
		buf: goaudio.IntBuffer{
			Format: &goaudio.Format{NumChannels: int(d.NumChans), SampleRate: int(d.SampleRate)},
		},
	}, nil
}

// Read decodes whole frames into samples
func (s *WAVStream) Read(samples []int32) (int, error) {
	ch := s.format.Channels
	want := (len(samples) / ch) * ch
	if want == 0 {
		if s.eof && len(s.pending) == 0 {
			return 0, io.EOF
		}
		return 0, nil
	}

	got := copy(samples[:want], s.pending)
	s.pending = s.pending[got:]

	for got < want && !s.eof {
		if cap(s.data) < want {
			s.data = make([]int, want)
		}
		s.buf.Data = s.data[:want-got]

		n, err := s.decoder.PCMBuffer(&s.buf)
		if err != nil {
			return 0, fmt.Errorf("failed to read WAV data: %w", err)
		}
		if n == 0 {
			s.eof = true
			break
		}
		for i, v := range s.buf.Data[:n] {
			samples[got+i] = wavSample(v, s.format.BitDepth)
		}
		got += n
	}

	whole := got - got%ch
	s.pending = append(s.pending, samples[whole:got]...)
	if whole == 0 && s.eof {
		// A trailing partial frame is dropped
		s.pending = nil
		return 0, io.EOF
	}
	return whole, nil
}

// wavSample scales a decoded integer sample into the 24-bit range
func wavSample(v, bitDepth int) int32 {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		return int32(v-128) << 16
	case 16:
		return audio.SampleFromInt16(int16(v))
	case 32:
		return int32(v >> 8)
	default:
		return int32(v)
	}
}

// Format describes the decoded samples
func (s *WAVStream) Format() audio.Format { return s.format }

// Close closes the underlying reader
func (s *WAVStream) Close() error { return s.close() }
