// ABOUTME: PCM audio decoder
// ABOUTME: Decodes little-endian 16-bit and 24-bit PCM bytes to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/harperreed/notecast/pkg/audio"
)

// PCMDecoder converts raw little-endian PCM bytes, such as go-mp3 output
type PCMDecoder struct {
	bitDepth int
}

// NewPCM creates a PCM decoder for 16 or 24-bit samples
func NewPCM(bitDepth int) (*PCMDecoder, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
	return &PCMDecoder{bitDepth: bitDepth}, nil
}

// BytesPerSample returns the encoded width of one sample
func (d *PCMDecoder) BytesPerSample() int {
	return d.bitDepth / 8
}

// DecodeInto converts as many whole samples from data as fit in dst and
// returns the count. Trailing partial samples are ignored.
func (d *PCMDecoder) DecodeInto(dst []int32, data []byte) int {
	width := d.BytesPerSample()
	n := len(data) / width
	if n > len(dst) {
		n = len(dst)
	}

	if d.bitDepth == 24 {
		for i := 0; i < n; i++ {
			dst[i] = audio.SampleFrom24Bit([3]byte{data[i*3], data[i*3+1], data[i*3+2]})
		}
		return n
	}

	for i := 0; i < n; i++ {
		dst[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	return n
}
