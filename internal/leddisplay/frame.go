// ABOUTME: Serial LED display frame encoding
// ABOUTME: Builds and parses checksummed note frames for the display controller
package leddisplay

import (
	"errors"
	"fmt"
)

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	// CmdShowNote lights the note described by the payload
	CmdShowNote = 0x20
	// CmdClear blanks the display; it has no payload
	CmdClear = 0x21

	notePayloadLen = 5
)

// ErrBadFrame is returned by Decode for malformed frames
var ErrBadFrame = errors.New("bad display frame")

// Frame is one display update.
//
//	[SOF0][SOF1][LEN][CMD][note][pitch class][octave][cents][seq][CKS]
//
// LEN counts CMD plus payload. CKS is the XOR of LEN, CMD and payload.
// Octave and cents travel as two's complement bytes.
type Frame struct {
	Cmd        byte
	Note       byte
	PitchClass byte
	Octave     int8
	Cents      int8
	Seq        byte
}

// Encode builds the on-wire representation
func (f Frame) Encode() []byte {
	var payload []byte
	if f.Cmd == CmdShowNote {
		payload = []byte{f.Note, f.PitchClass, byte(f.Octave), byte(f.Cents), f.Seq}
	}

	length := byte(len(payload) + 1)
	cks := length ^ f.Cmd
	for _, b := range payload {
		cks ^= b
	}

	out := make([]byte, 0, 5+len(payload))
	out = append(out, SOF0, SOF1, length, f.Cmd)
	out = append(out, payload...)
	return append(out, cks)
}

// Decode parses one complete frame
func Decode(b []byte) (Frame, error) {
	if len(b) < 5 || b[0] != SOF0 || b[1] != SOF1 {
		return Frame{}, fmt.Errorf("%w: missing start of frame", ErrBadFrame)
	}
	length := int(b[2])
	if length < 1 || len(b) != 4+length {
		return Frame{}, fmt.Errorf("%w: length %d does not match %d bytes", ErrBadFrame, length, len(b))
	}

	var cks byte
	for _, v := range b[2 : len(b)-1] {
		cks ^= v
	}
	if cks != b[len(b)-1] {
		return Frame{}, fmt.Errorf("%w: checksum %#02x, want %#02x", ErrBadFrame, b[len(b)-1], cks)
	}

	f := Frame{Cmd: b[3]}
	payload := b[4 : len(b)-1]
	switch f.Cmd {
	case CmdShowNote:
		if len(payload) != notePayloadLen {
			return Frame{}, fmt.Errorf("%w: note payload is %d bytes", ErrBadFrame, len(payload))
		}
		f.Note = payload[0]
		f.PitchClass = payload[1]
		f.Octave = int8(payload[2])
		f.Cents = int8(payload[3])
		f.Seq = payload[4]
	case CmdClear:
	default:
		return Frame{}, fmt.Errorf("%w: unknown command %#02x", ErrBadFrame, f.Cmd)
	}
	return f, nil
}
