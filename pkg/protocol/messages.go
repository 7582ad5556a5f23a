// ABOUTME: Notecast protocol message type definitions
// ABOUTME: Defines structs for all message types and conversions from onsets
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/notecast/pkg/note"
	"github.com/harperreed/notecast/pkg/onset"
	"github.com/harperreed/notecast/pkg/pitch"
)

const (
	// ProtocolVersion is the version of the feed protocol we implement
	ProtocolVersion = 1

	// Path is the WebSocket endpoint of the feed
	Path = "/notecast"
)

// Message type names
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeStreamStart = "stream/start"
	TypeStreamEnd   = "stream/end"
	TypeNoteOnset   = "note/onset"
	TypeNotePitch   = "note/pitch"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is a received message with its payload left undecoded
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v
func (e Envelope) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", e.Type, err)
	}
	return nil
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	WantPitch  bool        `json:"want_pitch"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// StreamStart describes the analysis parameters of the feed
type StreamStart struct {
	Source     string `json:"source"`
	SampleRate int    `json:"sample_rate"`
	WindowSize int    `json:"window_size"`
	HopSize    int    `json:"hop_size"`
	MinNote    int    `json:"min_note"`
	MaxNote    int    `json:"max_note"`
}

// StreamEnd signals that analysis stopped
type StreamEnd struct {
	Reason string `json:"reason"`
}

// NoteOnset carries one onset event
type NoteOnset struct {
	NoteNumber int     `json:"note_number"`
	Name       string  `json:"name"`
	Octave     int     `json:"octave"`
	Cents      int     `json:"cents"`
	Frequency  float64 `json:"frequency"`
	AtMs       int64   `json:"at_ms"`
}

// NotePitch carries the per-window estimate; note fields are set only when
// a pitch was detected
type NotePitch struct {
	Detected   bool    `json:"detected"`
	Frequency  float64 `json:"frequency,omitempty"`
	NoteNumber int     `json:"note_number,omitempty"`
	Name       string  `json:"name,omitempty"`
	Octave     int     `json:"octave,omitempty"`
	Cents      int     `json:"cents,omitempty"`
	AtMs       int64   `json:"at_ms"`
}

// NewNoteOnset converts an onset event for the wire
func NewNoteOnset(e onset.Event) NoteOnset {
	return NoteOnset{
		NoteNumber: e.Note.Number,
		Name:       e.Note.Name,
		Octave:     e.Note.Octave,
		Cents:      e.Note.Cents,
		Frequency:  e.Frequency,
		AtMs:       e.At.Milliseconds(),
	}
}

// Event converts a received onset back to the domain type
func (n NoteOnset) Event() onset.Event {
	return onset.Event{
		Note: note.Identity{
			Number: n.NoteNumber,
			Name:   n.Name,
			Octave: n.Octave,
			Cents:  n.Cents,
		},
		Frequency: n.Frequency,
		At:        time.Duration(n.AtMs) * time.Millisecond,
	}
}

// NewNotePitch converts a window estimate for the wire using mapper
func NewNotePitch(est pitch.Estimate, at time.Duration, mapper note.Mapper) NotePitch {
	p := NotePitch{AtMs: at.Milliseconds()}
	hz, ok := est.Frequency()
	if !ok {
		return p
	}
	id := mapper.Identify(hz)
	p.Detected = true
	p.Frequency = hz
	p.NoteNumber = id.Number
	p.Name = id.Name
	p.Octave = id.Octave
	p.Cents = id.Cents
	return p
}

// Estimate converts a received pitch message back to a tagged estimate
func (p NotePitch) Estimate() pitch.Estimate {
	if !p.Detected {
		return pitch.NoPitch()
	}
	return pitch.Detected(p.Frequency)
}
