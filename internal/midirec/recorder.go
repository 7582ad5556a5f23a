// ABOUTME: Records note onsets into a Standard MIDI File
// ABOUTME: Closes each note at the next onset and flushes to disk after a quiet period
package midirec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/harperreed/notecast/pkg/onset"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// Resolution is the number of ticks per quarter note
	Resolution smf.MetricTicks = 960

	// Tempo is the fixed tempo of recordings
	Tempo = 120.0

	// Velocity is used for every note-on
	Velocity uint8 = 100

	// DefaultFlushDelay is how long after the latest onset the file is written
	DefaultFlushDelay = time.Second
)

// ErrClosed is returned when recording into a closed recorder
var ErrClosed = errors.New("recorder closed")

// Config controls where and how often a recording is saved
type Config struct {
	Path       string        // Output file; empty keeps the recording in memory
	Name       string        // Track name written into the file
	Channel    uint8         // MIDI channel, 0-15
	FlushDelay time.Duration // Quiet period before writing Path
}

// Recorder turns onsets into note-on/note-off pairs on one track.
// It is safe for concurrent use.
type Recorder struct {
	config Config
	flush  func(func())

	mu      sync.Mutex
	track   smf.Track // note events without end-of-track
	last    uint32    // absolute tick of the last event in track
	open    bool
	openKey uint8
	count   int
	closed  bool
}

// New creates a recorder
func New(config Config) *Recorder {
	if config.FlushDelay <= 0 {
		config.FlushDelay = DefaultFlushDelay
	}
	if config.Channel > 15 {
		config.Channel = 15
	}
	if config.Name == "" {
		config.Name = "notecast"
	}

	r := &Recorder{config: config}
	if config.Path != "" {
		r.flush = debounce.New(config.FlushDelay)
	}
	return r
}

// Path returns the output file, if any
func (r *Recorder) Path() string {
	return r.config.Path
}

// Count returns the number of notes recorded
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Record adds an onset. The previous note, if still sounding, ends here.
func (r *Recorder) Record(ev onset.Event) error {
	if ev.Note.Number < 0 || ev.Note.Number > 127 {
		return fmt.Errorf("note %d outside MIDI range", ev.Note.Number)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}

	at := Resolution.Ticks(Tempo, ev.At)
	if at < r.last {
		at = r.last
	}
	if r.open {
		r.add(at, midi.NoteOff(r.config.Channel, r.openKey))
	}
	key := uint8(ev.Note.Number)
	r.add(at, midi.NoteOn(r.config.Channel, key, Velocity))
	r.open = true
	r.openKey = key
	r.count++
	r.mu.Unlock()

	if r.flush != nil {
		r.flush(r.save)
	}
	return nil
}

// add appends msg at absolute tick at. Caller holds mu.
func (r *Recorder) add(at uint32, msg midi.Message) {
	r.track.Add(at-r.last, msg)
	r.last = at
}

// WriteTo writes the recording so far as a format 1 SMF. A note that is
// still sounding is given one beat.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	file, err := r.build()
	r.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return file.WriteTo(w)
}

// build assembles a tempo track and the note track. Caller holds mu.
func (r *Recorder) build() (*smf.SMF, error) {
	file := smf.NewSMF1()
	file.TimeFormat = Resolution

	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(Tempo))
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Close(0)
	if err := file.Add(tempo); err != nil {
		return nil, fmt.Errorf("failed to add tempo track: %w", err)
	}

	notes := make(smf.Track, 0, len(r.track)+3)
	notes.Add(0, smf.MetaTrackSequenceName(r.config.Name))
	notes = append(notes, r.track...)
	if r.open {
		notes.Add(uint32(Resolution), midi.NoteOff(r.config.Channel, r.openKey))
	}
	notes.Close(0)
	if err := file.Add(notes); err != nil {
		return nil, fmt.Errorf("failed to add note track: %w", err)
	}
	return file, nil
}

// save writes the recording to Path through a temporary file
func (r *Recorder) save() {
	if err := r.Save(); err != nil {
		log.Printf("MIDI: %v", err)
	}
}

// Save writes the recording to Path now
func (r *Recorder) Save() error {
	if r.config.Path == "" {
		return nil
	}

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.config.Path), ".notecast-*.mid")
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write recording: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write recording: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.config.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save recording: %w", err)
	}
	return nil
}

// Close ends the sounding note and writes the final file
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.open {
		r.add(r.last+uint32(Resolution), midi.NoteOff(r.config.Channel, r.openKey))
		r.open = false
	}
	count := r.count
	r.mu.Unlock()

	if r.flush != nil {
		// Replace any pending debounced write with a no-op
		r.flush(func() {})
	}
	if err := r.Save(); err != nil {
		return err
	}
	if r.config.Path != "" {
		log.Printf("MIDI: saved %d notes to %s", count, r.config.Path)
	}
	return nil
}
