// ABOUTME: Note onset event stream with hysteresis
// ABOUTME: Turns per-window pitch estimates into de-duplicated note onsets
package onset

import (
	"fmt"
	"time"

	"github.com/harperreed/notecast/pkg/note"
	"github.com/harperreed/notecast/pkg/pitch"
)

const (
	// DefaultMinNote is G3, the lowest note shown
	DefaultMinNote = 55

	// DefaultMaxNote is C7, the highest note shown
	DefaultMaxNote = 96

	// DefaultCooldown is how long a repeated note waits before re-triggering
	DefaultCooldown = 200 * time.Millisecond
)

// Event is a note onset
type Event struct {
	Note      note.Identity
	Frequency float64       // Estimated frequency that produced the onset
	At        time.Duration // Logical stream time of the onset
}

// Config controls range filtering and re-articulation
type Config struct {
	MinNote  int
	MaxNote  int
	Cooldown time.Duration
	Mapper   note.Mapper
}

// DefaultConfig returns the standard display range and cooldown
func DefaultConfig() Config {
	return Config{
		MinNote:  DefaultMinNote,
		MaxNote:  DefaultMaxNote,
		Cooldown: DefaultCooldown,
		Mapper:   note.Default,
	}
}

// Validate checks the configuration for usable values
func (c Config) Validate() error {
	if c.MinNote > c.MaxNote {
		return fmt.Errorf("min note %d is above max note %d", c.MinNote, c.MaxNote)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must be >= 0, got %v", c.Cooldown)
	}
	if !(c.Mapper.ReferenceHz > 0) {
		return fmt.Errorf("reference pitch must be positive, got %v", c.Mapper.ReferenceHz)
	}
	return nil
}

// state holds the last emitted onset. It never records a suppressed note.
type state struct {
	live     bool
	lastName string
	lastAt   time.Duration
}

// Stream de-duplicates a sequence of estimates into onsets.
// Calls to Process must be made one at a time in arrival order.
type Stream struct {
	config Config
	state  state
}

// NewStream creates a stream with empty state
func NewStream(config Config) (*Stream, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid onset config: %w", err)
	}
	return &Stream{config: config}, nil
}

// Config returns the stream settings
func (s *Stream) Config() Config {
	return s.config
}

// Process consumes the estimate for one window at logical time now and
// returns an onset when the window starts a new note.
func (s *Stream) Process(est pitch.Estimate, now time.Duration) (Event, bool) {
	hz, ok := est.Frequency()
	if !ok {
		return Event{}, false
	}

	id := s.config.Mapper.Identify(hz)
	if id.Number < s.config.MinNote || id.Number > s.config.MaxNote {
		return Event{}, false
	}

	fullName := id.FullName()
	if s.state.live && fullName == s.state.lastName && now-s.state.lastAt <= s.config.Cooldown {
		return Event{}, false
	}

	s.state = state{live: true, lastName: fullName, lastAt: now}
	return Event{Note: id, Frequency: hz, At: now}, true
}

// Last returns the most recently emitted note name and time, if any
func (s *Stream) Last() (string, time.Duration, bool) {
	return s.state.lastName, s.state.lastAt, s.state.live
}

// Reset forgets the last emitted onset
func (s *Stream) Reset() {
	s.state = state{}
}
