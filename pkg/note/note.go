// ABOUTME: Frequency to musical note conversions
// ABOUTME: Equal-tempered note numbers, names, octaves and cents offsets
package note

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// ReferenceHz is concert pitch A4
	ReferenceHz = 440.0

	// ReferenceNote is the note number of A4
	ReferenceNote = 69
)

// Names is the pitch-class label cycle starting at C
var Names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Identity is the quantized note for a frequency
type Identity struct {
	Number int    // Note number, 69 = A4
	Name   string // Pitch class, e.g. "A#"
	Octave int    // Scientific octave, 4 for A4
	Cents  int    // Deviation from the quantized note, floored
}

// FullName returns the pitch class and octave, e.g. "A4"
func (id Identity) FullName() string {
	return id.Name + strconv.Itoa(id.Octave)
}

func (id Identity) String() string {
	return fmt.Sprintf("%s (%d, %+d cents)", id.FullName(), id.Number, id.Cents)
}

// Mapper converts between frequencies and notes for a tuning reference.
// The zero value is not usable; start from Default.
type Mapper struct {
	ReferenceHz   float64
	ReferenceNote int
}

// Default is A4 = 440Hz, note 69
var Default = Mapper{ReferenceHz: ReferenceHz, ReferenceNote: ReferenceNote}

// Number returns the nearest note number for f, rounding halves up
func (m Mapper) Number(f float64) int {
	return int(math.Floor(12*math.Log2(f/m.ReferenceHz)+0.5)) + m.ReferenceNote
}

// Frequency returns the exact equal-tempered frequency of note n
func (m Mapper) Frequency(n int) float64 {
	return m.ReferenceHz * math.Pow(2, float64(n-m.ReferenceNote)/12)
}

// Cents returns the floored offset of f from note n in cents
func (m Mapper) Cents(f float64, n int) int {
	return int(math.Floor(1200 * math.Log2(f/m.Frequency(n))))
}

// Identify quantizes f to its note. f must be positive.
func (m Mapper) Identify(f float64) Identity {
	n := m.Number(f)
	return Identity{
		Number: n,
		Name:   Name(n),
		Octave: Octave(n),
		Cents:  m.Cents(f, n),
	}
}

// Name returns the pitch-class label of note n, valid for negative n
func Name(n int) string {
	return Names[mod(n, 12)]
}

// Octave returns the scientific octave of note n (floor division)
func Octave(n int) int {
	return floorDiv(n, 12) - 1
}

// FullName returns the name and octave of note n, e.g. "C4" for 60
func FullName(n int) string {
	return Name(n) + strconv.Itoa(Octave(n))
}

// ParseName parses a note like "A4", "c#3" or "Bb2" into a note number
func ParseName(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid note name: %q", s)
	}

	letter := strings.ToUpper(s[:1])
	pc := -1
	for i, name := range Names {
		if name == letter {
			pc = i
			break
		}
	}
	if pc < 0 {
		return 0, fmt.Errorf("invalid note name: %q", s)
	}

	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		pc++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		pc--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note name %q: %w", s, err)
	}

	return (octave+1)*12 + pc, nil
}

// NumberFromFrequency returns the nearest note number using Default
func NumberFromFrequency(f float64) int { return Default.Number(f) }

// FrequencyFromNumber returns the frequency of note n using Default
func FrequencyFromNumber(n int) float64 { return Default.Frequency(n) }

// CentsOffset returns the floored cents offset of f from note n using Default
func CentsOffset(f float64, n int) int { return Default.Cents(f, n) }

// Identify quantizes f using Default
func Identify(f float64) Identity { return Default.Identify(f) }

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
