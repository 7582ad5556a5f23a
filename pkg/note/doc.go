// ABOUTME: Musical note mapping package
// ABOUTME: Quantizes frequencies to equal-tempered notes with cents offsets
// Package note maps frequencies to note identities.
//
// Note numbers follow piano-key/MIDI numbering with A4 = 69 = 440Hz and 12
// equal-tempered semitones per octave. Cents offsets are floored, so a
// frequency just below a note reports -1 rather than 0.
//
// Example:
//
//	id := note.Identify(440)
//	fmt.Println(id.FullName()) // A4
package note
