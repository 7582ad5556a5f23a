// ABOUTME: Note onset stream package
// ABOUTME: Debounces noisy per-window pitch estimates into discrete onsets
// Package onset turns a stream of pitch estimates into note-onset events.
//
// Per-window estimates arrive far faster than notes change. The Stream emits
// an onset when the detected note differs from the last emitted one, or when
// the same note is still present after the cooldown. Silence and notes
// outside [MinNote, MaxNote] never emit and never touch the state.
//
// Time is passed in by the caller, so behaviour is fully deterministic.
//
// Example:
//
//	s, err := onset.NewStream(onset.DefaultConfig())
//	if ev, ok := s.Process(estimate, window.At); ok {
//	    fmt.Println(ev.Note.FullName())
//	}
package onset
