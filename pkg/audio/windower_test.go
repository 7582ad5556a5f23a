// ABOUTME: Tests for the analysis windower
// ABOUTME: Tests window sizing, hop overlap, downmix and timestamps
package audio

import (
	"errors"
	"testing"
	"time"
)

func TestNewWindower_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		hop        int
		sampleRate int
		channels   int
	}{
		{"zero size", 0, 1, 44100, 1},
		{"zero hop", 16, 0, 44100, 1},
		{"hop larger than size", 16, 17, 44100, 1},
		{"zero rate", 16, 16, 0, 1},
		{"zero channels", 16, 16, 44100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWindower(tt.size, tt.hop, tt.sampleRate, tt.channels)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if w != nil {
				t.Error("expected nil windower on error")
			}
		})
	}
}

func TestWindowerNonOverlapping(t *testing.T) {
	w, err := NewWindower(4, 4, 1000, 1)
	if err != nil {
		t.Fatalf("failed to create windower: %v", err)
	}

	samples := make([]int32, 10)
	for i := range samples {
		samples[i] = int32(i) << 16
	}

	var windows [][]float64
	var times []time.Duration
	err = w.Write(samples, func(win Window) error {
		windows = append(windows, append([]float64(nil), win.Samples...))
		times = append(times, win.At)
		return nil
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[1][0] != SampleToFloat(4<<16) {
		t.Errorf("expected second window to start at sample 4, got %f", windows[1][0])
	}
	if times[0] != 4*time.Millisecond || times[1] != 8*time.Millisecond {
		t.Errorf("unexpected window times: %v", times)
	}
}

func TestWindowerOverlap(t *testing.T) {
	w, err := NewWindower(4, 2, 1000, 1)
	if err != nil {
		t.Fatalf("failed to create windower: %v", err)
	}

	count := 0
	emit := func(win Window) error {
		count++
		return nil
	}

	// First window after 4 samples, then one per 2 more samples
	if err := w.Write(make([]int32, 8), emit); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 windows, got %d", count)
	}
}

func TestWindowerSplitWrites(t *testing.T) {
	w, err := NewWindower(4, 4, 1000, 1)
	if err != nil {
		t.Fatalf("failed to create windower: %v", err)
	}

	count := 0
	emit := func(win Window) error {
		count++
		return nil
	}

	for i := 0; i < 4; i++ {
		if err := w.Write([]int32{1, 2}, emit); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if count != 2 {
		t.Errorf("expected 2 windows across split writes, got %d", count)
	}
}

func TestWindowerDownmix(t *testing.T) {
	w, err := NewWindower(2, 2, 1000, 2)
	if err != nil {
		t.Fatalf("failed to create windower: %v", err)
	}

	// L = +half, R = -half -> mono 0; L = R = half -> mono half
	half := int32(1 << 22)
	samples := []int32{half, -half, half, half}

	var got []float64
	err = w.Write(samples, func(win Window) error {
		got = append([]float64(nil), win.Samples...)
		return nil
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0] != 0 {
		t.Errorf("expected first mono sample 0, got %f", got[0])
	}
	if got[1] != 0.5 {
		t.Errorf("expected second mono sample 0.5, got %f", got[1])
	}
}

func TestWindowerEmitError(t *testing.T) {
	w, err := NewWindower(2, 2, 1000, 1)
	if err != nil {
		t.Fatalf("failed to create windower: %v", err)
	}

	stop := errors.New("stop")
	count := 0
	err = w.Write(make([]int32, 8), func(win Window) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected emit to stop after first error, got %d calls", count)
	}
}

func TestWindowerReset(t *testing.T) {
	w, err := NewWindower(4, 4, 1000, 1)
	if err != nil {
		t.Fatalf("failed to create windower: %v", err)
	}

	noop := func(Window) error { return nil }
	if err := w.Write(make([]int32, 6), noop); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	w.Reset()

	if w.Clock().Now() != 0 {
		t.Errorf("expected clock reset to 0, got %v", w.Clock().Now())
	}

	var at time.Duration
	if err := w.Write(make([]int32, 4), func(win Window) error {
		at = win.At
		return nil
	}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if at != 4*time.Millisecond {
		t.Errorf("expected first window after reset at 4ms, got %v", at)
	}
}
