// ABOUTME: Tests for the synthetic melody source
// ABOUTME: Covers melody length, rests, looping, channel duplication and close
package input

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src Source, chunk int) []int32 {
	t.Helper()
	buf := make([]int32, chunk)
	var out []int32
	for {
		n, err := src.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
	}
}

func TestTone_MelodyLengthAndRest(t *testing.T) {
	tone, err := NewTone(ToneConfig{
		SampleRate: 8000,
		Channels:   1,
		Steps: []Step{
			{Frequency: 440, Duration: 10 * time.Millisecond},
			{Frequency: 0, Duration: 10 * time.Millisecond},
		},
	})
	require.NoError(t, err)

	samples := readAll(t, tone, 50)
	require.Len(t, samples, 160)

	var peak int32
	for _, s := range samples[:80] {
		if s > peak {
			peak = s
		}
	}
	assert.Greater(t, peak, int32(0), "note step should be audible")
	for i, s := range samples[80:] {
		assert.Zero(t, s, "rest sample %d", i)
	}
}

func TestTone_Stereo(t *testing.T) {
	tone, err := NewSineTone(440, 8000, 2)
	require.NoError(t, err)

	buf := make([]int32, 64)
	n, err := tone.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 64, n)
	for i := 0; i < n; i += 2 {
		assert.Equal(t, buf[i], buf[i+1])
	}
}

func TestTone_Loop(t *testing.T) {
	tone, err := NewTone(ToneConfig{
		SampleRate: 1000,
		Channels:   1,
		Steps:      []Step{{Frequency: 100, Duration: 10 * time.Millisecond}},
		Loop:       true,
	})
	require.NoError(t, err)

	buf := make([]int32, 100)
	n, err := tone.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

func TestTone_Close(t *testing.T) {
	tone, err := NewSineTone(440, 8000, 1)
	require.NoError(t, err)
	require.NoError(t, tone.Close())

	_, err = tone.Read(make([]int32, 8))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewTone_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  ToneConfig
	}{
		{"no steps", ToneConfig{SampleRate: 8000, Channels: 1}},
		{"bad rate", ToneConfig{Channels: 1, Steps: []Step{{440, time.Second}}}},
		{"bad channels", ToneConfig{SampleRate: 8000, Steps: []Step{{440, time.Second}}}},
		{"negative frequency", ToneConfig{SampleRate: 8000, Channels: 1, Steps: []Step{{-1, time.Second}}}},
		{"zero duration", ToneConfig{SampleRate: 8000, Channels: 1, Steps: []Step{{440, 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTone(tt.cfg)
			assert.Error(t, err)
		})
	}
}
