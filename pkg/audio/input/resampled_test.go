// ABOUTME: Tests for the resampling source adapter
// ABOUTME: Checks rate conversion, passthrough and naming
package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResampled_Passthrough(t *testing.T) {
	tone, err := NewSineTone(440, 44100, 1)
	require.NoError(t, err)

	src, err := NewResampled(tone, 44100)
	require.NoError(t, err)
	assert.Same(t, tone, src)
}

func TestResampled_ConvertsRate(t *testing.T) {
	tone, err := NewTone(ToneConfig{
		SampleRate: 48000,
		Channels:   1,
		Steps:      []Step{{Frequency: 440, Duration: 100 * time.Millisecond}},
	})
	require.NoError(t, err)

	src, err := NewResampled(tone, 24000)
	require.NoError(t, err)
	assert.Equal(t, 24000, src.SampleRate())
	assert.Equal(t, 1, src.Channels())
	assert.Contains(t, src.Name(), "48000Hz -> 24000Hz")

	samples := readAll(t, src, 256)
	// 4800 input frames at half rate, less the interpolation tail
	assert.InDelta(t, 2400, len(samples), 2)
}
