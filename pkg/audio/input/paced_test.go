// ABOUTME: Tests for the real-time pacing wrapper
// ABOUTME: Checks that reads are delayed to the sample rate and Close unblocks them
package input

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaced_DeliversAtSampleRate(t *testing.T) {
	// 1000 Hz mono, 50 frames per read: 4 reads cover 150ms of audio before
	// the fourth is allowed
	tone, err := NewSineTone(440, 1000, 1)
	require.NoError(t, err)
	p := NewPaced(tone)
	defer p.Close()

	buf := make([]int32, 50)
	start := time.Now()
	for i := 0; i < 4; i++ {
		n, err := p.Read(buf)
		require.NoError(t, err)
		require.Equal(t, 50, n)
	}
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
}

func TestPaced_CloseUnblocksRead(t *testing.T) {
	tone, err := NewSineTone(440, 10, 1)
	require.NoError(t, err)
	p := NewPaced(tone)

	buf := make([]int32, 10)
	_, err = p.Read(buf) // first second of audio is due immediately
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := p.Read(buf)
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Close())

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, ErrClosed))
	case <-time.After(time.Second):
		t.Fatal("Read did not return after Close")
	}
}

func TestPaced_PassesThroughFormat(t *testing.T) {
	tone, err := NewSineTone(440, 22050, 2)
	require.NoError(t, err)
	p := NewPaced(tone)

	assert.Equal(t, 22050, p.SampleRate())
	assert.Equal(t, 2, p.Channels())
	assert.Equal(t, tone.Name(), p.Name())
}
