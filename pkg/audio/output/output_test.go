// ABOUTME: Audio output tests
// ABOUTME: Verifies volume scaling and 16-bit packing without a device
package output

import (
	"encoding/binary"
	"testing"

	"github.com/harperreed/notecast/pkg/audio"
)

func TestOtoImplementsOutput(t *testing.T) {
	var _ Output = NewOto()
}

func TestWriteBeforeOpen(t *testing.T) {
	out := NewOto()
	if err := out.Write([]int32{0}); err == nil {
		t.Error("expected error writing to unopened output")
	}
	if err := out.Close(); err != nil {
		t.Errorf("expected Close on unopened output to succeed, got %v", err)
	}
}

func TestEncodeS16(t *testing.T) {
	tests := []struct {
		name   string
		sample int32
		volume int
		want   int16
	}{
		{"full scale", audio.Max24Bit, 100, 32767},
		{"negative full scale", audio.Min24Bit, 100, -32768},
		{"half volume", 1 << 20, 50, 1 << 11},
		{"muted", audio.Max24Bit, 0, 0},
		{"silence", 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeS16([]int32{tt.sample}, tt.volume)
			if len(data) != 2 {
				t.Fatalf("expected 2 bytes, got %d", len(data))
			}
			got := int16(binary.LittleEndian.Uint16(data))
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSetVolumeClamps(t *testing.T) {
	out := NewOto()
	out.SetVolume(150)
	if out.volume != 100 {
		t.Errorf("expected volume clamped to 100, got %d", out.volume)
	}
	out.SetVolume(-10)
	if out.volume != 0 {
		t.Errorf("expected volume clamped to 0, got %d", out.volume)
	}
}
