// ABOUTME: Audio type definitions
// ABOUTME: Defines capture formats, PCM buffers and analysis windows
package audio

import "time"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes a captured audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Buffer represents captured PCM audio
type Buffer struct {
	At      time.Duration // Logical time of the first frame
	Samples []int32       // Interleaved PCM samples in 24-bit range
	Format  Format
}

// Window is a fixed-length run of mono samples handed to the pitch estimator.
// Samples are amplitudes in [-1, 1]. At is the logical time of the last sample.
type Window struct {
	Samples    []float64
	SampleRate int
	At         time.Duration
}

// Duration returns the time span covered by the window
func (w Window) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.SampleRate)
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit sources)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// SampleToFloat converts a 24-bit range sample to an amplitude in [-1, 1]
func SampleToFloat(sample int32) float64 {
	if sample < Min24Bit {
		sample = Min24Bit
	} else if sample > Max24Bit {
		sample = Max24Bit
	}
	return float64(sample) / -Min24Bit
}

// SampleFromFloat converts an amplitude in [-1, 1] to the 24-bit range, clipping
func SampleFromFloat(v float64) int32 {
	scaled := v * Max24Bit
	if scaled > Max24Bit {
		return Max24Bit
	}
	if scaled < Min24Bit {
		return Min24Bit
	}
	return int32(scaled)
}
