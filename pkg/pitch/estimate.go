// ABOUTME: Tagged pitch estimation result
// ABOUTME: Distinguishes "no pitch" from a detected fundamental frequency
package pitch

import (
	"fmt"
	"math"
)

// Estimate is the outcome of analysing one window: either NoPitch or a
// detected fundamental frequency. The zero value is NoPitch.
type Estimate struct {
	frequency float64
	detected  bool
}

// NoPitch reports a silent, aperiodic or degenerate window
func NoPitch() Estimate {
	return Estimate{}
}

// Detected reports a fundamental frequency in Hz. Non-positive, NaN and
// infinite frequencies are not valid detections and collapse to NoPitch.
func Detected(hz float64) Estimate {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return NoPitch()
	}
	return Estimate{frequency: hz, detected: true}
}

// Frequency returns the detected frequency and whether one was detected
func (e Estimate) Frequency() (float64, bool) {
	return e.frequency, e.detected
}

// IsDetected reports whether the estimate carries a frequency
func (e Estimate) IsDetected() bool {
	return e.detected
}

func (e Estimate) String() string {
	if !e.detected {
		return "NoPitch"
	}
	return fmt.Sprintf("Detected(%.2fHz)", e.frequency)
}
