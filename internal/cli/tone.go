// ABOUTME: tone command: runs the detector on a generated melody
// ABOUTME: Useful for checking displays and feed clients without an instrument
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/notecast/pkg/audio/input"
	"github.com/spf13/cobra"
)

// defaultMelody is an A major arpeggio with short rests between notes
var defaultMelody = []string{"A4:500ms", "rest:100ms", "C#5:500ms", "rest:100ms", "E5:500ms", "rest:100ms", "A5:1s"}

var (
	toneLoop    bool
	toneNoMDNS  bool
	toneMonitor bool
)

var toneCmd = &cobra.Command{
	Use:   "tone [STEP...]",
	Short: "Detect notes in a generated test melody",
	Long: `Generates a melody of sine tones and runs it through the detector.

Each STEP is NOTE:DURATION, where NOTE is a note name (A4, C#5), a frequency
in Hz (440) or "rest". Without steps an A major arpeggio is played.`,
	Example: "  notecast tone A4:1s rest:200ms 523.25:1s",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = defaultMelody
		}
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}

		rate := cfg.SampleRate
		if rate == 0 {
			rate = 44100
		}
		src, err := input.NewTone(input.ToneConfig{
			SampleRate: rate,
			Channels:   1,
			Steps:      steps,
			Loop:       toneLoop,
		})
		if err != nil {
			return err
		}

		return runSession(cmd.Context(), input.NewPaced(src), sessionOptions{
			useTUI:  !noTUI,
			serve:   true,
			mdns:    !toneNoMDNS,
			monitor: toneMonitor,
			out:     cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(toneCmd)

	flags := toneCmd.Flags()
	flags.BoolVar(&toneMonitor, "monitor", false, "Play the melody through the speakers")
	flags.BoolVar(&toneLoop, "loop", false, "Repeat the melody until interrupted")
	flags.BoolVar(&toneNoMDNS, "no-mdns", false, "Do not advertise the feed via mDNS")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "Feed server port")
	flags.StringVar(&cfg.Name, "name", cfg.Name, "Feed name (default: hostname-notecast)")
}

func parseSteps(args []string) ([]input.Step, error) {
	steps := make([]input.Step, 0, len(args))
	for _, arg := range args {
		step, err := parseStep(arg)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// parseStep reads NOTE:DURATION
func parseStep(s string) (input.Step, error) {
	pitchPart, durPart, ok := strings.Cut(s, ":")
	if !ok {
		return input.Step{}, fmt.Errorf("step %q: expected NOTE:DURATION", s)
	}

	dur, err := time.ParseDuration(durPart)
	if err != nil || dur <= 0 {
		return input.Step{}, fmt.Errorf("step %q: invalid duration %q", s, durPart)
	}

	if strings.EqualFold(pitchPart, "rest") {
		return input.Step{Duration: dur}, nil
	}

	if hz, err := strconv.ParseFloat(pitchPart, 64); err == nil {
		if hz <= 0 {
			return input.Step{}, fmt.Errorf("step %q: frequency must be positive", s)
		}
		return input.Step{Frequency: hz, Duration: dur}, nil
	}

	n, err := parseNote(pitchPart)
	if err != nil {
		return input.Step{}, fmt.Errorf("step %q: %w", s, err)
	}
	return input.Step{Frequency: cfg.Mapper().Frequency(n), Duration: dur}, nil
}
