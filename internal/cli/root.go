// ABOUTME: Root cobra command and shared flags for the notecast CLI
// ABOUTME: Loads environment configuration and sets up file logging
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/harperreed/notecast/internal/config"
	"github.com/harperreed/notecast/internal/version"
	"github.com/harperreed/notecast/pkg/note"
	"github.com/spf13/cobra"
)

var (
	cfg = config.Load()

	minNote string
	maxNote string
	noTUI   bool
)

var rootCmd = &cobra.Command{
	Use:   "notecast",
	Short: "Detect played notes and broadcast them",
	Long: `notecast listens to a microphone, an audio file or a test tone, detects the
note being played in each analysis window and publishes note onsets to a
terminal display, a WebSocket feed, a MIDI file and a serial LED display.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg.MinNote, err = parseNote(minNote); err != nil {
			return fmt.Errorf("--min-note: %w", err)
		}
		if cfg.MaxNote, err = parseNote(maxNote); err != nil {
			return fmt.Errorf("--max-note: %w", err)
		}
		return cfg.Validate()
	},
}

// Execute runs the CLI
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.IntVar(&cfg.WindowSize, "window", cfg.WindowSize, "Analysis window size in samples")
	flags.IntVar(&cfg.HopSize, "hop", cfg.HopSize, "Samples between window starts")
	flags.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "Analysis sample rate (0 keeps the source rate)")
	flags.Float64Var(&cfg.RMSThreshold, "rms-threshold", cfg.RMSThreshold, "Windows quieter than this RMS are silence")
	flags.Float64Var(&cfg.TrimThreshold, "trim-threshold", cfg.TrimThreshold, "Edge trim threshold")
	flags.StringVar(&minNote, "min-note", note.FullName(cfg.MinNote), "Lowest reported note (name or number)")
	flags.StringVar(&maxNote, "max-note", note.FullName(cfg.MaxNote), "Highest reported note (name or number)")
	flags.DurationVar(&cfg.Cooldown, "cooldown", cfg.Cooldown, "Time before a held note is reported again")
	flags.Float64Var(&cfg.ReferenceHz, "reference", cfg.ReferenceHz, "Frequency of A4 in Hz")

	flags.StringVar(&cfg.RecordPath, "record", cfg.RecordPath, "Record onsets to this MIDI file")
	flags.StringVar(&cfg.SerialPort, "serial", cfg.SerialPort, "Serial port of an LED note display")
	flags.IntVar(&cfg.SerialBaud, "baud", cfg.SerialBaud, "Serial baud rate")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path")
	flags.BoolVar(&noTUI, "no-tui", false, "Disable TUI, print onsets and stream logs instead")
}

// parseNote accepts a note name such as "G3" or a note number
func parseNote(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	return note.ParseName(s)
}

// setupLogging sends log output to the log file, and also to stderr when
// the TUI is not drawing on the terminal
func setupLogging(useTUI bool) (func(), error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	if useTUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}
	return func() { _ = f.Close() }, nil
}

// serverName returns the configured name or one derived from the hostname
func serverName(suffix string) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%s", hostname, suffix)
}
