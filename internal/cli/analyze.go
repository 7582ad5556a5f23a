// ABOUTME: analyze command: offline note detection over an audio file
// ABOUTME: Prints onsets as text or JSON lines, optionally recording MIDI
package cli

import (
	"github.com/harperreed/notecast/pkg/audio/input"
	"github.com/spf13/cobra"
)

var (
	analyzeJSON    bool
	analyzeTUI     bool
	analyzeServe   bool
	analyzeMonitor bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Detect notes in a WAV, FLAC or MP3 file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := input.NewFile(args[0])
		if err != nil {
			return err
		}

		return runSession(cmd.Context(), src, sessionOptions{
			useTUI:  analyzeTUI && !noTUI,
			serve:   analyzeServe,
			mdns:    analyzeServe,
			json:    analyzeJSON,
			monitor: analyzeMonitor,
			out:     cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.BoolVar(&analyzeJSON, "json", false, "Print onsets as JSON lines")
	flags.BoolVar(&analyzeTUI, "tui", false, "Show the TUI instead of printing onsets")
	flags.BoolVar(&analyzeServe, "serve", false, "Serve onsets on the WebSocket feed while analysing")
	flags.BoolVar(&analyzeMonitor, "monitor", false, "Play the file while analysing (runs in real time)")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "Feed server port")
}
