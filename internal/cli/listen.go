// ABOUTME: listen command: live note detection from a capture device
// ABOUTME: Serves onsets on the WebSocket feed while showing the TUI
package cli

import (
	"github.com/harperreed/notecast/pkg/audio/input"
	"github.com/spf13/cobra"
)

var listenNoServe, listenNoMDNS bool

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Detect notes from a microphone or line input",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := input.NewCapture(input.CaptureConfig{
			SampleRate: cfg.SampleRate,
			Channels:   cfg.CaptureChannel,
			Device:     cfg.CaptureDevice,
		})
		if err != nil {
			return err
		}

		return runSession(cmd.Context(), src, sessionOptions{
			useTUI: !noTUI,
			serve:  !listenNoServe,
			mdns:   !listenNoMDNS,
			out:    cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	flags := listenCmd.Flags()
	flags.StringVar(&cfg.CaptureDevice, "device", cfg.CaptureDevice, "Capture device name (substring match, default device when empty)")
	flags.IntVar(&cfg.CaptureChannel, "channels", cfg.CaptureChannel, "Capture channels (1 or 2)")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "Feed server port")
	flags.StringVar(&cfg.Name, "name", cfg.Name, "Feed name (default: hostname-notecast)")
	flags.BoolVar(&listenNoServe, "no-serve", false, "Do not start the WebSocket feed")
	flags.BoolVar(&listenNoMDNS, "no-mdns", false, "Do not advertise the feed via mDNS")
}
