// ABOUTME: devices command: lists capture devices and serial ports
// ABOUTME: Helps pick values for --device and --serial
package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/harperreed/notecast/internal/leddisplay"
	"github.com/harperreed/notecast/pkg/audio/input"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture devices and serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		devices, err := input.ListDevices()
		if err != nil {
			log.Printf("Failed to list capture devices: %v", err)
		}
		printDevices(w, devices)

		ports, err := leddisplay.Ports()
		if err != nil {
			log.Printf("Failed to list serial ports: %v", err)
		}
		printPorts(w, ports)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func printDevices(w io.Writer, devices []input.Device) {
	fmt.Fprintln(w, "Capture devices:")
	if len(devices) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s\n", marker, d.Name)
	}
}

func printPorts(w io.Writer, ports []string) {
	fmt.Fprintln(w, "Serial ports:")
	if len(ports) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range ports {
		fmt.Fprintf(w, "    %s\n", p)
	}
}
