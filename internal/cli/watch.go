// ABOUTME: watch command: subscribes to a remote notecast feed
// ABOUTME: Finds feeds via mDNS and mirrors onsets to the TUI, MIDI and LED outputs
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/harperreed/notecast/internal/discovery"
	"github.com/harperreed/notecast/internal/ui"
	"github.com/harperreed/notecast/internal/version"
	"github.com/harperreed/notecast/pkg/note"
	"github.com/harperreed/notecast/pkg/onset"
	"github.com/harperreed/notecast/pkg/protocol"
)

var (
	watchServer  string
	watchPitch   bool
	watchTimeout time.Duration
	watchJSON    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show onsets from a notecast feed on the network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		useTUI := !noTUI
		closeLog, err := setupLogging(useTUI)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		addr := watchServer
		if addr == "" {
			server, err := discoverFeed(ctx, watchTimeout)
			if err != nil {
				return err
			}
			addr = server.Addr()
		}

		client := protocol.NewClient(watchClientConfig(addr, watchPitch && useTUI))
		if err := client.Connect(); err != nil {
			return err
		}
		defer client.Close()

		out, err := openOutputs(client.Server().Name)
		if err != nil {
			return err
		}
		defer out.close()

		var prog *tea.Program
		var uiDone <-chan struct{}
		if useTUI {
			prog, uiDone = startUI(ui.NewModel(addr), cancel)
			connected := true
			prog.Send(ui.StatusMsg{Connected: &connected, ServerName: client.Server().Name, Recording: cfg.RecordPath})
		}

		reason := watchFeed(ctx, client, prog, out, printer(cmd.OutOrStdout(), watchJSON))

		if prog != nil {
			if ctx.Err() != nil {
				prog.Quit()
			} else {
				disconnected := false
				prog.Send(ui.StatusMsg{Connected: &disconnected, Ended: true, Reason: reason})
			}
			<-uiDone
		} else if reason != "" {
			log.Printf("Feed ended: %s", reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	flags := watchCmd.Flags()
	flags.StringVar(&watchServer, "server", "", "Feed address host:port (skip mDNS)")
	flags.BoolVar(&watchPitch, "pitch", true, "Subscribe to per-window pitch for the live tuner")
	flags.DurationVar(&watchTimeout, "timeout", 10*time.Second, "How long to search for a feed")
	flags.BoolVar(&watchJSON, "json", false, "Print onsets as JSON lines when the TUI is off")
}

// watchClientConfig identifies this build in client/hello
func watchClientConfig(addr string, wantPitch bool) protocol.Config {
	return protocol.Config{
		ServerAddr: addr,
		Name:       serverName("notecast-watch"),
		WantPitch:  wantPitch,
		DeviceInfo: &protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	}
}

// discoverFeed browses mDNS until the first feed appears
func discoverFeed(ctx context.Context, timeout time.Duration) (*discovery.ServerInfo, error) {
	log.Printf("Starting feed discovery...")
	disc := discovery.NewManager(discovery.Config{ServiceName: serverName("notecast-watch")})
	defer disc.Stop()
	if err := disc.Browse(); err != nil {
		return nil, err
	}

	select {
	case server := <-disc.Servers():
		log.Printf("Discovered feed %s at %s", server.Name, server.Addr())
		return server, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no feed found after %v", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// watchFeed relays feed messages until the connection or ctx ends and
// returns why the feed ended
func watchFeed(ctx context.Context, client *protocol.Client, prog *tea.Program, out *outputs, emit func(onset.Event) error) string {
	pitches := client.Pitches
	starts := client.StreamStart
	for {
		select {
		case <-ctx.Done():
			return ""

		case on, ok := <-client.Onsets:
			if !ok {
				return endReason(client)
			}
			ev := on.Event()
			if err := out.onset(ev); err != nil {
				log.Printf("Output error: %v", err)
			}
			if prog != nil {
				prog.Send(ui.OnsetMsg{Event: ev})
			} else if err := emit(ev); err != nil {
				log.Printf("Print error: %v", err)
			}

		case p, ok := <-pitches:
			if !ok {
				pitches = nil
				continue
			}
			if prog != nil {
				prog.Send(ui.PitchMsg{
					Estimate: p.Estimate(),
					Note:     note.Identity{Number: p.NoteNumber, Name: p.Name, Octave: p.Octave, Cents: p.Cents},
					At:       time.Duration(p.AtMs) * time.Millisecond,
				})
			}

		case start, ok := <-starts:
			if !ok {
				starts = nil
				continue
			}
			log.Printf("Stream started: %s at %dHz (window %d, notes %s-%s)",
				start.Source, start.SampleRate, start.WindowSize, note.FullName(start.MinNote), note.FullName(start.MaxNote))
			if prog != nil {
				prog.Send(ui.StatusMsg{Source: start.Source, SampleRate: start.SampleRate, WindowSize: start.WindowSize})
			}
		}
	}
}

// endReason reports the stream/end reason if the server sent one
func endReason(client *protocol.Client) string {
	select {
	case end, ok := <-client.StreamEnd:
		if ok {
			return end.Reason
		}
	default:
	}
	return "disconnected"
}
