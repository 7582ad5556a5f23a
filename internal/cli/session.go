// ABOUTME: Runs one analysis session from a source to every configured output
// ABOUTME: Wires the pipeline to the TUI, feed server, MIDI recorder and LED display
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/notecast/internal/leddisplay"
	"github.com/harperreed/notecast/internal/midirec"
	"github.com/harperreed/notecast/internal/ui"
	"github.com/harperreed/notecast/pkg/audio/input"
	"github.com/harperreed/notecast/pkg/audio/output"
	"github.com/harperreed/notecast/pkg/notecast"
	"github.com/harperreed/notecast/pkg/onset"
	"github.com/harperreed/notecast/pkg/protocol"
)

// sessionOptions selects the outputs of a session
type sessionOptions struct {
	useTUI  bool
	serve   bool
	mdns    bool
	json    bool
	monitor bool
	out     io.Writer
}

// outputs holds the onset consumers shared by analysis and watch sessions
type outputs struct {
	recorder *midirec.Recorder
	display  *leddisplay.Display
}

// openOutputs opens the MIDI recorder and LED display when configured
func openOutputs(name string) (*outputs, error) {
	o := &outputs{}
	if cfg.RecordPath != "" {
		o.recorder = midirec.New(midirec.Config{Path: cfg.RecordPath, Name: name})
		log.Printf("Recording onsets to %s", cfg.RecordPath)
	}
	if cfg.SerialPort != "" {
		d, err := leddisplay.Open(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			o.close()
			return nil, err
		}
		o.display = d
		log.Printf("LED display on %s at %d baud", cfg.SerialPort, cfg.SerialBaud)
	}
	return o, nil
}

// onset delivers one event to the recorder and display
func (o *outputs) onset(ev onset.Event) error {
	var errs []error
	if o.recorder != nil {
		errs = append(errs, o.recorder.Record(ev))
	}
	if o.display != nil {
		errs = append(errs, o.display.Show(ev))
	}
	return errors.Join(errs...)
}

func (o *outputs) close() {
	if o.recorder != nil {
		if err := o.recorder.Close(); err != nil {
			log.Printf("Failed to save recording: %v", err)
		}
	}
	if o.display != nil {
		if err := o.display.Close(); err != nil {
			log.Printf("Failed to close LED display: %v", err)
		}
	}
}

// printer writes onsets as text lines or JSON objects
func printer(w io.Writer, asJSON bool) func(onset.Event) error {
	enc := json.NewEncoder(w)
	return func(ev onset.Event) error {
		if asJSON {
			return enc.Encode(protocol.NewNoteOnset(ev))
		}
		_, err := fmt.Fprintf(w, "%10s  %-4s %8.2fHz %+3d cents\n",
			ev.At.Truncate(time.Millisecond), ev.Note.FullName(), ev.Frequency, ev.Note.Cents)
		return err
	}
}

// startUI runs the TUI on its own goroutine; done closes when it exits
func startUI(model ui.Model, cancel context.CancelFunc) (*tea.Program, <-chan struct{}) {
	prog := ui.Run(model)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := prog.Run(); err != nil {
			log.Printf("TUI error: %v", err)
		}
		cancel()
	}()
	return prog, done
}

// runSession analyses src until it ends or the user interrupts
func runSession(parent context.Context, src input.Source, opts sessionOptions) error {
	defer src.Close()

	closeLog, err := setupLogging(opts.useTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if opts.monitor {
		speaker := output.NewOto()
		if err := speaker.Open(src.SampleRate(), src.Channels()); err != nil {
			return err
		}
		defer speaker.Close()
		src = input.NewTee(src, speaker.Write)
	}

	pipelineConfig := cfg.Pipeline()
	pipeline, err := notecast.NewPipeline(pipelineConfig)
	if err != nil {
		return err
	}
	pipelineConfig = pipeline.Config()

	out, err := openOutputs(src.Name())
	if err != nil {
		return err
	}
	defer out.close()

	sinks := []notecast.Sink{notecast.OnsetSink(out.onset)}

	var srv *notecast.Server
	if opts.serve {
		rate := pipelineConfig.SampleRate
		if rate == 0 {
			rate = src.SampleRate()
		}
		serverConfig := notecast.ServerConfig{
			Port: cfg.Port,
			Name: serverName("notecast"),
			Stream: protocol.StreamStart{
				Source:     src.Name(),
				SampleRate: rate,
				WindowSize: pipelineConfig.WindowSize,
				HopSize:    pipelineConfig.HopSize,
				MinNote:    pipelineConfig.Onset.MinNote,
				MaxNote:    pipelineConfig.Onset.MaxNote,
			},
			Mapper:     pipelineConfig.Onset.Mapper,
			EnableMDNS: opts.mdns,
		}
		if out.recorder != nil {
			serverConfig.Recording = out.recorder
		}
		srv, err = notecast.NewServer(serverConfig)
		if err != nil {
			return err
		}

		serverDone := make(chan error, 1)
		go func() { serverDone <- srv.Start() }()
		defer func() {
			srv.Stop()
			if err := <-serverDone; err != nil {
				log.Printf("Server error: %v", err)
			}
		}()
		sinks = append(sinks, srv)
	}

	var prog *tea.Program
	var uiDone <-chan struct{}
	if opts.useTUI {
		prog, uiDone = startUI(ui.NewModel(src.Name()), cancel)
		prog.Send(ui.StatusMsg{
			Source:     src.Name(),
			SampleRate: src.SampleRate(),
			WindowSize: pipelineConfig.WindowSize,
			Recording:  cfg.RecordPath,
		})
		sinks = append(sinks, ui.NewSink(prog))
		if srv != nil {
			go reportClients(ctx, srv, prog)
		}
	} else {
		sinks = append(sinks, notecast.OnsetSink(printer(opts.out, opts.json)))
	}

	runErr := pipeline.Run(ctx, src, notecast.Fanout(sinks...))
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if srv != nil && ctx.Err() == nil {
		srv.End("end of input")
	}

	if prog != nil {
		if ctx.Err() != nil {
			prog.Quit()
		} else {
			prog.Send(ui.StatusMsg{Ended: true, Reason: "end of input", Err: runErr})
		}
		<-uiDone
	}
	return runErr
}

// reportClients keeps the TUI's client count current
func reportClients(ctx context.Context, srv *notecast.Server, prog *tea.Program) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := len(srv.Clients())
			prog.Send(ui.StatusMsg{Clients: &n})
		}
	}
}
