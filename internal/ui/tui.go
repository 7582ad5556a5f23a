// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and feeds it analysis results
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/notecast/pkg/notecast"
)

// Sender delivers messages to a running program; *tea.Program satisfies it
type Sender interface {
	Send(msg tea.Msg)
}

// NewModel creates a new TUI model for the named source
func NewModel(source string) Model {
	return Model{
		source: source,
	}
}

// Run creates the TUI program; the caller starts it with p.Run()
func Run(model Model) *tea.Program {
	return tea.NewProgram(model, tea.WithAltScreen())
}

// NewSink forwards every window and onset to the TUI
func NewSink(s Sender) notecast.Sink {
	return notecast.SinkFunc(func(r notecast.Result) error {
		s.Send(PitchMsg{Estimate: r.Estimate, Note: r.Note, At: r.At})
		if r.Onset != nil {
			s.Send(OnsetMsg{Event: *r.Onset})
		}
		return nil
	})
}
