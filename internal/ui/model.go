// ABOUTME: Bubbletea model for the note display TUI
// ABOUTME: Tracks the live pitch, recent onsets and feed status
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/notecast/pkg/note"
	"github.com/harperreed/notecast/pkg/onset"
	"github.com/harperreed/notecast/pkg/pitch"
)

// historySize is how many onsets the history line keeps
const historySize = 12

// Model represents the TUI state
type Model struct {
	// Source
	source     string
	sampleRate int
	windowSize int
	ended      bool
	endReason  string

	// Connection (watch mode)
	connected  bool
	serverName string

	// Live pitch
	detected  bool
	frequency float64
	current   note.Identity
	at        time.Duration

	// Onsets
	history []onset.Event
	onsets  int64
	windows int64

	// Outputs
	clients   int
	recording string
	lastErr   string

	// Display
	frozen    bool
	showDebug bool

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case PitchMsg:
		m.applyPitch(msg)
	case OnsetMsg:
		m.applyOnset(msg)
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderPitch()
	s += m.renderHistory()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders the source and connection status
func (m Model) renderHeader() string {
	status := "Listening"
	switch {
	case m.ended:
		status = "Ended"
		if m.endReason != "" {
			status += ": " + m.endReason
		}
	case m.serverName != "" && m.connected:
		status = fmt.Sprintf("Connected to %s", m.serverName)
	case m.serverName != "":
		status = "Disconnected"
	}

	source := m.source
	if source == "" {
		source = "(none)"
	}
	if m.sampleRate > 0 {
		source = fmt.Sprintf("%s @ %dHz", source, m.sampleRate)
	}

	return fmt.Sprintf(`┌─ Notecast ───────────────────────────────────────────┐
│ Status: %-45s │
│ Source: %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(status, 45), truncate(source, 45))
}

// renderPitch renders the current note and tuning meter
func (m Model) renderPitch() string {
	if !m.detected {
		return "│ Note:   --                                           │\n" +
			"│         [                     ]                      │\n"
	}

	return fmt.Sprintf("│ Note:   %-4s %8.2fHz  %+3d cents%-18s │\n"+
		"│         [%s]%-22s │\n",
		m.current.FullName(), m.frequency, m.current.Cents, "",
		renderMeter(m.current.Cents, 21), "")
}

// renderHistory renders recent onsets, newest last
func (m Model) renderHistory() string {
	names := make([]string, len(m.history))
	for i, ev := range m.history {
		names[i] = ev.Note.FullName()
	}
	line := strings.Join(names, " ")
	if line == "" {
		line = "(no onsets yet)"
	}
	return fmt.Sprintf("│ Notes:  %-45s │\n", truncateLeft(line, 45))
}

// renderStats renders analysis counters
func (m Model) renderStats() string {
	rec := "off"
	if m.recording != "" {
		rec = m.recording
	}
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Stats:  Onsets: %-6d Windows: %-8d Clients: %-3d │
│ Record: %-45s │
`, m.onsets, m.windows, m.clients, truncate(rec, 45))
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ f:Freeze  c:Clear  d:Debug  q:Quit                   │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	errText := m.lastErr
	if errText == "" {
		errText = "none"
	}
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Window: %-6d samples  Time: %-17s │
│   Frozen: %-5v  Last error: %-23s │
`, m.windowSize, m.at.Truncate(time.Millisecond), m.frozen, truncate(errText, 23))
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "f":
		m.frozen = !m.frozen
	case "c":
		m.history = nil
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyPitch updates the live note from a window estimate
func (m *Model) applyPitch(msg PitchMsg) {
	m.windows++
	if m.frozen {
		return
	}
	m.at = msg.At
	hz, ok := msg.Estimate.Frequency()
	m.detected = ok
	if !ok {
		return
	}
	m.frequency = hz
	m.current = msg.Note
}

// applyOnset records an onset in the history
func (m *Model) applyOnset(msg OnsetMsg) {
	m.onsets++
	if m.frozen {
		return
	}
	m.history = append(m.history, msg.Event)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.ServerName != "" {
		m.serverName = msg.ServerName
	}
	if msg.Source != "" {
		m.source = msg.Source
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
		m.windowSize = msg.WindowSize
	}
	if msg.Clients != nil {
		m.clients = *msg.Clients
	}
	if msg.Recording != "" {
		m.recording = msg.Recording
	}
	if msg.Ended {
		m.ended = true
		m.endReason = msg.Reason
	}
	if msg.Err != nil {
		m.lastErr = msg.Err.Error()
	}
}

// PitchMsg carries the estimate for one window
type PitchMsg struct {
	Estimate pitch.Estimate
	Note     note.Identity
	At       time.Duration
}

// OnsetMsg carries a note onset
type OnsetMsg struct {
	Event onset.Event
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Connected  *bool
	ServerName string
	Source     string
	SampleRate int
	WindowSize int
	Clients    *int
	Recording  string
	Ended      bool
	Reason     string
	Err        error
}

// renderMeter draws a tuning meter with the marker offset by cents
// (-50..+49) from the center cell
func renderMeter(cents, width int) string {
	center := width / 2
	pos := center + cents*center/50
	if pos < 0 {
		pos = 0
	}
	if pos >= width {
		pos = width - 1
	}

	bar := make([]rune, width)
	for i := range bar {
		switch {
		case i == pos:
			bar[i] = '●'
		case i == center:
			bar[i] = '│'
		default:
			bar[i] = '·'
		}
	}
	return string(bar)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

// truncateLeft keeps the end of s, which holds the newest onsets
func truncateLeft(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return "..." + s[len(s)-length+3:]
}
