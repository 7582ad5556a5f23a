// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests pitch, onset and status updates plus key handling
package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/notecast/pkg/note"
	"github.com/harperreed/notecast/pkg/notecast"
	"github.com/harperreed/notecast/pkg/onset"
	"github.com/harperreed/notecast/pkg/pitch"
)

func onsetFor(n int, at time.Duration) onset.Event {
	hz := note.FrequencyFromNumber(n)
	return onset.Event{Note: note.Identify(hz), Frequency: hz, At: at}
}

func TestNewModel(t *testing.T) {
	model := NewModel("tone")

	if model.source != "tone" {
		t.Errorf("expected source 'tone', got '%s'", model.source)
	}
	if model.detected {
		t.Error("expected no pitch initially")
	}
	if model.frozen {
		t.Error("expected frozen to be false initially")
	}
	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}
}

func TestPitchMsgDetected(t *testing.T) {
	model := NewModel("")

	model.applyPitch(PitchMsg{
		Estimate: pitch.Detected(441),
		Note:     note.Identify(441),
		At:       time.Second,
	})

	if !model.detected {
		t.Fatal("expected detected after pitch message")
	}
	if model.frequency != 441 {
		t.Errorf("expected frequency 441, got %f", model.frequency)
	}
	if model.current.FullName() != "A4" {
		t.Errorf("expected A4, got %s", model.current.FullName())
	}
	if model.windows != 1 {
		t.Errorf("expected 1 window, got %d", model.windows)
	}
}

func TestPitchMsgSilence(t *testing.T) {
	model := NewModel("")
	model.applyPitch(PitchMsg{Estimate: pitch.Detected(440), Note: note.Identify(440)})
	model.applyPitch(PitchMsg{Estimate: pitch.NoPitch()})

	if model.detected {
		t.Error("expected silence to clear the live note")
	}
	if model.windows != 2 {
		t.Errorf("expected 2 windows, got %d", model.windows)
	}
}

func TestOnsetHistoryIsBounded(t *testing.T) {
	model := NewModel("")

	for i := 0; i < historySize+5; i++ {
		model.applyOnset(OnsetMsg{Event: onsetFor(60+i%12, time.Duration(i)*time.Second)})
	}

	if len(model.history) != historySize {
		t.Errorf("expected history of %d, got %d", historySize, len(model.history))
	}
	if model.onsets != int64(historySize+5) {
		t.Errorf("expected %d onsets, got %d", historySize+5, model.onsets)
	}
	last := model.history[len(model.history)-1]
	if last.At != time.Duration(historySize+4)*time.Second {
		t.Errorf("expected newest onset last, got %v", last.At)
	}
}

func TestFreezeKeepsCounting(t *testing.T) {
	model := NewModel("")
	model.applyPitch(PitchMsg{Estimate: pitch.Detected(440), Note: note.Identify(440)})

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	model = updated.(Model)
	if !model.frozen {
		t.Fatal("expected f to freeze the display")
	}

	model.applyPitch(PitchMsg{Estimate: pitch.Detected(523.25), Note: note.Identify(523.25)})
	model.applyOnset(OnsetMsg{Event: onsetFor(72, time.Second)})

	if model.current.FullName() != "A4" {
		t.Errorf("expected frozen note A4, got %s", model.current.FullName())
	}
	if len(model.history) != 0 {
		t.Errorf("expected no history while frozen, got %d", len(model.history))
	}
	if model.windows != 2 || model.onsets != 1 {
		t.Errorf("expected counters to advance while frozen, got windows=%d onsets=%d", model.windows, model.onsets)
	}
}

func TestClearAndQuitKeys(t *testing.T) {
	model := NewModel("")
	model.applyOnset(OnsetMsg{Event: onsetFor(69, 0)})

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	model = updated.(Model)
	if len(model.history) != 0 {
		t.Errorf("expected c to clear history, got %d", len(model.history))
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected q to quit")
	}
}

func TestStatusMsg(t *testing.T) {
	model := NewModel("")

	connected := true
	clients := 3
	model.applyStatus(StatusMsg{
		Connected:  &connected,
		ServerName: "studio",
		Source:     "capture",
		SampleRate: 44100,
		WindowSize: 2048,
		Clients:    &clients,
		Recording:  "take.mid",
	})

	if !model.connected || model.serverName != "studio" {
		t.Errorf("expected connection to studio, got %v %q", model.connected, model.serverName)
	}
	if model.source != "capture" || model.sampleRate != 44100 || model.windowSize != 2048 {
		t.Errorf("unexpected source info: %q %d %d", model.source, model.sampleRate, model.windowSize)
	}
	if model.clients != 3 {
		t.Errorf("expected 3 clients, got %d", model.clients)
	}
	if model.recording != "take.mid" {
		t.Errorf("expected recording 'take.mid', got '%s'", model.recording)
	}
}

func TestStatusMsgZeroValuesKeepState(t *testing.T) {
	model := NewModel("capture")
	clients := 2
	model.applyStatus(StatusMsg{Clients: &clients, SampleRate: 48000})

	model.applyStatus(StatusMsg{})

	if model.source != "capture" || model.sampleRate != 48000 || model.clients != 2 {
		t.Errorf("expected empty status to keep state, got %q %d %d", model.source, model.sampleRate, model.clients)
	}
}

func TestStatusMsgEnded(t *testing.T) {
	model := NewModel("song.wav")
	model.applyStatus(StatusMsg{Ended: true, Reason: "end of input", Err: errors.New("boom")})

	if !model.ended || model.endReason != "end of input" {
		t.Errorf("expected ended with reason, got %v %q", model.ended, model.endReason)
	}
	if model.lastErr != "boom" {
		t.Errorf("expected last error 'boom', got '%s'", model.lastErr)
	}
}

func TestViewRendersNoteAndHistory(t *testing.T) {
	model := NewModel("tone")
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)

	model.applyPitch(PitchMsg{Estimate: pitch.Detected(440), Note: note.Identify(440)})
	model.applyOnset(OnsetMsg{Event: onsetFor(69, 0)})
	model.applyOnset(OnsetMsg{Event: onsetFor(72, time.Second)})

	view := model.View()
	for _, want := range []string{"Notecast", "A4", "440.00Hz", "A4 C5", "tone"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestViewBeforeResize(t *testing.T) {
	if got := NewModel("").View(); got != "Loading..." {
		t.Errorf("expected Loading..., got %q", got)
	}
}

func TestRenderMeter(t *testing.T) {
	tests := []struct {
		cents int
		pos   int
	}{
		{0, 10},
		{-50, 0},
		{49, 19},
		{25, 15},
	}

	for _, tt := range tests {
		bar := []rune(renderMeter(tt.cents, 21))
		if len(bar) != 21 {
			t.Fatalf("expected 21 cells, got %d", len(bar))
		}
		if bar[tt.pos] != '●' {
			t.Errorf("cents %d: expected marker at %d, got %q", tt.cents, tt.pos, string(bar))
		}
	}
}

func TestTruncateFunctions(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected 'short', got '%s'", got)
	}
	if got := truncate("a very long string", 10); got != "a very ..." {
		t.Errorf("expected 'a very ...', got '%s'", got)
	}
	if got := truncateLeft("A4 B4 C5 D5 E5", 8); got != "...D5 E5" {
		t.Errorf("expected '...D5 E5', got '%s'", got)
	}
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.msgs = append(r.msgs, msg)
}

func TestSinkForwardsResults(t *testing.T) {
	sender := &recordingSender{}
	sink := NewSink(sender)

	ev := onsetFor(69, time.Second)
	if err := sink.Handle(notecast.Result{At: time.Second, Estimate: pitch.Detected(440), Note: ev.Note, Onset: &ev}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sink.Handle(notecast.Result{Estimate: pitch.NoPitch()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(sender.msgs))
	}
	if _, ok := sender.msgs[0].(PitchMsg); !ok {
		t.Errorf("expected PitchMsg first, got %T", sender.msgs[0])
	}
	if msg, ok := sender.msgs[1].(OnsetMsg); !ok || msg.Event.Note.Number != 69 {
		t.Errorf("expected OnsetMsg for 69, got %#v", sender.msgs[1])
	}
}
