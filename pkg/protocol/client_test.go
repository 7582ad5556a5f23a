// ABOUTME: Tests for the feed WebSocket client
// ABOUTME: Runs a scripted server over httptest and checks handshake and routing
package protocol

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// scriptedServer answers the handshake then writes msgs in order
func scriptedServer(t *testing.T, gotHello chan<- ClientHello, msgs ...Message) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != Path {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		var hello ClientHello
		env.Decode(&hello)
		gotHello <- hello

		conn.WriteJSON(Message{Type: TypeServerHello, Payload: ServerHello{ServerID: "srv-1", Name: "Stage", Version: ProtocolVersion}})
		for _, m := range msgs {
			conn.WriteJSON(m)
		}
		// Hold the connection until the client goes away
		conn.ReadMessage()
	}))
}

func TestClient_HandshakeAndRouting(t *testing.T) {
	hellos := make(chan ClientHello, 1)
	srv := scriptedServer(t, hellos,
		Message{Type: TypeStreamStart, Payload: StreamStart{SampleRate: 44100, WindowSize: 2048}},
		Message{Type: TypeNoteOnset, Payload: NoteOnset{NoteNumber: 69, Name: "A", Octave: 4}},
		Message{Type: TypeNotePitch, Payload: NotePitch{Detected: true, Frequency: 440}},
		Message{Type: TypeStreamEnd, Payload: StreamEnd{Reason: "eof"}},
	)
	defer srv.Close()

	client := NewClient(Config{
		ServerAddr: strings.TrimPrefix(srv.URL, "http://"),
		Name:       "Test Display",
		WantPitch:  true,
	})
	if err := client.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Close()

	hello := <-hellos
	if hello.Name != "Test Display" || !hello.WantPitch || hello.ClientID == "" {
		t.Errorf("unexpected client/hello: %+v", hello)
	}
	if hello.Version != ProtocolVersion {
		t.Errorf("expected version %d, got %d", ProtocolVersion, hello.Version)
	}
	if got := client.Server(); got.ServerID != "srv-1" || got.Name != "Stage" {
		t.Errorf("unexpected server/hello: %+v", got)
	}

	select {
	case start := <-client.StreamStart:
		if start.SampleRate != 44100 || start.WindowSize != 2048 {
			t.Errorf("unexpected stream/start: %+v", start)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream/start")
	}

	select {
	case on := <-client.Onsets:
		if on.Name != "A" || on.Octave != 4 {
			t.Errorf("unexpected onset: %+v", on)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for onset")
	}

	select {
	case end := <-client.StreamEnd:
		if end.Reason != "eof" {
			t.Errorf("expected reason eof, got %q", end.Reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream/end")
	}

	// stream/end closes the client and its channels
	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not close after stream/end")
	}
	for range client.Onsets {
	}
	if client.IsConnected() {
		t.Error("expected client to be disconnected")
	}
}

func TestClient_ConnectFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := NewClient(Config{ServerAddr: strings.TrimPrefix(srv.URL, "http://"), Name: "x"})
	if err := client.Connect(); err == nil {
		t.Fatal("expected dial error, got nil")
	}
}
