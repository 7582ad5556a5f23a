// ABOUTME: WebSocket onset feed server
// ABOUTME: Fans analysis results out to display clients and serves status and recordings
package notecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/harperreed/notecast/internal/discovery"
	"github.com/harperreed/notecast/pkg/clock"
	"github.com/harperreed/notecast/pkg/note"
	"github.com/harperreed/notecast/pkg/protocol"
)

const (
	// DefaultPort is the feed's default TCP port
	DefaultPort = 8928

	// DefaultServerName identifies the feed when no name is configured
	DefaultServerName = "Notecast"

	clientBuffer   = 64
	helloTimeout   = 5 * time.Second
	writeDeadline  = 10 * time.Second
	pingInterval   = 30 * time.Second
	shutdownPeriod = 5 * time.Second
)

// RecordingSource provides the current recording for GET /recording.mid
type RecordingSource interface {
	WriteTo(w io.Writer) (int64, error)
}

// ServerConfig configures the onset feed
type ServerConfig struct {
	// Port to listen on (default: 8928)
	Port int

	// Name of the server for identification
	Name string

	// Stream describes the analysis parameters sent in stream/start
	Stream protocol.StreamStart

	// Recording, when set, is served at /recording.mid
	Recording RecordingSource

	// Mapper names pitches in note/pitch messages (default: A4 = 440Hz)
	Mapper note.Mapper

	// EnableMDNS enables mDNS service advertisement
	EnableMDNS bool

	// Debug enables debug logging
	Debug bool
}

// Server pushes onsets to connected display clients
type Server struct {
	config   ServerConfig
	serverID string
	uptime   clock.Clock

	upgrader websocket.Upgrader
	handler  http.Handler

	httpServer *http.Server

	clients   map[string]*client
	clientsMu sync.RWMutex

	windows   atomic.Uint64
	onsets    atomic.Uint64
	lastOnset atomic.Pointer[protocol.NoteOnset]

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// client is a connected display (internal)
type client struct {
	ID        string
	Name      string
	WantPitch bool
	Conn      *websocket.Conn

	sendChan chan interface{}
	done     chan struct{}
	dropped  atomic.Uint64
}

// ClientInfo represents information about a connected client
type ClientInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	WantPitch bool   `json:"want_pitch"`
	Dropped   uint64 `json:"dropped"`
}

// Status is the body of GET /status
type Status struct {
	ServerID  string               `json:"server_id"`
	Name      string               `json:"name"`
	Version   int                  `json:"version"`
	UptimeMs  int64                `json:"uptime_ms"`
	Stream    protocol.StreamStart `json:"stream"`
	Windows   uint64               `json:"windows"`
	Onsets    uint64               `json:"onsets"`
	LastOnset *protocol.NoteOnset  `json:"last_onset,omitempty"`
	Clients   []ClientInfo         `json:"clients"`
}

// NewServer creates a new feed server
func NewServer(config ServerConfig) (*Server, error) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", config.Port)
	}
	if config.Name == "" {
		config.Name = DefaultServerName
	}
	if config.Mapper == (note.Mapper{}) {
		config.Mapper = note.Default
	}

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		uptime:   clock.NewWallClock(),
		upgrader: websocket.Upgrader{
			// Browser visualizers on the local network connect from any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[string]*client),
		stopChan: make(chan struct{}),
	}

	router := mux.NewRouter()
	router.HandleFunc(protocol.Path, s.handleWebSocket)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/recording.mid", s.handleRecording).Methods(http.MethodGet)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	return s, nil
}

// Handler returns the HTTP handler serving the feed, status and recording
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ID returns the server's identifier
func (s *Server) ID() string {
	return s.serverID
}

// Start listens on the configured port and blocks until Stop
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln and blocks until Stop
func (s *Server) Serve(ln net.Listener) error {
	log.Printf("Server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		port := s.config.Port
		if addr, ok := ln.Addr().(*net.TCPAddr); ok {
			port = addr.Port
		}
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        port,
			Path:        protocol.Path,
		})
		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	s.httpServer = &http.Server{Handler: s.handler}
	log.Printf("WebSocket server listening on %s", ln.Addr())

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		return err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	s.End("server stopped")
	closing := s.closeClients(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Hijacked WebSocket connections are not closed by Shutdown
	for _, c := range closing {
		c.Conn.Close()
	}

	s.wg.Wait()
	log.Printf("Server stopped cleanly")
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Handle publishes one analysis result to connected clients
func (s *Server) Handle(r Result) error {
	s.windows.Add(1)

	var onsetMsg *protocol.Message
	if r.Onset != nil {
		on := protocol.NewNoteOnset(*r.Onset)
		s.onsets.Add(1)
		s.lastOnset.Store(&on)
		onsetMsg = &protocol.Message{Type: protocol.TypeNoteOnset, Payload: on}
	}

	var pitchMsg *protocol.Message

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if c.WantPitch {
			if pitchMsg == nil {
				p := protocol.NewNotePitch(r.Estimate, r.At, s.config.Mapper)
				pitchMsg = &protocol.Message{Type: protocol.TypeNotePitch, Payload: p}
			}
			s.send(c, *pitchMsg)
		}
		if onsetMsg != nil {
			s.send(c, *onsetMsg)
		}
	}
	return nil
}

// End tells every client the stream is over
func (s *Server) End(reason string) {
	msg := protocol.Message{Type: protocol.TypeStreamEnd, Payload: protocol.StreamEnd{Reason: reason}}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		s.send(c, msg)
	}
}

// Clients returns information about all connected clients
func (s *Server) Clients() []ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	clients := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, ClientInfo{
			ID:        c.ID,
			Name:      c.Name,
			WantPitch: c.WantPitch,
			Dropped:   c.dropped.Load(),
		})
	}
	return clients
}

// Status reports counters and connected clients
func (s *Server) Status() Status {
	return Status{
		ServerID:  s.serverID,
		Name:      s.config.Name,
		Version:   protocol.ProtocolVersion,
		UptimeMs:  s.uptime.Now().Milliseconds(),
		Stream:    s.config.Stream,
		Windows:   s.windows.Load(),
		Onsets:    s.onsets.Load(),
		LastOnset: s.lastOnset.Load(),
		Clients:   s.Clients(),
	}
}

// handleStatus serves GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Status()); err != nil {
		log.Printf("Error writing status: %v", err)
	}
}

// handleRecording serves GET /recording.mid
func (s *Server) handleRecording(w http.ResponseWriter, r *http.Request) {
	if s.config.Recording == nil {
		http.Error(w, "recording disabled", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="recording.mid"`)
	if _, err := s.config.Recording.WriteTo(w); err != nil {
		log.Printf("Error writing recording: %v", err)
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	shutdown := s.isShutdown
	s.shutdownMu.RUnlock()
	if shutdown {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New WebSocket connection from %s", r.RemoteAddr)
	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	var env protocol.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	if env.Type != protocol.TypeClientHello {
		log.Printf("Expected client/hello, got %s", env.Type)
		return
	}
	var hello protocol.ClientHello
	if err := env.Decode(&hello); err != nil {
		log.Printf("Error decoding client hello: %v", err)
		return
	}
	if hello.ClientID == "" || hello.Name == "" {
		log.Printf("Client hello missing required fields")
		return
	}

	log.Printf("Client hello: %s (ID: %s, pitch: %v)", hello.Name, hello.ClientID, hello.WantPitch)

	c := &client{
		ID:        hello.ClientID,
		Name:      hello.Name,
		WantPitch: hello.WantPitch,
		Conn:      conn,
		sendChan:  make(chan interface{}, clientBuffer),
		done:      make(chan struct{}),
	}

	// Handshake messages are queued before the client becomes visible to
	// Handle, so they always arrive first
	c.sendChan <- protocol.Message{Type: protocol.TypeServerHello, Payload: protocol.ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  protocol.ProtocolVersion,
	}}
	c.sendChan <- protocol.Message{Type: protocol.TypeStreamStart, Payload: s.config.Stream}

	s.clientsMu.Lock()
	s.shutdownMu.RLock()
	shutdown := s.isShutdown
	s.shutdownMu.RUnlock()
	if shutdown {
		s.clientsMu.Unlock()
		return
	}
	if _, exists := s.clients[c.ID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected, rejecting duplicate", c.ID)
		return
	}
	s.clients[c.ID] = c
	s.clientsMu.Unlock()

	go func() {
		defer close(c.done)
		s.clientWriter(c)
	}()

	defer func() {
		s.removeClient(c)
		<-c.done
		log.Printf("Client disconnected: %s", c.Name)
	}()

	// Clients only speak during the handshake; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// clientWriter sends queued messages to the client. Once the queue is
// closed and drained it sends a normal close frame.
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				c.Conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeDeadline))
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.Conn.WriteJSON(msg); err != nil {
				if s.config.Debug {
					log.Printf("Error writing to %s: %v", c.Name, err)
				}
				c.Conn.Close()
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				c.Conn.Close()
				return
			}
		}
	}
}

// closeClients unregisters every client and waits up to timeout for their
// writers to flush what is queued. It returns the closed clients.
func (s *Server) closeClients(timeout time.Duration) []*client {
	s.clientsMu.Lock()
	closing := make([]*client, 0, len(s.clients))
	for id, c := range s.clients {
		delete(s.clients, id)
		close(c.sendChan)
		closing = append(closing, c)
	}
	s.clientsMu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for _, c := range closing {
		select {
		case <-c.done:
		case <-deadline.C:
			log.Printf("Timed out flushing %d clients", len(closing))
			return closing
		}
	}
	return closing
}

// removeClient unregisters c and stops its writer
func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if existing, ok := s.clients[c.ID]; ok && existing == c {
		delete(s.clients, c.ID)
		close(c.sendChan)
	}
}

// send queues msg for c, dropping it when the client is too slow
func (s *Server) send(c *client, msg protocol.Message) {
	select {
	case c.sendChan <- msg:
	default:
		if n := c.dropped.Add(1); s.config.Debug || n == 1 {
			log.Printf("Client %s send buffer full, dropping %s", c.Name, msg.Type)
		}
	}
}
