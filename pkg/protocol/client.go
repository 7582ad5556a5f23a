// ABOUTME: WebSocket client for the notecast onset feed
// ABOUTME: Handles connection, handshake, and message routing
package protocol

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const handshakeTimeout = 5 * time.Second

// Config holds client configuration
type Config struct {
	ServerAddr string
	ClientID   string // generated when empty
	Name       string
	WantPitch  bool
	DeviceInfo *DeviceInfo
}

// Client represents a feed subscriber
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Message channels, closed when the connection ends
	Onsets      chan NoteOnset
	Pitches     chan NotePitch
	StreamStart chan StreamStart
	StreamEnd   chan StreamEnd

	server    ServerHello
	connected bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a new feed client
func NewClient(config Config) *Client {
	if config.ClientID == "" {
		config.ClientID = uuid.New().String()
	}

	return &Client{
		config:      config,
		Onsets:      make(chan NoteOnset, 100),
		Pitches:     make(chan NotePitch, 100),
		StreamStart: make(chan StreamStart, 1),
		StreamEnd:   make(chan StreamEnd, 1),
		done:        make(chan struct{}),
	}
}

// Connect establishes WebSocket connection and performs handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()
	return nil
}

// handshake sends client/hello and waits for server/hello
func (c *Client) handshake() error {
	hello := ClientHello{
		ClientID:   c.config.ClientID,
		Name:       c.config.Name,
		Version:    ProtocolVersion,
		WantPitch:  c.config.WantPitch,
		DeviceInfo: c.config.DeviceInfo,
	}
	if err := c.sendJSON(Message{Type: TypeClientHello, Payload: hello}); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	var env Envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	if env.Type != TypeServerHello {
		return fmt.Errorf("expected server/hello, got %s", env.Type)
	}
	var server ServerHello
	if err := env.Decode(&server); err != nil {
		return err
	}

	c.mu.Lock()
	c.server = server
	c.mu.Unlock()

	log.Printf("Handshake complete with %s (ID: %s)", server.Name, server.ServerID)
	return nil
}

// Server returns the server/hello received during the handshake
func (c *Client) Server() ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.server
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages until the connection ends
func (c *Client) readMessages() {
	defer func() {
		c.Close()
		close(c.Onsets)
		close(c.Pitches)
		close(c.StreamStart)
		close(c.StreamEnd)
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Read error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			log.Printf("Unexpected WebSocket message type: %d", messageType)
			continue
		}
		if ended := c.handleJSONMessage(data); ended {
			return
		}
	}
}

// handleJSONMessage routes one message and reports whether the stream ended
func (c *Client) handleJSONMessage(data []byte) bool {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return false
	}

	switch env.Type {
	case TypeNoteOnset:
		var onset NoteOnset
		if err := env.Decode(&onset); err != nil {
			log.Printf("%v", err)
			return false
		}
		select {
		case c.Onsets <- onset:
		case <-c.done:
		}

	case TypeNotePitch:
		var p NotePitch
		if err := env.Decode(&p); err != nil {
			log.Printf("%v", err)
			return false
		}
		// Pitch updates are advisory; drop when the consumer lags
		select {
		case c.Pitches <- p:
		default:
		}

	case TypeStreamStart:
		var start StreamStart
		if err := env.Decode(&start); err != nil {
			log.Printf("%v", err)
			return false
		}
		select {
		case c.StreamStart <- start:
		default:
			log.Printf("Stream start channel full, dropping message")
		}

	case TypeStreamEnd:
		var end StreamEnd
		if err := env.Decode(&end); err != nil {
			log.Printf("%v", err)
		}
		log.Printf("Stream ended: %s", end.Reason)
		select {
		case c.StreamEnd <- end:
		default:
		}
		return true

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
	return false
}

// Close closes the connection
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		close(c.done)
		if c.connected {
			c.connected = false
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			c.conn.Close()
			log.Printf("Connection closed")
		}
	})
}

// Done is closed when the client has been closed
func (c *Client) Done() <-chan struct{} { return c.done }

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
