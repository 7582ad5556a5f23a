// ABOUTME: LED display writer for note onsets
// ABOUTME: Sends one frame per onset over a go.bug.st/serial port or any writer
package leddisplay

import (
	"fmt"
	"io"
	"log"
	"sync"

	"go.bug.st/serial"

	"github.com/harperreed/notecast/pkg/onset"
)

// DefaultBaud is the controller's serial speed
const DefaultBaud = 115200

// Display lights notes on an LED controller
type Display struct {
	w   io.Writer
	mu  sync.Mutex
	seq byte
}

// Open opens the named serial device at the given baud rate
func Open(name string, baud int) (*Display, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	log.Printf("LED display: port %s opened at %d baud", name, baud)
	return New(p), nil
}

// New writes frames to w, which is closed by Close when it is an io.Closer
func New(w io.Writer) *Display {
	return &Display{w: w}
}

// Ports lists serial devices a display may be attached to
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Show sends a note frame for e
func (d *Display) Show(e onset.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cents := e.Note.Cents
	if cents > 127 {
		cents = 127
	} else if cents < -128 {
		cents = -128
	}

	f := Frame{
		Cmd:        CmdShowNote,
		Note:       byte(e.Note.Number),
		PitchClass: byte(((e.Note.Number % 12) + 12) % 12),
		Octave:     int8(e.Note.Octave),
		Cents:      int8(cents),
		Seq:        d.seq,
	}
	if err := d.write(f); err != nil {
		return err
	}
	d.seq++
	return nil
}

// Clear blanks the display
func (d *Display) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(Frame{Cmd: CmdClear})
}

func (d *Display) write(f Frame) error {
	if _, err := d.w.Write(f.Encode()); err != nil {
		return fmt.Errorf("LED display write failed: %w", err)
	}
	return nil
}

// Close blanks the display and closes the port
func (d *Display) Close() error {
	if err := d.Clear(); err != nil {
		log.Printf("LED display: clear on close failed: %v", err)
	}
	if c, ok := d.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
