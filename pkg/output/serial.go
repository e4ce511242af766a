package output

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"github.com/james-see/acidstep/pkg/control"
)

// CV interface framing
const (
	SOF0         = 0xAA
	SOF1         = 0x55
	CmdApplyStep = 0x20
)

// Flag bits of a CV frame
const (
	FlagGate   = 0x01
	FlagAccent = 0x02
	FlagSlide  = 0x04
	FlagTie    = 0x08
)

// CVFrame is the full output state sent to the CV/gate interface
type CVFrame struct {
	Note  byte // absolute note, the interface converts it to 1V/oct
	Flags byte // FlagGate | FlagAccent | FlagSlide | FlagTie
	Step  byte // cursor position, for display
	Seq   byte // rolling sequence number
}

// NewCVFrame converts a resolved frame
func NewCVFrame(f control.Frame, seq byte) CVFrame {
	var flags byte
	if f.Gate {
		flags |= FlagGate
	}
	if f.Accent {
		flags |= FlagAccent
	}
	if f.Slide {
		flags |= FlagSlide
	}
	if f.Tie {
		flags |= FlagTie
	}
	return CVFrame{
		Note:  byte(clampNote(f.Note)),
		Flags: flags,
		Step:  byte(f.Step),
		Seq:   seq,
	}
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][note][flags][step][seq][CKS]
func (c CVFrame) Encode() []byte {
	payload := []byte{c.Note, c.Flags, c.Step, c.Seq}

	length := byte(len(payload) + 1) // +1 for CMD byte
	cks := length ^ CmdApplyStep
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, CmdApplyStep}
	out = append(out, payload...)
	out = append(out, cks)
	return out
}

// Serial writes CV frames to a serial CV/gate interface
type Serial struct {
	mu   sync.Mutex
	port io.WriteCloser
	seq  byte
	last CVFrame
}

// NewSerial wraps an already opened port
func NewSerial(port io.WriteCloser) *Serial {
	return &Serial{port: port}
}

// OpenSerial opens the named serial device at the given baud rate
func OpenSerial(name string, baud int) (*Serial, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: failed to open %s: %w", name, err)
	}
	slog.Info("serial: port opened", "device", name, "baud", baud)
	return NewSerial(p), nil
}

// SerialPorts lists serial devices present on the system
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}

// Emit encodes and writes f
func (s *Serial) Emit(f control.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(NewCVFrame(f, s.seq))
}

// Release rewrites the last frame with every flag cleared
func (s *Serial) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.last
	c.Flags = 0
	c.Seq = s.seq
	return s.write(c)
}

// Close closes the underlying port
func (s *Serial) Close() error {
	slog.Info("serial: closing port")
	return s.port.Close()
}

func (s *Serial) write(c CVFrame) error {
	if _, err := s.port.Write(c.Encode()); err != nil {
		slog.Error("serial: write error", "err", err)
		return fmt.Errorf("serial: write: %w", err)
	}
	s.last = c
	s.seq++
	return nil
}
