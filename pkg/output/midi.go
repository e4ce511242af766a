// Package output turns resolved sequencer frames into MIDI messages or
// CV/gate frames for a serial interface.
package output

import (
	"fmt"
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/james-see/acidstep/pkg/control"
)

// Velocities used for plain and accented notes
const (
	VelocityNormal = 100
	VelocityAccent = 127
)

const noNote = -1

// MIDI plays frames as monophonic note on/off messages. A sliding frame
// starts the new note before releasing the old one so receivers glide.
type MIDI struct {
	mu       sync.Mutex
	send     func(msg midi.Message) error
	channel  uint8
	sounding int
}

// NewMIDI creates a MIDI output that writes through send
func NewMIDI(send func(msg midi.Message) error, channel uint8) *MIDI {
	return &MIDI{
		send:     send,
		channel:  channel & 0x0F,
		sounding: noNote,
	}
}

// OpenMIDI connects to the named MIDI output port. A driver must be
// registered by the caller.
func OpenMIDI(portName string, channel uint8) (*MIDI, error) {
	out, err := midi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("midi: can't find output port %q: %w", portName, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("midi: can't open output port %q: %w", portName, err)
	}
	slog.Info("midi: output opened", "port", out.String(), "channel", channel)
	return NewMIDI(send, channel), nil
}

// OutPorts lists the names of available MIDI output ports
func OutPorts() []string {
	var names []string
	for _, p := range midi.GetOutPorts() {
		names = append(names, p.String())
	}
	return names
}

// CloseDriver shuts down the MIDI driver
func CloseDriver() {
	midi.CloseDriver()
}

// Emit sends the messages needed to move from the sounding note to f
func (m *MIDI) Emit(f control.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !f.Gate {
		return m.noteOff()
	}

	note := clampNote(f.Note)
	if m.sounding != noNote && (f.Tie || (f.Slide && m.sounding == note)) {
		return nil
	}

	velocity := uint8(VelocityNormal)
	if f.Accent {
		velocity = VelocityAccent
	}

	if m.sounding != noNote && f.Slide {
		old := m.sounding
		if err := m.send(midi.NoteOn(m.channel, uint8(note), velocity)); err != nil {
			return fmt.Errorf("midi: note on: %w", err)
		}
		m.sounding = note
		if err := m.send(midi.NoteOff(m.channel, uint8(old))); err != nil {
			return fmt.Errorf("midi: note off: %w", err)
		}
		return nil
	}

	if err := m.noteOff(); err != nil {
		return err
	}
	if err := m.send(midi.NoteOn(m.channel, uint8(note), velocity)); err != nil {
		return fmt.Errorf("midi: note on: %w", err)
	}
	m.sounding = note
	return nil
}

// Release silences the sounding note
func (m *MIDI) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.noteOff()
}

// Sounding returns the note currently held, or -1
func (m *MIDI) Sounding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sounding
}

func (m *MIDI) noteOff() error {
	if m.sounding == noNote {
		return nil
	}
	note := m.sounding
	m.sounding = noNote
	if err := m.send(midi.NoteOff(m.channel, uint8(note))); err != nil {
		return fmt.Errorf("midi: note off: %w", err)
	}
	return nil
}

func clampNote(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 127:
		return 127
	default:
		return n
	}
}
