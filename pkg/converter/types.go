// Package converter moves engine patterns between MIDI files and the
// device .seq/.syx formats.
package converter

import (
	"github.com/james-see/acidstep/pkg/engine"
)

// Pattern is an engine pattern plus the metadata file formats carry
type Pattern struct {
	Name  string
	Tempo float64
	Steps engine.Pattern
}

// NewPattern creates a named pattern with every step cleared
func NewPattern(name string) *Pattern {
	return &Pattern{
		Name:  name,
		Tempo: DefaultTempo,
		Steps: engine.NewPattern(),
	}
}

// FromEngine snapshots the steps of e
func FromEngine(name string, e *engine.Engine) *Pattern {
	return &Pattern{
		Name:  name,
		Tempo: DefaultTempo,
		Steps: e.Pattern(),
	}
}

// Engine returns a new engine holding the pattern's steps. It reports false,
// with an empty engine, when a step is out of range.
func (p *Pattern) Engine() (*engine.Engine, bool) {
	e := engine.New()
	ok := e.Load(p.Steps)
	return e, ok
}

// Device interface for device-specific format handling
type Device interface {
	Name() string
	ID() uint8
	ParseSeq(data []byte) (*Pattern, error)
	GenerateSeq(pattern *Pattern) ([]byte, error)
	ParseSyx(data []byte) (*Pattern, error)
	GenerateSyx(pattern *Pattern) ([]byte, error)
}

// Converter handles format conversions
type Converter struct {
	device   Device
	baseNote int
	channel  uint8
}

// New creates a Converter for device at the default base note
func New(device Device) *Converter {
	return &Converter{device: device, baseNote: DefaultBaseNote}
}

// ForDevice returns a copy of c that encodes for device
func (c *Converter) ForDevice(device Device) *Converter {
	cp := *c
	cp.device = device
	return &cp
}

// GetDevice returns the current device
func (c *Converter) GetDevice() Device {
	return c.device
}

// SetDevice sets the device for conversion
func (c *Converter) SetDevice(device Device) {
	c.device = device
}

// SetBaseNote sets the MIDI note pitch 0 is read and written as
func (c *Converter) SetBaseNote(n int) {
	c.baseNote = n
}

// SetChannel sets the channel MIDI files are written on
func (c *Converter) SetChannel(ch uint8) {
	c.channel = ch & 0x0F
}

// BaseNote returns the MIDI note of pitch 0
func (c *Converter) BaseNote() int {
	return c.baseNote
}

func (c *Converter) midi() *MIDIConverter {
	m := NewMIDIConverter()
	m.SetBaseNote(c.baseNote)
	m.SetChannel(c.channel)
	return m
}
