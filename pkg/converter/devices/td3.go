// Package devices provides device-specific format handlers
package devices

import (
	"errors"
	"fmt"

	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/engine"
)

// TD3 device constants
const (
	TD3DeviceID = 0x00
	TD3ModelID  = 0x01
	PatternDump = 0x40
)

// Step byte encoding
const (
	RestByte = 0x7F

	AttrGate   = 0x01
	AttrAccent = 0x02
	AttrSlide  = 0x04
	AttrTie    = 0x08
	AttrUp     = 0x10
	AttrDown   = 0x20
	AttrReset  = 0x40
)

// SyxSize is the length of a full pattern dump: seven header bytes, the
// steps, checksum and F7
const SyxSize = 7 + engine.MaxPatternLength*converter.SeqStepBytes + 2

// TD3 implements the Device interface for Behringer TD-3
type TD3 struct{}

// NewTD3 creates a new TD-3 device handler
func NewTD3() *TD3 {
	return &TD3{}
}

// Name returns the device name
func (t *TD3) Name() string {
	return "Behringer TD-3"
}

// ID returns the device ID
func (t *TD3) ID() uint8 {
	return TD3DeviceID
}

// encodeStep packs one step into its pitch and attribute bytes
func encodeStep(s engine.Step) (byte, byte, error) {
	if !s.Valid() {
		return 0, 0, fmt.Errorf("invalid step %+v", s)
	}

	pitch := byte(RestByte)
	if s.Pitch != engine.PitchRest {
		pitch = byte(s.Pitch)
	}

	var attr byte
	switch s.Gate {
	case engine.GateOn:
		attr |= AttrGate
	case engine.GateTie:
		attr |= AttrTie
	}
	if s.Accent {
		attr |= AttrAccent
	}
	if s.Slide {
		attr |= AttrSlide
	}
	switch s.Transpose {
	case engine.TransposeUp:
		attr |= AttrUp
	case engine.TransposeDown:
		attr |= AttrDown
	}
	if s.Reset {
		attr |= AttrReset
	}
	return pitch, attr, nil
}

// decodeStep is the inverse of encodeStep
func decodeStep(pitch, attr byte) (engine.Step, error) {
	s := engine.DefaultStep()

	switch {
	case pitch == RestByte:
		s.Pitch = engine.PitchRest
	case pitch <= engine.MaxPitchValue:
		s.Pitch = int8(pitch)
	default:
		return s, fmt.Errorf("pitch byte 0x%02X out of range", pitch)
	}

	switch attr & (AttrGate | AttrTie) {
	case AttrGate:
		s.Gate = engine.GateOn
	case AttrTie:
		s.Gate = engine.GateTie
	case AttrGate | AttrTie:
		return s, errors.New("step has both gate and tie set")
	}

	switch attr & (AttrUp | AttrDown) {
	case AttrUp:
		s.Transpose = engine.TransposeUp
	case AttrDown:
		s.Transpose = engine.TransposeDown
	case AttrUp | AttrDown:
		return s, errors.New("step has both transpose up and down set")
	}

	s.Accent = attr&AttrAccent != 0
	s.Slide = attr&AttrSlide != 0
	s.Reset = attr&AttrReset != 0
	return s, nil
}

// encodeSteps writes the 32-step payload shared by .seq and .syx
func encodeSteps(pattern *converter.Pattern) ([]byte, error) {
	if pattern == nil {
		return nil, errors.New("nil pattern")
	}

	data := make([]byte, engine.MaxPatternLength*converter.SeqStepBytes)
	for i, s := range pattern.Steps {
		pitch, attr, err := encodeStep(s)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		data[i*2] = pitch
		data[i*2+1] = attr
	}
	return data, nil
}

// decodeSteps fills a pattern from count encoded steps
func decodeSteps(name string, payload []byte, count int) (*converter.Pattern, error) {
	pattern := converter.NewPattern(name)
	for i := 0; i < count && i*2+1 < len(payload); i++ {
		s, err := decodeStep(payload[i*2], payload[i*2+1])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		pattern.Steps[i] = s
	}
	return pattern, nil
}

// ParseSeq parses a .seq file into a Pattern
func (t *TD3) ParseSeq(data []byte) (*converter.Pattern, error) {
	if err := converter.NewSeqConverter(t).ValidateSeq(data); err != nil {
		return nil, err
	}
	if data[5] != TD3DeviceID {
		return nil, fmt.Errorf("seq file is for device 0x%02X, not %s", data[5], t.Name())
	}
	return decodeSteps("TD-3 Pattern", data[converter.SeqHeaderSize:], int(data[6]))
}

// GenerateSeq generates .seq data from a Pattern
func (t *TD3) GenerateSeq(pattern *converter.Pattern) ([]byte, error) {
	payload, err := encodeSteps(pattern)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, converter.SeqSize)
	data = append(data, converter.SeqMagic[:]...)
	data = append(data, converter.SeqVersion, TD3DeviceID, engine.MaxPatternLength)
	data = append(data, payload...)
	return data, nil
}

// ParseSyx parses a .syx pattern dump into a Pattern
func (t *TD3) ParseSyx(data []byte) (*converter.Pattern, error) {
	if len(data) != SyxSize {
		return nil, fmt.Errorf("syx data has wrong length: got %d, want %d", len(data), SyxSize)
	}
	d, err := converter.ParseDump(data)
	if err != nil {
		return nil, err
	}
	if d.Model != TD3ModelID {
		return nil, fmt.Errorf("syx dump is for model 0x%02X, not %s", d.Model, t.Name())
	}
	if d.Command != PatternDump {
		return nil, fmt.Errorf("unsupported SysEx command 0x%02X", d.Command)
	}
	return decodeSteps("TD-3 SysEx Pattern", d.Payload, engine.MaxPatternLength)
}

// GenerateSyx generates a .syx pattern dump from a Pattern
func (t *TD3) GenerateSyx(pattern *converter.Pattern) ([]byte, error) {
	payload, err := encodeSteps(pattern)
	if err != nil {
		return nil, err
	}
	d := converter.Dump{Device: TD3DeviceID, Model: TD3ModelID, Command: PatternDump, Payload: payload}
	return d.Bytes(), nil
}
