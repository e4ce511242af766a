package converter

import (
	"errors"
	"fmt"
)

// SysEx constants
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

// BehringerID is the extended manufacturer ID used in Behringer SysEx
var BehringerID = [3]byte{0x00, 0x20, 0x32}

// dumpHeaderSize covers F0, the manufacturer ID, device, model and command
const dumpHeaderSize = 7

// Dump is one Behringer SysEx message:
// F0 00 20 32 <device> <model> <command> <payload...> <checksum> F7
type Dump struct {
	Device  byte
	Model   byte
	Command byte
	Payload []byte
}

// ParseDump checks the framing, manufacturer, 7-bit body and checksum of a
// Behringer SysEx message
func ParseDump(data []byte) (Dump, error) {
	if len(data) < dumpHeaderSize+2 {
		return Dump{}, fmt.Errorf("syx data too short: %d bytes", len(data))
	}
	if data[0] != SysExStart || data[len(data)-1] != SysExEnd {
		return Dump{}, errors.New("invalid SysEx framing")
	}
	if !IsBehringerSyx(data) {
		return Dump{}, fmt.Errorf("unrecognized manufacturer % X", data[1:4])
	}
	body := data[1 : len(data)-1]
	for i, b := range body {
		if b > 0x7F {
			return Dump{}, fmt.Errorf("invalid SysEx: byte %d is 0x%02X", i+1, b)
		}
	}

	payload := data[dumpHeaderSize : len(data)-2]
	if cks := Checksum(payload); cks != data[len(data)-2] {
		return Dump{}, fmt.Errorf("syx checksum mismatch: got 0x%02X, want 0x%02X", data[len(data)-2], cks)
	}
	return Dump{Device: data[4], Model: data[5], Command: data[6], Payload: payload}, nil
}

// Bytes frames d with the Behringer header and payload checksum
func (d Dump) Bytes() []byte {
	out := make([]byte, 0, dumpHeaderSize+len(d.Payload)+2)
	out = append(out, SysExStart)
	out = append(out, BehringerID[:]...)
	out = append(out, d.Device, d.Model, d.Command)
	out = append(out, d.Payload...)
	return append(out, Checksum(d.Payload), SysExEnd)
}

// IsBehringerSyx checks if the SysEx data carries the Behringer manufacturer ID
func IsBehringerSyx(data []byte) bool {
	return len(data) >= 4 && data[0] == SysExStart && [3]byte(data[1:4]) == BehringerID
}

// Checksum XORs payload bytes into a 7-bit value
func Checksum(payload []byte) byte {
	var cks byte
	for _, b := range payload {
		cks ^= b
	}
	return cks & 0x7F
}

// SyxConverter handles .syx parsing and generation
type SyxConverter struct {
	device Device
}

// NewSyxConverter creates a new .syx converter
func NewSyxConverter(device Device) *SyxConverter {
	return &SyxConverter{device: device}
}

// ParseSyx hands a SysEx message to the device
func (s *SyxConverter) ParseSyx(data []byte) (*Pattern, error) {
	if s.device == nil {
		return nil, errors.New("no device configured")
	}
	if len(data) < 2 || data[0] != SysExStart {
		return nil, errors.New("not a SysEx message")
	}
	return s.device.ParseSyx(data)
}

// GenerateSyx creates .syx data from a Pattern
func (s *SyxConverter) GenerateSyx(pattern *Pattern) ([]byte, error) {
	if s.device == nil {
		return nil, errors.New("no device configured")
	}
	return s.device.GenerateSyx(pattern)
}
