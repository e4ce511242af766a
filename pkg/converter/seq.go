package converter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/james-see/acidstep/pkg/engine"
)

// .seq layout: magic, version, device ID, step count, then two bytes per step
const (
	SeqVersion    = 0x01
	SeqHeaderSize = 7
	SeqStepBytes  = 2
	SeqSize       = SeqHeaderSize + engine.MaxPatternLength*SeqStepBytes
)

// SeqMagic opens every .seq file
var SeqMagic = [4]byte{'A', 'C', 'S', 'Q'}

// SeqConverter handles .seq file parsing and generation
type SeqConverter struct {
	device Device
}

// NewSeqConverter creates a new .seq converter
func NewSeqConverter(device Device) *SeqConverter {
	return &SeqConverter{device: device}
}

// ParseSeq parses .seq data and returns a Pattern
func (s *SeqConverter) ParseSeq(data []byte) (*Pattern, error) {
	if s.device == nil {
		return nil, errors.New("no device configured")
	}
	if err := s.ValidateSeq(data); err != nil {
		return nil, err
	}
	return s.device.ParseSeq(data)
}

// GenerateSeq creates .seq data from a Pattern
func (s *SeqConverter) GenerateSeq(pattern *Pattern) ([]byte, error) {
	if s.device == nil {
		return nil, errors.New("no device configured")
	}
	return s.device.GenerateSeq(pattern)
}

// ValidateSeq validates .seq data structure
func (s *SeqConverter) ValidateSeq(data []byte) error {
	if len(data) < SeqHeaderSize {
		return fmt.Errorf("seq data too short: minimum %d bytes required", SeqHeaderSize)
	}
	if !bytes.HasPrefix(data, SeqMagic[:]) {
		return fmt.Errorf("invalid seq header: % X", data[:4])
	}
	if data[4] != SeqVersion {
		return fmt.Errorf("unsupported seq version %d", data[4])
	}

	count := int(data[6])
	if count == 0 || count > engine.MaxPatternLength {
		return fmt.Errorf("invalid step count %d (max %d)", count, engine.MaxPatternLength)
	}
	if need := SeqHeaderSize + count*SeqStepBytes; len(data) < need {
		return fmt.Errorf("seq data too short: got %d, need %d", len(data), need)
	}
	return nil
}
