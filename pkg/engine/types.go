// Package engine holds the pattern engine: a fixed-length step pattern,
// its playback cursor and the derived pitch data used during playback.
package engine

import "fmt"

// Pattern dimensions and value ranges
const (
	MaxPatternLength = 32
	MaxPitchValue    = 11
	OctaveSemitones  = 12
)

// PitchRest marks a step without an explicit pitch
const PitchRest int8 = -1

// Gate is the trigger state of a step
type Gate uint8

const (
	GateRest Gate = iota
	GateOn
	GateTie
)

// Valid reports whether g is a known gate value
func (g Gate) Valid() bool {
	return g <= GateTie
}

func (g Gate) String() string {
	switch g {
	case GateRest:
		return "rest"
	case GateOn:
		return "on"
	case GateTie:
		return "tie"
	default:
		return fmt.Sprintf("gate(%d)", uint8(g))
	}
}

// ParseGate parses the String form of a gate
func ParseGate(s string) (Gate, error) {
	switch s {
	case "rest", "":
		return GateRest, nil
	case "on":
		return GateOn, nil
	case "tie":
		return GateTie, nil
	}
	return GateRest, fmt.Errorf("unknown gate %q", s)
}

// Transpose is a per-step octave shift applied at read time
type Transpose uint8

const (
	TransposeOff Transpose = iota
	TransposeUp
	TransposeDown
)

// Valid reports whether t is a known transpose value
func (t Transpose) Valid() bool {
	return t <= TransposeDown
}

// Offset returns the shift in semitones
func (t Transpose) Offset() int {
	switch t {
	case TransposeUp:
		return OctaveSemitones
	case TransposeDown:
		return -OctaveSemitones
	default:
		return 0
	}
}

func (t Transpose) String() string {
	switch t {
	case TransposeOff:
		return "off"
	case TransposeUp:
		return "up"
	case TransposeDown:
		return "down"
	default:
		return fmt.Sprintf("transpose(%d)", uint8(t))
	}
}

// ParseTranspose parses the String form of a transpose value
func ParseTranspose(s string) (Transpose, error) {
	switch s {
	case "off", "":
		return TransposeOff, nil
	case "up":
		return TransposeUp, nil
	case "down":
		return TransposeDown, nil
	}
	return TransposeOff, fmt.Errorf("unknown transpose %q", s)
}

// Step is one position in the pattern
type Step struct {
	Pitch     int8      // 0..MaxPitchValue or PitchRest
	Gate      Gate      // rest, on or tie
	Accent    bool      // Accent flag
	Slide     bool      // Slide/glide flag
	Transpose Transpose // Octave shift
	Reset     bool      // Last step of the loop
}

// DefaultStep returns a cleared step
func DefaultStep() Step {
	return Step{Pitch: PitchRest}
}

// Valid reports whether every field of s is within range
func (s Step) Valid() bool {
	return ValidPitch(s.Pitch) && s.Gate.Valid() && s.Transpose.Valid()
}

// ValidPitch reports whether p can be stored in a step
func ValidPitch(p int8) bool {
	return p == PitchRest || (p >= 0 && p <= MaxPitchValue)
}

// Pattern is a value snapshot of all steps
type Pattern [MaxPatternLength]Step

// NewPattern returns a pattern with every step cleared
func NewPattern() Pattern {
	var p Pattern
	for i := range p {
		p[i] = DefaultStep()
	}
	return p
}

// Valid reports whether every step of p is within range
func (p *Pattern) Valid() bool {
	for i := range p {
		if !p[i].Valid() {
			return false
		}
	}
	return true
}

// LoopLength returns the number of steps up to and including the first
// reset flag, or MaxPatternLength when no step has one.
func (p *Pattern) LoopLength() int {
	for i := range p {
		if p[i].Reset {
			return i + 1
		}
	}
	return MaxPatternLength
}

// InRange reports whether i addresses a step
func InRange(i int) bool {
	return i >= 0 && i < MaxPatternLength
}
