package engine

// Pitch returns the stored pitch of step i
func (e *Engine) Pitch(i int) int8 {
	return e.StepAt(i).Pitch
}

// CurrentPitch returns the stored pitch of the current step
func (e *Engine) CurrentPitch() int8 {
	return e.steps[e.current].Pitch
}

// SetPitch stores pitch p at step i and recomputes determined pitches.
// p must be PitchRest or within 0..MaxPitchValue.
func (e *Engine) SetPitch(i int, p int8) bool {
	if !InRange(i) || !ValidPitch(p) {
		return false
	}
	e.steps[i].Pitch = p
	e.determinePitches()
	return true
}

// Gate returns the gate of step i
func (e *Engine) Gate(i int) Gate {
	return e.StepAt(i).Gate
}

// CurrentGate returns the gate of the current step
func (e *Engine) CurrentGate() Gate {
	return e.steps[e.current].Gate
}

// SetGate sets the gate of step i
func (e *Engine) SetGate(i int, g Gate) bool {
	if !InRange(i) || !g.Valid() {
		return false
	}
	e.steps[i].Gate = g
	return true
}

// Accent returns the accent flag of step i
func (e *Engine) Accent(i int) bool {
	return e.StepAt(i).Accent
}

// CurrentAccent returns the accent flag of the current step
func (e *Engine) CurrentAccent() bool {
	return e.steps[e.current].Accent
}

// SetAccent sets the accent flag of step i
func (e *Engine) SetAccent(i int, on bool) bool {
	if !InRange(i) {
		return false
	}
	e.steps[i].Accent = on
	return true
}

// Slide returns the slide flag of step i
func (e *Engine) Slide(i int) bool {
	return e.StepAt(i).Slide
}

// CurrentSlide returns the slide flag of the current step
func (e *Engine) CurrentSlide() bool {
	return e.steps[e.current].Slide
}

// SetSlide sets the slide flag of step i
func (e *Engine) SetSlide(i int, on bool) bool {
	if !InRange(i) {
		return false
	}
	e.steps[i].Slide = on
	return true
}

// Transpose returns the octave shift of step i
func (e *Engine) Transpose(i int) Transpose {
	return e.StepAt(i).Transpose
}

// CurrentTranspose returns the octave shift of the current step
func (e *Engine) CurrentTranspose() Transpose {
	return e.steps[e.current].Transpose
}

// SetTranspose sets the octave shift of step i
func (e *Engine) SetTranspose(i int, t Transpose) bool {
	if !InRange(i) || !t.Valid() {
		return false
	}
	e.steps[i].Transpose = t
	return true
}

// IsReset reports whether step i ends the loop
func (e *Engine) IsReset(i int) bool {
	return e.StepAt(i).Reset
}

// CurrentIsReset reports whether the current step ends the loop
func (e *Engine) CurrentIsReset() bool {
	return e.steps[e.current].Reset
}

// SetReset marks or clears step i as the end of the loop
func (e *Engine) SetReset(i int, on bool) bool {
	if !InRange(i) {
		return false
	}
	e.steps[i].Reset = on
	return true
}
