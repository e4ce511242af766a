package engine

// PitchTransposed returns the pitch of step i shifted by its transpose.
// A rest is returned unshifted.
func (e *Engine) PitchTransposed(i int) int {
	s := e.StepAt(i)
	return transposed(s.Pitch, s.Transpose)
}

// CurrentPitchTransposed returns the transposed pitch of the current step
func (e *Engine) CurrentPitchTransposed() int {
	s := e.steps[e.current]
	return transposed(s.Pitch, s.Transpose)
}

func transposed(p int8, t Transpose) int {
	if p == PitchRest {
		return int(PitchRest)
	}
	return int(p) + t.Offset()
}

// DeterminedPitch returns the playable pitch of step i: its own pitch,
// or the one carried forward from the previous explicit pitch.
func (e *Engine) DeterminedPitch(i int) uint8 {
	if !InRange(i) {
		return 0
	}
	return e.determined[i]
}

// CurrentDeterminedPitch returns the determined pitch of the current step
func (e *Engine) CurrentDeterminedPitch() uint8 {
	return e.determined[e.current]
}

// CurrentPitchValue returns the determined pitch of the current step
// shifted by its transpose.
func (e *Engine) CurrentPitchValue() int {
	return int(e.determined[e.current]) + e.steps[e.current].Transpose.Offset()
}

// determinePitches rebuilds the carry-forward cache. Steps before the
// first explicit pitch take the value carried out of the pattern end.
func (e *Engine) determinePitches() {
	var last uint8
	for i := range e.steps {
		if p := e.steps[i].Pitch; p != PitchRest {
			last = uint8(p)
		}
		e.determined[i] = last
	}

	for i := range e.steps {
		if e.steps[i].Pitch != PitchRest {
			break
		}
		e.determined[i] = last
	}
}
