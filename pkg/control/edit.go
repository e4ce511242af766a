package control

import (
	"github.com/james-see/acidstep/pkg/engine"
)

// Edit runs fn with exclusive access to the engine
func (q *Sequencer) Edit(fn func(e *engine.Engine)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	fn(q.engine)
}

// View runs fn with exclusive access to the engine; fn must not mutate it
func (q *Sequencer) View(fn func(e *engine.Engine)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	fn(q.engine)
}

// Snapshot returns a copy of the pattern and the cursor position
func (q *Sequencer) Snapshot() (engine.Pattern, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.engine.Pattern(), q.engine.CurrentStep()
}

// EnterNote writes pitch to step i, turns its gate on and sounds the
// note on the output. While running the next clock edge takes over.
func (q *Sequencer) EnterNote(i int, pitch int8) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if pitch == engine.PitchRest || !q.engine.SetPitch(i, pitch) {
		return false, nil
	}
	q.engine.SetGate(i, engine.GateOn)

	f := Frame{
		Step:   i,
		Note:   q.engine.PitchTransposed(i) + q.baseNote,
		Gate:   true,
		Accent: q.engine.Accent(i),
	}
	q.last = f
	return true, q.emit(f)
}

// ReleaseNote ends an audition started by EnterNote. While running the
// gate belongs to the clock and is left alone.
func (q *Sequencer) ReleaseNote() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return nil
	}
	return q.gateOff()
}

// ClearNote turns step i into a rest
func (q *Sequencer) ClearNote(i int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.engine.SetGate(i, engine.GateRest)
}

// ToggleGate flips step i between on and rest
func (q *Sequencer) ToggleGate(i int) bool {
	return q.toggleGate(i, engine.GateOn)
}

// ToggleTie flips step i between tie and rest
func (q *Sequencer) ToggleTie(i int) bool {
	return q.toggleGate(i, engine.GateTie)
}

func (q *Sequencer) toggleGate(i int, g engine.Gate) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.engine.Gate(i) == g {
		g = engine.GateRest
	}
	return q.engine.SetGate(i, g)
}

// ToggleAccent flips the accent flag of step i
func (q *Sequencer) ToggleAccent(i int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.engine.SetAccent(i, !q.engine.Accent(i))
}

// ToggleSlide flips the slide flag of step i
func (q *Sequencer) ToggleSlide(i int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.engine.SetSlide(i, !q.engine.Slide(i))
}

// ToggleTranspose sets step i to t, or back to off when it already is t
func (q *Sequencer) ToggleTranspose(i int, t engine.Transpose) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.engine.Transpose(i) == t {
		t = engine.TransposeOff
	}
	return q.engine.SetTranspose(i, t)
}

// ToggleReset flips the reset flag of step i
func (q *Sequencer) ToggleReset(i int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.engine.SetReset(i, !q.engine.IsReset(i))
}

// Scrub moves the cursor to step i. Ignored while running.
func (q *Sequencer) Scrub(i int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return false
	}
	if !q.engine.SetCurrentStep(i) {
		return false
	}
	q.played = false
	return true
}

// JumpPage moves playback to page, keeping the position within the page.
// Unlike Scrub it works while running; the next clock edge advances from
// the new position.
func (q *Sequencer) JumpPage(page int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if page < 0 || page >= PageCount {
		return false
	}
	return q.engine.SetCurrentStep(q.engine.CurrentStep()%PageLength + page*PageLength)
}

// Load replaces the pattern, keeping the cursor
func (q *Sequencer) Load(p engine.Pattern) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.engine.Load(p)
}

// Clear reinitializes the engine
func (q *Sequencer) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.engine.Init()
	q.played = false
}
