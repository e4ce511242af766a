package engine

// Engine owns one pattern and its playback state.
//
// Engine is not safe for concurrent use; callers serialize access the way
// control.Sequencer does.
type Engine struct {
	steps      Pattern
	current    int
	determined [MaxPatternLength]uint8
}

// New creates an initialized engine
func New() *Engine {
	e := &Engine{}
	e.Init()
	return e
}

// Init clears every step and rewinds the cursor
func (e *Engine) Init() {
	e.steps = NewPattern()
	e.current = 0
	e.determined = [MaxPatternLength]uint8{}
}

// Reset rewinds the cursor without touching step data
func (e *Engine) Reset() {
	e.current = 0
}

// Advance moves the cursor one step, wrapping at a reset flag or the
// end of the pattern.
func (e *Engine) Advance() {
	e.current = e.NextStep()
}

// NextStep returns the index Advance would move the cursor to
func (e *Engine) NextStep() int {
	if e.steps[e.current].Reset || e.current+1 >= MaxPatternLength {
		return 0
	}
	return e.current + 1
}

// CurrentStep returns the cursor position
func (e *Engine) CurrentStep() int {
	return e.current
}

// SetCurrentStep moves the cursor. Out-of-range indices are ignored.
func (e *Engine) SetCurrentStep(i int) bool {
	if !InRange(i) {
		return false
	}
	e.current = i
	return true
}

// StepAt returns a copy of step i, or a default step when i is out of range
func (e *Engine) StepAt(i int) Step {
	if !InRange(i) {
		return DefaultStep()
	}
	return e.steps[i]
}

// CurrentStepValue returns a copy of the step under the cursor
func (e *Engine) CurrentStepValue() Step {
	return e.steps[e.current]
}

// Pattern returns a snapshot of all steps
func (e *Engine) Pattern() Pattern {
	return e.steps
}

// Load replaces all step data with p and keeps the cursor.
// A pattern with any invalid step is rejected as a whole.
func (e *Engine) Load(p Pattern) bool {
	if !p.Valid() {
		return false
	}
	e.steps = p
	e.determinePitches()
	return true
}

// LoopLength returns the number of steps played before wraparound
// when playback starts at step 0.
func (e *Engine) LoopLength() int {
	return e.steps.LoopLength()
}

// Clone returns an independent copy of the engine
func (e *Engine) Clone() *Engine {
	c := *e
	return &c
}
