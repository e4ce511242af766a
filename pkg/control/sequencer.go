package control

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/james-see/acidstep/pkg/engine"
)

// Pages split the pattern for page jumps and tracker display
const (
	PageLength = 8
	PageCount  = engine.MaxPatternLength / PageLength
)

// Settings tune how steps are resolved into outputs
type Settings struct {
	// Slide303 makes the slide output follow the previous step's slide
	// flag, so a slide on step N glides into step N+1.
	Slide303 bool `yaml:"slide_303" json:"slide_303"`
	// HoldAccentOnTiesAndRests keeps the accent output unchanged on tie and rest steps.
	HoldAccentOnTiesAndRests bool `yaml:"hold_accent_on_ties_and_rests" json:"hold_accent_on_ties_and_rests"`
	// GateHighBeforeSlide keeps the gate high at clock-off when the step slides.
	GateHighBeforeSlide bool `yaml:"gate_high_before_slide" json:"gate_high_before_slide"`
	// SlideHighOnTiesAndRests keeps the slide output unchanged on tie and rest steps.
	SlideHighOnTiesAndRests bool `yaml:"slide_high_on_ties_and_rests" json:"slide_high_on_ties_and_rests"`
}

// DefaultSettings returns the 303-style defaults
func DefaultSettings() Settings {
	return Settings{
		Slide303:                 true,
		HoldAccentOnTiesAndRests: true,
		GateHighBeforeSlide:      true,
		SlideHighOnTiesAndRests:  true,
	}
}

// Option configures a Sequencer
type Option func(*Sequencer)

// WithSettings sets the output resolution settings
func WithSettings(s Settings) Option {
	return func(q *Sequencer) { q.settings = s }
}

// WithLogger sets the logger used for output errors
func WithLogger(l *slog.Logger) Option {
	return func(q *Sequencer) { q.logger = l }
}

// WithBaseNote overrides the note added to resolved pitches
func WithBaseNote(n int) Option {
	return func(q *Sequencer) { q.baseNote = n }
}

// Sequencer serializes clock and edit events into one engine and pushes
// the resolved frames to an output.
type Sequencer struct {
	mu       sync.Mutex
	engine   *engine.Engine
	out      Output
	settings Settings
	logger   *slog.Logger
	baseNote int

	running  bool
	last     Frame
	prevStep int  // last step played by ClockOn
	played   bool // prevStep is valid
}

// New creates a sequencer around e. A nil output discards frames.
func New(e *engine.Engine, out Output, opts ...Option) *Sequencer {
	if e == nil {
		e = engine.New()
	}
	if out == nil {
		out = Multi{}
	}
	q := &Sequencer{
		engine:   e,
		out:      out,
		settings: DefaultSettings(),
		logger:   slog.Default(),
		baseNote: BaseNote,
		running:  true,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Settings returns the active settings
func (q *Sequencer) Settings() Settings {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.settings
}

// SetSettings replaces the active settings
func (q *Sequencer) SetSettings(s Settings) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.settings = s
}

// Running reports whether clock edges advance playback
func (q *Sequencer) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Start enables playback
func (q *Sequencer) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = true
}

// Stop disables playback and drops the gate
func (q *Sequencer) Stop() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = false
	return q.gateOff()
}

// Toggle flips between running and stopped
func (q *Sequencer) Toggle() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = !q.running
	if !q.running {
		return q.gateOff()
	}
	return nil
}

// ClockOn handles a rising clock edge: advance, resolve and emit.
// It returns false when the sequencer is stopped.
func (q *Sequencer) ClockOn() (Frame, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return q.last, false, nil
	}

	q.engine.Advance()
	f := q.resolve(q.played)
	q.last = f
	q.prevStep = f.Step
	q.played = true
	return f, true, q.emit(f)
}

// ClockOff handles a falling clock edge. The gate drops unless the
// current or next step is tied, or the step slides and
// GateHighBeforeSlide is set.
func (q *Sequencer) ClockOff() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return nil
	}
	if q.engine.CurrentGate() == engine.GateTie {
		return nil
	}
	if q.engine.CurrentGate() == engine.GateOn && q.engine.Gate(q.engine.NextStep()) == engine.GateTie {
		return nil
	}
	if q.settings.GateHighBeforeSlide && q.engine.CurrentSlide() && q.engine.CurrentGate() != engine.GateRest {
		return nil
	}
	return q.gateOff()
}

// Rewind moves playback back to step 0 without touching the pattern.
// The next rising edge advances to step 1, as after New.
func (q *Sequencer) Rewind() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.engine.Reset()
	q.played = false
}

// Resolve returns the frame for the current step without emitting it
func (q *Sequencer) Resolve() Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resolve(q.played)
}

// Last returns the most recently emitted clock frame
func (q *Sequencer) Last() Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.last
}

// resolve builds the frame for the cursor. incoming is set when prevStep
// was played before this one, which is where a 303 slide comes from.
func (q *Sequencer) resolve(incoming bool) Frame {
	e := q.engine
	gate := e.CurrentGate()
	held := gate == engine.GateTie || gate == engine.GateRest

	f := Frame{
		Step:   e.CurrentStep(),
		Note:   e.CurrentPitchValue() + q.baseNote,
		Gate:   gate != engine.GateRest,
		Accent: e.CurrentAccent(),
		Slide:  e.CurrentSlide(),
		Tie:    gate == engine.GateTie,
	}

	if q.settings.Slide303 {
		f.Slide = incoming && e.Slide(q.prevStep) && e.Gate(q.prevStep) != engine.GateRest
	}
	if held && q.settings.HoldAccentOnTiesAndRests {
		f.Accent = q.last.Accent
	}
	if held && q.settings.SlideHighOnTiesAndRests {
		f.Slide = q.last.Slide
	}
	return f
}

func (q *Sequencer) gateOff() error {
	if !q.last.Gate {
		return nil
	}
	f := q.last
	f.Gate = false
	q.last = f
	return q.emit(f)
}

func (q *Sequencer) emit(f Frame) error {
	if err := q.out.Emit(f); err != nil {
		q.logger.Error("control: output emit failed", "step", f.Step, "note", f.Note, "err", err)
		return fmt.Errorf("emit step %d: %w", f.Step, err)
	}
	q.logger.Debug("control: frame", "step", f.Step, "note", f.Note, "gate", f.Gate, "accent", f.Accent, "slide", f.Slide)
	return nil
}

// Close stops playback and releases the output
func (q *Sequencer) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = false
	return q.out.Release()
}
