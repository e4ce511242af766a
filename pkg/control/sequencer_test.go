package control

import (
	"errors"
	"testing"

	"github.com/james-see/acidstep/pkg/engine"
)

func newTestSequencer(t *testing.T, s Settings) (*Sequencer, *engine.Engine, *Recorder) {
	t.Helper()
	e := engine.New()
	rec := NewRecorder()
	return New(e, rec, WithSettings(s)), e, rec
}

func TestClockAdvancesEachTick(t *testing.T) {
	q, e, rec := newTestSequencer(t, Settings{})
	e.SetPitch(1, 5)
	e.SetGate(1, engine.GateOn)
	e.SetGate(2, engine.GateTie)
	e.SetPitch(4, 0)
	e.SetGate(4, engine.GateOn)
	e.SetAccent(4, true)

	tests := []struct {
		step   int
		note   int
		gate   bool
		tie    bool
		accent bool
	}{
		{1, 41, true, false, false},
		{2, 41, true, true, false},
		{3, 41, false, false, false},
		{4, 36, true, false, true},
	}

	for _, tt := range tests {
		f, ok, err := q.ClockOn()
		if err != nil || !ok {
			t.Fatalf("ClockOn() = %v, %v", ok, err)
		}
		if f.Step != tt.step || f.Note != tt.note || f.Gate != tt.gate || f.Tie != tt.tie || f.Accent != tt.accent {
			t.Errorf("frame = %+v, want step %d note %d gate %v tie %v accent %v",
				f, tt.step, tt.note, tt.gate, tt.tie, tt.accent)
		}
		if err := q.ClockOff(); err != nil {
			t.Fatalf("ClockOff() error = %v", err)
		}
	}

	// on (held into the tie), tie (held), rest, on, off
	if got := len(rec.Frames()); got != 5 {
		t.Errorf("recorded %d frames, want 5", got)
	}
}

func TestClockOffDropsGate(t *testing.T) {
	q, e, rec := newTestSequencer(t, Settings{})
	e.SetPitch(1, 2)
	e.SetGate(1, engine.GateOn)

	q.ClockOn()
	if err := q.ClockOff(); err != nil {
		t.Fatal(err)
	}
	last, _ := rec.Last()
	if last.Gate {
		t.Error("gate should be low after ClockOff on an untied step")
	}
	if last.Note != 38 {
		t.Errorf("gate-off frame note = %d, want 38", last.Note)
	}
}

func TestSlide303(t *testing.T) {
	q, e, _ := newTestSequencer(t, DefaultSettings())
	e.SetPitch(1, 5)
	e.SetGate(1, engine.GateOn)
	e.SetSlide(1, true)
	e.SetPitch(2, 7)
	e.SetGate(2, engine.GateOn)
	e.SetGate(3, engine.GateOn)

	f, _, _ := q.ClockOn()
	if f.Slide {
		t.Error("first step has no incoming slide")
	}
	f, _, _ = q.ClockOn()
	if !f.Slide {
		t.Error("step 2 should slide in from step 1")
	}
	f, _, _ = q.ClockOn()
	if f.Slide {
		t.Error("step 3 follows a step without slide")
	}
}

func TestSlideFollowsCurrentStepWithout303(t *testing.T) {
	q, e, _ := newTestSequencer(t, Settings{})
	e.SetGate(1, engine.GateOn)
	e.SetSlide(1, true)

	f, _, _ := q.ClockOn()
	if !f.Slide {
		t.Error("slide output should follow the current step")
	}
}

func TestGateHighBeforeSlide(t *testing.T) {
	q, e, rec := newTestSequencer(t, Settings{GateHighBeforeSlide: true})
	e.SetGate(1, engine.GateOn)
	e.SetSlide(1, true)

	q.ClockOn()
	q.ClockOff()
	if got := len(rec.Frames()); got != 1 {
		t.Errorf("recorded %d frames, want 1 (gate held)", got)
	}

	q.SetSettings(Settings{})
	q.ClockOff()
	last, _ := rec.Last()
	if last.Gate {
		t.Error("gate should drop once the setting is off")
	}
}

func TestHoldAccentOnTies(t *testing.T) {
	tests := []struct {
		name string
		hold bool
		want bool
	}{
		{"hold", true, true},
		{"no hold", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, e, _ := newTestSequencer(t, Settings{HoldAccentOnTiesAndRests: tt.hold})
			e.SetGate(1, engine.GateOn)
			e.SetAccent(1, true)
			e.SetGate(2, engine.GateTie)

			q.ClockOn()
			f, _, _ := q.ClockOn()
			if f.Accent != tt.want {
				t.Errorf("tie step accent = %v, want %v", f.Accent, tt.want)
			}
		})
	}
}

func TestSlideHighOnRests(t *testing.T) {
	q, e, _ := newTestSequencer(t, Settings{SlideHighOnTiesAndRests: true})
	e.SetGate(1, engine.GateOn)
	e.SetSlide(1, true)

	q.ClockOn()
	f, _, _ := q.ClockOn()
	if !f.Slide {
		t.Error("rest step should keep the slide output high")
	}
}

func TestStopAndStart(t *testing.T) {
	q, e, rec := newTestSequencer(t, Settings{})
	e.SetGate(1, engine.GateOn)

	q.ClockOn()
	if err := q.Stop(); err != nil {
		t.Fatal(err)
	}
	if q.Running() {
		t.Error("Running() = true after Stop")
	}
	last, _ := rec.Last()
	if last.Gate {
		t.Error("Stop should drop the gate")
	}

	n := len(rec.Frames())
	if _, ok, _ := q.ClockOn(); ok {
		t.Error("ClockOn should be ignored while stopped")
	}
	if len(rec.Frames()) != n || e.CurrentStep() != 1 {
		t.Error("stopped sequencer advanced or emitted")
	}

	q.Start()
	f, ok, _ := q.ClockOn()
	if !ok || f.Step != 2 {
		t.Errorf("after Start: step %d ok %v, want step 2", f.Step, ok)
	}

	q.Toggle()
	if q.Running() {
		t.Error("Toggle should stop a running sequencer")
	}
	q.Toggle()
	if !q.Running() {
		t.Error("Toggle should start a stopped sequencer")
	}
}

func TestRewind(t *testing.T) {
	q, e, _ := newTestSequencer(t, Settings{})
	e.SetPitch(4, 3)

	for i := 0; i < 5; i++ {
		q.ClockOn()
	}
	if e.CurrentStep() != 5 {
		t.Fatalf("CurrentStep() = %d, want 5", e.CurrentStep())
	}

	q.Rewind()
	if e.CurrentStep() != 0 {
		t.Fatalf("CurrentStep() after Rewind = %d, want 0", e.CurrentStep())
	}
	f, _, _ := q.ClockOn()
	if f.Step != 1 {
		t.Errorf("after Rewind first step = %d, want 1", f.Step)
	}
	if e.Pitch(4) != 3 {
		t.Error("Rewind changed step data")
	}
}

func TestResetFlagLoop(t *testing.T) {
	q, e, _ := newTestSequencer(t, Settings{})
	e.SetReset(2, true)

	var steps []int
	for i := 0; i < 7; i++ {
		f, _, _ := q.ClockOn()
		steps = append(steps, f.Step)
	}
	want := []int{1, 2, 0, 1, 2, 0, 1}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}
}

type failingOutput struct{}

func (failingOutput) Emit(Frame) error { return errors.New("port closed") }
func (failingOutput) Release() error   { return nil }

func TestOutputErrors(t *testing.T) {
	rec := NewRecorder()
	q := New(engine.New(), Multi{rec, failingOutput{}}, WithSettings(Settings{}))

	_, ok, err := q.ClockOn()
	if !ok {
		t.Fatal("ClockOn should still advance")
	}
	if err == nil {
		t.Error("expected an error from the failing output")
	}
	if len(rec.Frames()) != 1 {
		t.Error("healthy outputs should still receive the frame")
	}

	if err := q.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if rec.Released() != 1 {
		t.Errorf("Released() = %d, want 1", rec.Released())
	}
}

func TestWithBaseNote(t *testing.T) {
	e := engine.New()
	e.SetPitch(0, 4)
	q := New(e, nil, WithBaseNote(48))
	if f := q.Resolve(); f.Note != 52 {
		t.Errorf("Resolve().Note = %d, want 52", f.Note)
	}
}

func TestJumpPage(t *testing.T) {
	q, e, _ := newTestSequencer(t, Settings{})
	q.Stop()
	q.Scrub(10)
	q.Start()

	if !q.JumpPage(3) {
		t.Fatal("JumpPage(3) rejected while running")
	}
	if e.CurrentStep() != 26 {
		t.Errorf("CurrentStep() = %d, want 26", e.CurrentStep())
	}
	f, _, _ := q.ClockOn()
	if f.Step != 27 {
		t.Errorf("next tick played step %d, want 27", f.Step)
	}

	for _, page := range []int{-1, PageCount} {
		if q.JumpPage(page) {
			t.Errorf("JumpPage(%d) accepted", page)
		}
	}
	if e.CurrentStep() != 27 {
		t.Error("rejected JumpPage moved the cursor")
	}
}

func TestJumpPageKeepsSlide(t *testing.T) {
	q, e, _ := newTestSequencer(t, DefaultSettings())
	e.SetGate(1, engine.GateOn)
	e.SetSlide(1, true)
	e.SetGate(18, engine.GateOn)

	q.ClockOn()
	q.JumpPage(2)
	f, _, _ := q.ClockOn()
	if f.Step != 18 || !f.Slide {
		t.Errorf("frame = %+v, want step 18 sliding in from step 1", f)
	}
}
