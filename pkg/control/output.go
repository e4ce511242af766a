// Package control drives a pattern engine from clock and edit events and
// resolves each step into pitch/gate/accent/slide outputs.
package control

import (
	"errors"
	"sync"
)

// BaseNote is added to resolved pitches before they reach an output
const BaseNote = 36

// Frame is the resolved output state for one clock edge
type Frame struct {
	Step   int  `json:"step"`   // cursor position that produced the frame
	Note   int  `json:"note"`   // absolute note number (pitch value + base note)
	Gate   bool `json:"gate"`   // gate output
	Accent bool `json:"accent"` // accent output
	Slide  bool `json:"slide"`  // slide output
	Tie    bool `json:"tie"`    // current step is tied to the previous one
}

// Output receives resolved frames
type Output interface {
	// Emit applies a frame to the output
	Emit(f Frame) error
	// Release silences the output
	Release() error
}

// Multi fans frames out to several outputs
type Multi []Output

// Emit sends f to every output and joins their errors
func (m Multi) Emit(f Frame) error {
	var errs []error
	for _, o := range m {
		if err := o.Emit(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Release releases every output and joins their errors
func (m Multi) Release() error {
	var errs []error
	for _, o := range m {
		if err := o.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every emitted frame in memory
type Recorder struct {
	mu       sync.Mutex
	frames   []Frame
	released int
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit records f
func (r *Recorder) Emit(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

// Release counts the release
func (r *Recorder) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released++
	return nil
}

// Frames returns a copy of the recorded frames
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Last returns the most recent frame
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Released returns how many times Release was called
func (r *Recorder) Released() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Clear drops recorded frames
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
	r.released = 0
}
