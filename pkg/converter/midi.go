package converter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/acidstep/pkg/engine"
)

// Defaults for MIDI rendering
const (
	DefaultTempo    = 120.0
	DefaultBaseNote = 36
	VelocityNormal  = 100
	VelocityAccent  = 127
)

// MIDIConverter handles MIDI file parsing and generation
type MIDIConverter struct {
	ticksPerQuarter uint16
	tempo           float64
	baseNote        int
	channel         uint8
}

// NewMIDIConverter creates a new MIDI converter
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: 480,
		tempo:           DefaultTempo,
		baseNote:        DefaultBaseNote,
	}
}

// SetBaseNote sets the MIDI note that pitch 0 maps to
func (m *MIDIConverter) SetBaseNote(n int) {
	m.baseNote = n
}

// SetChannel sets the channel notes are written on
func (m *MIDIConverter) SetChannel(ch uint8) {
	m.channel = ch & 0x0F
}

// ticksPerStep is one 16th note
func (m *MIDIConverter) ticksPerStep() uint32 {
	return uint32(m.ticksPerQuarter) / 4
}

// noteSpan is a sounding note in absolute ticks
type noteSpan struct {
	start    uint32
	end      uint32
	note     uint8
	velocity uint8
}

// ParseMIDI quantizes MIDI notes onto pattern steps
func (m *MIDIConverter) ParseMIDI(data []byte) (*Pattern, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		m.ticksPerQuarter = mt.Resolution()
	}
	tps := m.ticksPerStep()
	if tps == 0 {
		return nil, errors.New("invalid MIDI resolution")
	}

	pattern := NewPattern("MIDI Pattern")
	pattern.Tempo = m.tempo

	var spans []noteSpan
	var trackEnd uint32

	for _, track := range s.Tracks {
		open := make(map[uint8]int) // note -> index into spans
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			msg := ev.Message

			// Tempo meta message (FF 51 03 tt tt tt)
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if microsecondsPerBeat > 0 {
					m.tempo = 60000000.0 / float64(microsecondsPerBeat)
					pattern.Tempo = m.tempo
				}
				continue
			}

			if len(msg) < 3 {
				continue
			}
			status, note, velocity := msg[0], msg[1], msg[2]
			switch {
			case status >= 0x90 && status <= 0x9F && velocity > 0:
				if i, ok := open[note]; ok {
					spans[i].end = tick
				}
				open[note] = len(spans)
				spans = append(spans, noteSpan{start: tick, end: tick, note: note, velocity: velocity})
			case status >= 0x80 && status <= 0x8F, status >= 0x90 && status <= 0x9F:
				if i, ok := open[note]; ok {
					spans[i].end = tick
					delete(open, note)
				}
			}
		}
		for _, i := range open {
			spans[i].end = tick
		}
		if tick > trackEnd {
			trackEnd = tick
		}
	}

	if len(spans) == 0 {
		return nil, errors.New("no notes found in MIDI data")
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	loop := int((trackEnd + tps - 1) / tps)
	if loop < 1 {
		loop = 1
	}
	if loop > engine.MaxPatternLength {
		loop = engine.MaxPatternLength
	}

	steps := &pattern.Steps
	for k, sp := range spans {
		i := int((sp.start + tps/2) / tps)
		if i >= loop || steps[i].Gate == engine.GateOn {
			continue
		}

		pitch, transpose := m.splitNote(int(sp.note))
		steps[i].Pitch = pitch
		steps[i].Gate = engine.GateOn
		steps[i].Accent = sp.velocity > VelocityNormal
		steps[i].Transpose = transpose

		// Notes held across step boundaries become ties
		length := int((sp.end - sp.start + tps/2) / tps)
		last := i
		for j := i + 1; j < i+length && j < loop; j++ {
			if steps[j].Gate != engine.GateRest {
				break
			}
			steps[j].Gate = engine.GateTie
			last = j
		}

		// A note still sounding when the next one starts slides into it
		if k+1 < len(spans) && spans[k+1].start < sp.end && spans[k+1].start > sp.start {
			steps[last].Slide = true
		}
	}

	if loop < engine.MaxPatternLength {
		steps[loop-1].Reset = true
	}

	return pattern, nil
}

// splitNote maps an absolute note to a pitch class and octave shift
func (m *MIDIConverter) splitNote(note int) (int8, engine.Transpose) {
	rel := note - m.baseNote
	octave := rel / engine.OctaveSemitones
	pc := rel % engine.OctaveSemitones
	if pc < 0 {
		pc += engine.OctaveSemitones
		octave--
	}

	switch {
	case octave > 0:
		return int8(pc), engine.TransposeUp
	case octave < 0:
		return int8(pc), engine.TransposeDown
	default:
		return int8(pc), engine.TransposeOff
	}
}

// renderSpans lays out one loop of the pattern as note spans
func (m *MIDIConverter) renderSpans(pattern *Pattern) ([]noteSpan, error) {
	e, ok := pattern.Engine()
	if !ok {
		return nil, errors.New("pattern contains out-of-range steps")
	}
	steps := pattern.Steps
	loop := steps.LoopLength()
	tps := m.ticksPerStep()

	gateLength := (tps * 3) / 4
	if gateLength == 0 {
		gateLength = tps - 1
	}

	noteAt := func(i int) uint8 {
		e.SetCurrentStep(i)
		return uint8(clampNote(e.CurrentPitchValue() + m.baseNote))
	}

	var spans []noteSpan
	active := -1
	for i := 0; i < loop; i++ {
		st := steps[i]
		switch {
		case st.Gate == engine.GateRest:
			active = -1
			continue
		case st.Gate == engine.GateTie && active >= 0:
			// extend below
		case active >= 0 && steps[i-1].Slide && spans[active].note == noteAt(i):
			// slide into the same note continues it
		default:
			velocity := uint8(VelocityNormal)
			if st.Accent {
				velocity = VelocityAccent
			}
			spans = append(spans, noteSpan{start: uint32(i) * tps, note: noteAt(i), velocity: velocity})
			active = len(spans) - 1
		}

		next := engine.GateRest
		if i+1 < loop {
			next = steps[i+1].Gate
		}
		stepStart := uint32(i) * tps
		switch {
		case st.Slide && next == engine.GateOn:
			spans[active].end = stepStart + tps + tps/4
		case st.Gate == engine.GateTie || next == engine.GateTie:
			spans[active].end = stepStart + tps
		default:
			spans[active].end = stepStart + gateLength
		}
	}
	return spans, nil
}

// GenerateMIDI renders one loop of the pattern as a single-track MIDI file
func (m *MIDIConverter) GenerateMIDI(pattern *Pattern) ([]byte, error) {
	if pattern == nil {
		return nil, errors.New("nil pattern")
	}
	spans, err := m.renderSpans(pattern)
	if err != nil {
		return nil, err
	}

	tempo := pattern.Tempo
	if tempo <= 0 {
		tempo = DefaultTempo
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track
	if pattern.Name != "" {
		track.Add(0, smf.MetaTrackSequenceName(pattern.Name))
	}
	track.Add(0, smf.MetaTempo(tempo))
	track.Add(0, smf.MetaMeter(4, 4))

	type event struct {
		tick uint32
		on   bool
		msg  midi.Message
	}
	var events []event
	for _, sp := range spans {
		events = append(events,
			event{tick: sp.start, on: true, msg: midi.NoteOn(m.channel, sp.note, sp.velocity)},
			event{tick: sp.end, on: false, msg: midi.NoteOff(m.channel, sp.note)},
		)
	}
	// note-offs sort before note-ons on the same tick
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var currentTick uint32
	for _, ev := range events {
		track.Add(ev.tick-currentTick, ev.msg)
		currentTick = ev.tick
	}

	// End the track exactly at the loop boundary
	loopTicks := uint32(pattern.Steps.LoopLength()) * m.ticksPerStep()
	var remaining uint32
	if currentTick < loopTicks {
		remaining = loopTicks - currentTick
	}
	track.Close(remaining)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

func clampNote(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 127:
		return 127
	default:
		return n
	}
}
