// Package tui provides the acidstep terminal step editor
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/acidstep/pkg/control"
	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/engine"
)

// TrackerLines is the number of steps shown per page
const TrackerLines = control.PageLength

// auditionLength is how long an entered note sounds while stopped
const auditionLength = 150 * time.Millisecond

var errInvalidPattern = errors.New("pattern contains out-of-range steps")

// State represents the current TUI state
type State int

const (
	StateTracker State = iota
	StateFilePicker
)

// Model represents the TUI model
type Model struct {
	seq    *control.Sequencer
	conv   *converter.Converter
	logger *slog.Logger

	state  State
	cursor int
	page   int
	follow bool

	playing bool
	gen     int
	tempo   float64
	name    string
	path    string

	keys       keyMap
	help       help.Model
	filePicker filepicker.Model
	spinner    spinner.Model

	status string
	err    error
	width  int
	height int
}

// Option configures a Model
type Option func(*Model)

// WithTempo sets the playback tempo in BPM
func WithTempo(bpm float64) Option {
	return func(m *Model) {
		if bpm > 0 {
			m.tempo = bpm
		}
	}
}

// WithPattern sets the pattern name and the file ctrl+s writes to
func WithPattern(name, path string) Option {
	return func(m *Model) {
		if name != "" {
			m.name = name
		}
		if path != "" {
			m.path = path
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// clockMsg is one clock edge. gen ties it to the play session that scheduled it.
type clockMsg struct {
	gen  int
	high bool
}

type releaseMsg struct{}

type loadedMsg struct {
	path    string
	pattern *converter.Pattern
	err     error
}

type savedMsg struct {
	path string
	err  error
}

// New creates a tracker editing seq. The sequencer is stopped so edits audition.
func New(seq *control.Sequencer, conv *converter.Converter, opts ...Option) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi", ".seq", ".syx"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	m := Model{
		seq:        seq,
		conv:       conv,
		logger:     slog.Default(),
		state:      StateTracker,
		follow:     true,
		tempo:      converter.DefaultTempo,
		name:       "Untitled",
		path:       "pattern.seq",
		keys:       defaultKeyMap(),
		help:       help.New(),
		filePicker: fp,
		spinner:    s,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.err = seq.Stop()
	return m
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return nil
}

// stepPeriod is the length of one 16th note
func (m Model) stepPeriod() time.Duration {
	return time.Duration(float64(time.Minute) / m.tempo / 4)
}

func (m Model) clockTick(high bool) tea.Cmd {
	gen := m.gen
	return tea.Tick(m.stepPeriod()/2, func(time.Time) tea.Msg {
		return clockMsg{gen: gen, high: high}
	})
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Clock edges keep flowing while the file picker is open
	switch msg := msg.(type) {
	case clockMsg:
		return m.updateClock(msg)
	case releaseMsg:
		if err := m.seq.ReleaseNote(); err != nil {
			m.err = err
		}
		return m, nil
	case spinner.TickMsg:
		if !m.playing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loadedMsg:
		return m.applyLoaded(msg), nil
	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.status = "saved " + filepath.Base(msg.path)
		}
		return m, nil
	}

	if m.state == StateFilePicker {
		return m.updateFilePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		return m.updateTracker(msg)
	}

	return m, nil
}

func (m Model) updateFilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = StateTracker
			return m, nil
		case "ctrl+c":
			return m.quit()
		}
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = StateTracker
		m.status = "loading " + filepath.Base(path)
		return m, m.loadFile(path)
	}
	return m, cmd
}

func (m Model) updateTracker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if pitch, ok := noteKeys[msg.String()]; ok {
		return m.enterNote(pitch)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.PrevPage):
		m.moveCursor(m.cursor - TrackerLines)
	case key.Matches(msg, m.keys.NextPage):
		m.moveCursor(m.cursor + TrackerLines)
	case key.Matches(msg, m.keys.Clear):
		m.seq.ClearNote(m.cursor)
	case key.Matches(msg, m.keys.Gate):
		m.seq.ToggleGate(m.cursor)
	case key.Matches(msg, m.keys.Tie):
		m.seq.ToggleTie(m.cursor)
	case key.Matches(msg, m.keys.Accent):
		m.seq.ToggleAccent(m.cursor)
	case key.Matches(msg, m.keys.Slide):
		m.seq.ToggleSlide(m.cursor)
	case key.Matches(msg, m.keys.Up12):
		m.seq.ToggleTranspose(m.cursor, engine.TransposeUp)
	case key.Matches(msg, m.keys.Down12):
		m.seq.ToggleTranspose(m.cursor, engine.TransposeDown)
	case key.Matches(msg, m.keys.ResetFlag):
		m.seq.ToggleReset(m.cursor)
	case key.Matches(msg, m.keys.Play):
		return m.togglePlay()
	case key.Matches(msg, m.keys.Rewind):
		m.seq.Rewind()
		m.moveCursor(0)
	case key.Matches(msg, m.keys.Scrub):
		if !m.seq.Scrub(m.cursor) {
			m.status = "stop playback to move the play position"
		}
	case key.Matches(msg, m.keys.PrevPlayPage):
		m.jumpPage(-1)
	case key.Matches(msg, m.keys.NextPlayPage):
		m.jumpPage(1)
	case key.Matches(msg, m.keys.Follow):
		m.follow = !m.follow
	case key.Matches(msg, m.keys.Load):
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case key.Matches(msg, m.keys.Save):
		m.status = "saving " + filepath.Base(m.path)
		return m, m.saveFile()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) moveCursor(i int) {
	if i < 0 {
		i = 0
	}
	if i >= engine.MaxPatternLength {
		i = engine.MaxPatternLength - 1
	}
	m.cursor = i
	m.page = i / TrackerLines
}

// jumpPage moves playback delta pages, wrapping around the pattern
func (m *Model) jumpPage(delta int) {
	_, cur := m.seq.Snapshot()
	page := (cur/TrackerLines + delta + control.PageCount) % control.PageCount
	if !m.seq.JumpPage(page) {
		return
	}
	if m.follow {
		m.page = page
	}
	m.status = fmt.Sprintf("playing page %d", page+1)
}

// enterNote writes pitch at the cursor and moves to the next step
func (m Model) enterNote(pitch int8) (tea.Model, tea.Cmd) {
	ok, err := m.seq.EnterNote(m.cursor, pitch)
	if err != nil {
		m.err = err
	}
	if !ok {
		return m, nil
	}

	var cmd tea.Cmd
	if !m.playing {
		cmd = tea.Tick(auditionLength, func(time.Time) tea.Msg { return releaseMsg{} })
	}
	m.moveCursor(m.cursor + 1)
	return m, cmd
}

func (m Model) togglePlay() (tea.Model, tea.Cmd) {
	m.gen++
	if m.playing {
		m.playing = false
		m.err = m.seq.Stop()
		m.logger.Debug("tui: stop")
		return m, nil
	}

	m.playing = true
	m.err = nil
	m.seq.Start()
	m.logger.Debug("tui: play", "tempo", m.tempo)
	gen := m.gen
	first := func() tea.Msg { return clockMsg{gen: gen, high: true} }
	return m, tea.Batch(first, m.spinner.Tick)
}

func (m Model) updateClock(msg clockMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || !m.playing {
		return m, nil
	}

	if !msg.high {
		if err := m.seq.ClockOff(); err != nil {
			m.err = err
		}
		return m, m.clockTick(true)
	}

	f, played, err := m.seq.ClockOn()
	if err != nil {
		m.err = err
	}
	if played && m.follow {
		m.page = f.Step / TrackerLines
	}
	return m, m.clockTick(false)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.playing = false
	m.gen++
	if err := m.seq.Stop(); err != nil {
		m.logger.Warn("tui: stop on quit", "err", err)
	}
	return m, tea.Quit
}

func (m Model) loadFile(path string) tea.Cmd {
	conv := m.conv
	return func() tea.Msg {
		p, err := conv.LoadFile(path)
		return loadedMsg{path: path, pattern: p, err: err}
	}
}

func (m Model) applyLoaded(msg loadedMsg) Model {
	if msg.err != nil {
		m.err = msg.err
		m.logger.Warn("tui: load failed", "path", msg.path, "err", msg.err)
		return m
	}
	if !m.seq.Load(msg.pattern.Steps) {
		m.err = errInvalidPattern
		return m
	}

	m.err = nil
	m.name = msg.pattern.Name
	if msg.pattern.Tempo > 0 {
		m.tempo = msg.pattern.Tempo
	}
	if converter.DetectFormat(msg.path) != converter.FormatUnknown {
		m.path = msg.path
	}
	m.status = "loaded " + filepath.Base(msg.path)
	m.logger.Info("tui: pattern loaded", "path", msg.path, "loop", msg.pattern.Steps.LoopLength())
	return m
}

func (m Model) saveFile() tea.Cmd {
	steps, _ := m.seq.Snapshot()
	p := &converter.Pattern{Name: m.name, Tempo: m.tempo, Steps: steps}
	conv, path := m.conv, m.path
	return func() tea.Msg {
		return savedMsg{path: path, err: conv.SaveFile(p, path)}
	}
}

// Run starts the TUI application
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
