package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/acidstep/pkg/engine"
)

var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateTracker:
		s.WriteString(m.viewTracker())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return s.String()
}

func (m Model) viewTracker() string {
	var s strings.Builder

	transport := "STOPPED"
	if m.playing {
		transport = m.spinner.View() + " PLAYING"
	}
	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", strings.ToUpper(m.name))))
	s.WriteString("\n")

	var rows []string
	var current, loop int
	m.seq.View(func(e *engine.Engine) {
		current = e.CurrentStep()
		loop = e.LoopLength()
		start := m.page * TrackerLines
		for i := start; i < start+TrackerLines; i++ {
			rows = append(rows, m.renderRow(e, i, current))
		}
	})

	s.WriteString(dimStyle.Render("    step note gate acc sld oct end"))
	s.WriteString("\n")
	s.WriteString(strings.Join(rows, "\n"))
	s.WriteString("\n")

	follow := "off"
	if m.follow {
		follow = "on"
	}
	s.WriteString(statusStyle.Render(fmt.Sprintf("%s  %.1f bpm  page %d/%d  loop %d  follow %s",
		transport, m.tempo, m.page+1, engine.MaxPatternLength/TrackerLines, loop, follow)))

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	} else if m.status != "" {
		s.WriteString("\n")
		s.WriteString(successStyle.Render("✓ " + m.status))
	}

	return boxStyle.Render(s.String())
}

// renderRow draws one step. Rests show the carried pitch dimmed.
func (m Model) renderRow(e *engine.Engine, i, current int) string {
	st := e.StepAt(i)

	note := dimStyle.Render(noteName(int(e.DeterminedPitch(i))))
	if st.Pitch != engine.PitchRest {
		note = noteName(int(st.Pitch))
	}

	gate := "---"
	switch st.Gate {
	case engine.GateOn:
		gate = "on "
	case engine.GateTie:
		gate = "tie"
	}

	oct := " · "
	switch st.Transpose {
	case engine.TransposeUp:
		oct = " ↑ "
	case engine.TransposeDown:
		oct = " ↓ "
	}

	marker := "  "
	if i == current {
		marker = "▶ "
	}

	line := fmt.Sprintf("%s%02d  %s  %s  %s   %s   %s %s",
		marker, i+1, note, gate, flag(st.Accent, "A"), flag(st.Slide, "S"), oct, flag(st.Reset, "R"))

	var style lipgloss.Style
	switch {
	case i == m.cursor:
		style = selectedStyle
	case i == current && m.playing:
		style = playingStyle
	default:
		style = rowStyle
	}
	return style.Render(line)
}

func noteName(pitch int) string {
	if pitch < 0 || pitch >= len(noteNames) {
		return "--"
	}
	return noteNames[pitch]
}

func flag(on bool, s string) string {
	if on {
		return s
	}
	return "·"
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" LOAD PATTERN "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to tracker"))

	return s.String()
}

func asciiLogo() string {
	logo := `
    ___   ______ ________  _____ ________________
   /   | / ____//  _/ __ \/ ___//_  __/ ____/ __ \
  / /| |/ /     / // / / /\__ \  / / / __/ / /_/ /
 / ___ / /___ _/ // /_/ /___/ / / / / /___/ ____/
/_/  |_\____//___/_____//____/ /_/ /_____/_/
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}
