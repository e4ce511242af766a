package tui

import "github.com/charmbracelet/bubbles/key"

// noteKeys lays one octave out on the lower keyboard row, tracker style
var noteKeys = map[string]int8{
	"z": 0, "s": 1, "x": 2, "d": 3, "c": 4, "v": 5,
	"g": 6, "b": 7, "h": 8, "n": 9, "j": 10, "m": 11,
}

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	PrevPage     key.Binding
	NextPage     key.Binding
	PrevPlayPage key.Binding
	NextPlayPage key.Binding
	Notes        key.Binding
	Clear        key.Binding
	Gate         key.Binding
	Tie          key.Binding
	Accent       key.Binding
	Slide        key.Binding
	Up12         key.Binding
	Down12       key.Binding
	ResetFlag    key.Binding
	Play         key.Binding
	Rewind       key.Binding
	Scrub        key.Binding
	Follow       key.Binding
	Load         key.Binding
	Save         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev step")),
		Down:         key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next step")),
		PrevPage:     key.NewBinding(key.WithKeys("left", "pgup"), key.WithHelp("←", "prev page")),
		NextPage:     key.NewBinding(key.WithKeys("right", "pgdown"), key.WithHelp("→", "next page")),
		PrevPlayPage: key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("⇧←", "play prev page")),
		NextPlayPage: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("⇧→", "play next page")),
		Notes:        key.NewBinding(key.WithKeys("z", "s", "x", "d", "c", "v", "g", "b", "h", "n", "j", "m"), key.WithHelp("z…m", "enter note")),
		Clear:        key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("del", "rest")),
		Gate:         key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "gate")),
		Tie:          key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "tie")),
		Accent:       key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "accent")),
		Slide:        key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "slide")),
		Up12:         key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "octave up")),
		Down12:       key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "octave down")),
		ResetFlag:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "loop end")),
		Play:         key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/stop")),
		Rewind:       key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "rewind")),
		Scrub:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play from here")),
		Follow:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow")),
		Load:         key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^o", "load")),
		Save:         key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^s", "save")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Notes, k.Play, k.Load, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage, k.Follow},
		{k.Notes, k.Clear, k.Gate, k.Tie, k.ResetFlag},
		{k.Accent, k.Slide, k.Up12, k.Down12},
		{k.Play, k.Rewind, k.Scrub, k.PrevPlayPage, k.NextPlayPage},
		{k.Load, k.Save, k.Help, k.Quit},
	}
}
