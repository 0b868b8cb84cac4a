package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play        key.Binding
	Back        key.Binding
	Forward     key.Binding
	BackFast    key.Binding
	ForwardFast key.Binding
	PrevFrame   key.Binding
	NextFrame   key.Binding
	Start       key.Binding
	End         key.Binding

	Add      key.Binding
	Remove   key.Binding
	SetStart key.Binding
	SetEnd   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Jump     key.Binding
	Preview  key.Binding
	Undo     key.Binding

	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding

	Export  key.Binding
	Mute    key.Binding
	Quality key.Binding
	Cancel  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Play:        key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Back:        key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "±1s")),
	Forward:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "+1s")),
	BackFast:    key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H/L", "±5s")),
	ForwardFast: key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "+5s")),
	PrevFrame:   key.NewBinding(key.WithKeys(","), key.WithHelp(",/.", "±frame")),
	NextFrame:   key.NewBinding(key.WithKeys("."), key.WithHelp(".", "+frame")),
	Start:       key.NewBinding(key.WithKeys("0", "home"), key.WithHelp("0", "go to start")),
	End:         key.NewBinding(key.WithKeys("$", "G", "end"), key.WithHelp("G/$", "go to end")),

	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add segment")),
	Remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove segment")),
	SetStart: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "set start")),
	SetEnd:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "set end")),
	Next:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "select segment")),
	Prev:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "previous segment")),
	Jump:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "jump to segment")),
	Preview:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview segment")),
	Undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),

	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
	ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	ZoomReset: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "reset zoom")),
	PanLeft:   key.NewBinding(key.WithKeys("<"), key.WithHelp("</>", "pan")),
	PanRight:  key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "pan right")),

	Export:  key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "export")),
	Mute:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
	Quality: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "quality")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop preview")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp is the footer line. It changes with what can be done next.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Back, k.Add, k.SetStart, k.SetEnd, k.ZoomIn, k.Export, k.Help}
}

func (k keyMap) editingHelp() []key.Binding {
	return []key.Binding{k.Play, k.Next, k.SetStart, k.SetEnd, k.Preview, k.Remove, k.Export, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Back, k.BackFast, k.PrevFrame, k.Start, k.End, k.Mute, k.Quality},
		{k.Add, k.Remove, k.SetStart, k.SetEnd, k.Next, k.Jump, k.Preview, k.Undo},
		{k.ZoomIn, k.ZoomReset, k.PanLeft, k.Export, k.Cancel, k.Help, k.Quit},
	}
}
