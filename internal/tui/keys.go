package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Confirm key.Binding
	Up      key.Binding
	Down    key.Binding
	Lower   key.Binding
	Higher  key.Binding
	More    key.Binding
	Fewer   key.Binding
	Formula key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous player")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next player")),
	Lower:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "lower bid")),
	Higher:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "higher bid")),
	More:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "one more trick")),
	Fewer:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "one fewer trick")),
	Formula: key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "toggle formula")),
	Reset:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "new game")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// phaseKeys satisfies help.KeyMap with only the bindings that do something
// in the current phase.
type phaseKeys []key.Binding

func (p phaseKeys) ShortHelp() []key.Binding { return p }

func (p phaseKeys) FullHelp() [][]key.Binding { return [][]key.Binding{p} }
