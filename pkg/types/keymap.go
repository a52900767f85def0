package types

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the terminal labeler.
// It lives in pkg/types so the help view and the model share it.
type KeyMap struct {
	// General
	Help key.Binding
	Quit key.Binding

	// Label selection for labels without a shortcut
	Prev  key.Binding
	Next  key.Binding
	Apply key.Binding

	// One binding per label shortcut, in label order
	Labels []key.Binding
}

// DefaultKeyMap returns the fixed bindings. Label bindings are added with
// AddLabel once the labels are known.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Help: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "up"),
			key.WithHelp("←/↑", "previous label"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "down"),
			key.WithHelp("→/↓", "next label"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply selected label"),
		),
	}
}

// AddLabel adds the help entry for a label shortcut.
func (k *KeyMap) AddLabel(r rune, name string) {
	k.Labels = append(k.Labels, key.NewBinding(
		key.WithKeys(string(r)),
		key.WithHelp(string(r), name),
	))
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{{k.Prev, k.Next, k.Apply}, {k.Help, k.Quit}}
	// help renders each group as a column; keep columns short.
	for start := 0; start < len(k.Labels); start += 6 {
		end := min(start+6, len(k.Labels))
		groups = append(groups, k.Labels[start:end])
	}
	return groups
}
