package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/dori/devtasks/internal/ui/views"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Task Actions
	Add       key.Binding
	Status    key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Toggle    key.Binding
	Delete    key.Binding

	// Power User
	Search     key.Binding
	Help       key.Binding
	Export     key.Binding
	ThemeCycle key.Binding

	// General
	Quit    key.Binding
	Back    key.Binding
	Confirm key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),

		// Task Actions
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "set status"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "move left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "move right"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "description"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),

		// Power User
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "export"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),

		// General
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "set"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Status, k.MoveLeft, k.MoveRight, k.Delete, k.Search, k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Top, k.Bottom},
		{k.Add, k.Status, k.MoveLeft, k.MoveRight, k.Toggle, k.Delete},
		{k.Search, k.Back, k.Export, k.ThemeCycle},
		{k.Help, k.Quit},
	}
}

// inputHelp returns the hints shown while the board captures keys
func (k KeyMap) inputHelp(mode views.BoardMode) []key.Binding {
	save := key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save"))
	field := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab/S-tab", "field"))
	choose := key.NewBinding(key.WithKeys("j"), key.WithHelp("j/k 1-3", "choose"))
	keep := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "keep filter"))
	clear := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear"))
	yes := key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete"))
	no := key.NewBinding(key.WithKeys("n"), key.WithHelp("n/esc", "keep"))
	cancel := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))

	switch mode {
	case views.BoardModeSearch:
		return []key.Binding{keep, clear}
	case views.BoardModeAdd:
		return []key.Binding{field, save, cancel}
	case views.BoardModeStatus:
		return []key.Binding{choose, k.Confirm, cancel}
	case views.BoardModeConfirmDelete:
		return []key.Binding{yes, no}
	}
	return nil
}
