package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dori/devtasks/internal/model"
)

// Theme defines the color scheme for the board
type Theme struct {
	Name string

	// Base colors
	Foreground    lipgloss.Color
	Subtle        lipgloss.Color
	Highlight     lipgloss.Color
	Border        lipgloss.Color
	TagBackground lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Priority colors
	PriorityLow    lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityHigh   lipgloss.Color

	// Status colors, one per column
	StatusNotStarted lipgloss.Color
	StatusInProgress lipgloss.Color
	StatusCompleted  lipgloss.Color
}

// PriorityColor returns the color used for a priority badge
func (t Theme) PriorityColor(p model.Priority) lipgloss.Color {
	switch p {
	case model.PriorityHigh:
		return t.PriorityHigh
	case model.PriorityMedium:
		return t.PriorityMedium
	case model.PriorityLow:
		return t.PriorityLow
	}
	return t.Subtle
}

// StatusColor returns the accent color of a status column
func (t Theme) StatusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusNotStarted:
		return t.StatusNotStarted
	case model.StatusInProgress:
		return t.StatusInProgress
	case model.StatusCompleted:
		return t.StatusCompleted
	}
	return t.Warning
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	// Base styles
	Header lipgloss.Style
	Footer lipgloss.Style

	// Board styles
	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnTitle   lipgloss.Style
	Card          lipgloss.Style
	CardSelected  lipgloss.Style
	CardDone      lipgloss.Style
	CardOverdue   lipgloss.Style

	// Component styles
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Label       lipgloss.Style
	Tag         lipgloss.Style
	DueDate     lipgloss.Style
	Priority    lipgloss.Style
	Description lipgloss.Style

	// Input styles
	InputFocused lipgloss.Style
	Placeholder  lipgloss.Style

	// Panel styles
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style

	// Help styles
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style

	// Status line
	ErrorText lipgloss.Style
	Notice    lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		Column: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		ColumnFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		ColumnTitle: lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1),

		Card: lipgloss.NewStyle().
			Foreground(t.Foreground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(t.Border).
			PaddingLeft(1),

		CardSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(t.Primary).
			PaddingLeft(1),

		CardDone: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Strikethrough(true),

		CardOverdue: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Italic(true),

		Label: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Tag: lipgloss.NewStyle().
			Foreground(t.Info).
			Background(t.TagBackground).
			Padding(0, 1).
			MarginRight(1),

		DueDate: lipgloss.NewStyle().
			Foreground(t.Warning),

		Priority: lipgloss.NewStyle().
			Bold(true),

		Description: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Italic(true),

		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Placeholder: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),

		PanelTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),

		ErrorText: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Notice: lipgloss.NewStyle().
			Foreground(t.Success),
	}
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Nord,
	Styles: NewStyles(Nord),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Nord,
		Dracula,
		Gruvbox,
		Catppuccin,
	}
}

// ByName returns a theme by its name, ignoring case
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Theme{}, false
}

// Next returns the theme after the named one, wrapping around
func Next(name string) Theme {
	themes := Available()
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
