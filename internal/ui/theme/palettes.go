package theme

import "github.com/charmbracelet/lipgloss"

// Nord - arctic, north-bluish palette
// https://www.nordtheme.com/
var Nord = Theme{
	Name: "nord",

	Foreground:    lipgloss.Color("#ECEFF4"),
	Subtle:        lipgloss.Color("#4C566A"),
	Highlight:     lipgloss.Color("#3B4252"),
	Border:        lipgloss.Color("#4C566A"),
	TagBackground: lipgloss.Color("#3B4252"),

	Primary:   lipgloss.Color("#88C0D0"), // Nord8
	Secondary: lipgloss.Color("#81A1C1"), // Nord9
	Info:      lipgloss.Color("#5E81AC"), // Nord10

	Success: lipgloss.Color("#A3BE8C"),
	Warning: lipgloss.Color("#EBCB8B"),
	Error:   lipgloss.Color("#BF616A"),

	PriorityLow:    lipgloss.Color("#A3BE8C"),
	PriorityMedium: lipgloss.Color("#EBCB8B"),
	PriorityHigh:   lipgloss.Color("#D08770"),

	StatusNotStarted: lipgloss.Color("#EBCB8B"),
	StatusInProgress: lipgloss.Color("#88C0D0"),
	StatusCompleted:  lipgloss.Color("#A3BE8C"),
}

// Dracula - dark with vibrant accents
// https://draculatheme.com/
var Dracula = Theme{
	Name: "dracula",

	Foreground:    lipgloss.Color("#F8F8F2"),
	Subtle:        lipgloss.Color("#6272A4"),
	Highlight:     lipgloss.Color("#44475A"),
	Border:        lipgloss.Color("#6272A4"),
	TagBackground: lipgloss.Color("#44475A"),

	Primary:   lipgloss.Color("#BD93F9"), // Purple
	Secondary: lipgloss.Color("#8BE9FD"), // Cyan
	Info:      lipgloss.Color("#8BE9FD"),

	Success: lipgloss.Color("#50FA7B"),
	Warning: lipgloss.Color("#F1FA8C"),
	Error:   lipgloss.Color("#FF5555"),

	PriorityLow:    lipgloss.Color("#50FA7B"),
	PriorityMedium: lipgloss.Color("#F1FA8C"),
	PriorityHigh:   lipgloss.Color("#FFB86C"),

	StatusNotStarted: lipgloss.Color("#F1FA8C"),
	StatusInProgress: lipgloss.Color("#8BE9FD"),
	StatusCompleted:  lipgloss.Color("#50FA7B"),
}

// Gruvbox - retro groove, dark variant
// https://github.com/morhetz/gruvbox
var Gruvbox = Theme{
	Name: "gruvbox",

	Foreground:    lipgloss.Color("#EBDBB2"),
	Subtle:        lipgloss.Color("#928374"),
	Highlight:     lipgloss.Color("#3C3836"),
	Border:        lipgloss.Color("#504945"),
	TagBackground: lipgloss.Color("#3C3836"),

	Primary:   lipgloss.Color("#83A598"), // Aqua
	Secondary: lipgloss.Color("#8EC07C"),
	Info:      lipgloss.Color("#83A598"),

	Success: lipgloss.Color("#B8BB26"),
	Warning: lipgloss.Color("#FABD2F"),
	Error:   lipgloss.Color("#FB4934"),

	PriorityLow:    lipgloss.Color("#B8BB26"),
	PriorityMedium: lipgloss.Color("#FABD2F"),
	PriorityHigh:   lipgloss.Color("#FE8019"),

	StatusNotStarted: lipgloss.Color("#FABD2F"),
	StatusInProgress: lipgloss.Color("#83A598"),
	StatusCompleted:  lipgloss.Color("#B8BB26"),
}

// Catppuccin - pastel, Mocha variant
// https://github.com/catppuccin/catppuccin
var Catppuccin = Theme{
	Name: "catppuccin",

	Foreground:    lipgloss.Color("#CDD6F4"),
	Subtle:        lipgloss.Color("#6C7086"),
	Highlight:     lipgloss.Color("#313244"),
	Border:        lipgloss.Color("#45475A"),
	TagBackground: lipgloss.Color("#313244"),

	Primary:   lipgloss.Color("#89B4FA"), // Blue
	Secondary: lipgloss.Color("#CBA6F7"), // Mauve
	Info:      lipgloss.Color("#74C7EC"), // Sapphire

	Success: lipgloss.Color("#A6E3A1"),
	Warning: lipgloss.Color("#F9E2AF"),
	Error:   lipgloss.Color("#F38BA8"),

	PriorityLow:    lipgloss.Color("#A6E3A1"),
	PriorityMedium: lipgloss.Color("#F9E2AF"),
	PriorityHigh:   lipgloss.Color("#FAB387"),

	StatusNotStarted: lipgloss.Color("#F9E2AF"),
	StatusInProgress: lipgloss.Color("#89B4FA"),
	StatusCompleted:  lipgloss.Color("#A6E3A1"),
}
