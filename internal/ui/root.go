package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/devtasks/internal/app"
	"github.com/dori/devtasks/internal/ui/theme"
	"github.com/dori/devtasks/internal/ui/views"
)

// RootModel is the main application model. It owns the board and the
// chrome around it.
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int
	now    func() time.Time

	board       views.BoardView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	return RootModel{
		app:   application,
		keys:  DefaultKeyMap(),
		help:  newHelp(),
		now:   time.Now,
		board: views.NewBoardView(application.DB, application.Notifier, application.Logger),
	}
}

func newHelp() help.Model {
	styles := theme.Current.Styles

	h := help.New()
	h.ShowAll = false
	h.Styles.ShortKey = styles.HelpKey
	h.Styles.ShortDesc = styles.HelpDesc
	h.Styles.ShortSeparator = styles.HelpSeparator
	h.Styles.FullKey = styles.HelpKey
	h.Styles.FullDesc = styles.HelpDesc
	h.Styles.FullSeparator = styles.HelpSeparator
	return h
}

// Init loads the board and checks for missed deadlines
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(m.board.Init(), m.checkDeadlines())
}

// checkDeadlines reminds the user of open tasks past their deadline
func (m RootModel) checkDeadlines() tea.Cmd {
	application, now := m.app, m.now()
	return func() tea.Msg {
		tasks, err := application.DB.ListTasks()
		if err != nil {
			application.Logger.Error("deadline check failed", "err", err)
			return ErrorMsg{Err: err}
		}

		overdue := 0
		for i := range tasks {
			if tasks[i].IsPastDeadline(now) {
				overdue++
			}
		}
		if overdue == 0 {
			return nil
		}

		application.Logger.Info("overdue tasks", "count", overdue)
		if err := application.Notifier.SendDeadlineReminder(overdue); err != nil {
			application.Logger.Warn("deadline notification failed", "err", err)
		}
		if overdue == 1 {
			return StatusMsg{Message: "1 open task is past its deadline"}
		}
		return StatusMsg{Message: fmt.Sprintf("%d open tasks are past their deadline", overdue)}
	}
}

// export writes the board to a YAML file in the data directory
func (m RootModel) export() tea.Cmd {
	application, now := m.app, m.now()
	return func() tea.Msg {
		path, err := application.Export(now)
		return ExportedMsg{Path: path, Err: err}
	}
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = max(0, msg.Width-2)
		m.board = m.board.SetSize(m.width, m.contentHeight())
		return m, nil

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.board.IsInputMode()

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			m.cycleTheme()
			return m, nil
		}

		if m.helpVisible {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.helpVisible = false
			}
			return m, nil
		}

		// These only work when NOT in input mode
		if !isInputMode {
			switch {
			case key.Matches(msg, m.keys.Help):
				m.helpVisible = true
				return m, nil

			case key.Matches(msg, m.keys.Export):
				return m, m.export()
			}
		}

	case ExportedMsg:
		if msg.Err != nil {
			m.app.Logger.Error("export failed", "err", msg.Err)
			m.errorMsg = fmt.Sprintf("Export failed: %v", msg.Err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Exported to %s", msg.Path)
		return m, nil

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil
	}

	// Delegate to the board
	newBoard, cmd := m.board.Update(msg)
	m.board = newBoard.(views.BoardView)
	return m, cmd
}

// contentHeight is the height left for the board: one header line, one
// status line and one hint line
func (m RootModel) contentHeight() int {
	return max(1, m.height-3)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.board.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < m.contentHeight() {
		content += strings.Repeat("\n", m.contentHeight()-contentLines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("devtasks")

	infoStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)

	leftSide := title
	if q := m.board.Query(); q != "" {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Center, title,
			infoStyle.Foreground(t.Info).Render(fmt.Sprintf("[search: %s]", q)))
	}

	b := m.board.Board()
	rightSide := infoStyle.Render(fmt.Sprintf("tasks: %d · theme: %s", b.Len()+len(b.Unknown), t.Name))

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	var statusLine string
	if m.errorMsg != "" {
		statusLine = styles.ErrorText.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = styles.Notice.Render(m.statusMsg)
	}

	var hints string
	switch {
	case m.helpVisible:
		hints = m.help.ShortHelpView([]key.Binding{m.keys.Back, m.keys.Quit})
	case m.board.IsInputMode():
		hints = m.help.ShortHelpView(m.keys.inputHelp(m.board.Mode()))
	default:
		hints = m.help.View(m.keys)
	}

	return statusLine + "\n" + styles.Footer.Render(hints)
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	styles := theme.Current.Styles

	full := m.help
	full.ShowAll = true

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render("devtasks help"))
	b.WriteString("\n\n")
	b.WriteString(full.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpDesc.Render("In the add form: tab/shift+tab move between fields, ←/→ change priority and status, ctrl+s saves."))
	b.WriteString("\n")
	b.WriteString(styles.HelpDesc.Render("Press ? or esc to close"))

	return styles.Panel.Render(b.String())
}

// cycleTheme cycles through available themes
func (m *RootModel) cycleTheme() {
	next := theme.Next(theme.Current.Theme.Name)
	theme.SetTheme(next)
	width := m.help.Width
	m.help = newHelp()
	m.help.Width = width
	m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
	m.app.Logger.Debug("theme changed", "theme", next.Name)
}
