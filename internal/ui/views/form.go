package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/devtasks/internal/model"
	"github.com/dori/devtasks/internal/ui/theme"
)

// formField identifies one input of the add-task form
type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldDueDate
	fieldDeadline
	fieldPriority
	fieldStatus
	fieldTags
	fieldEstimate
	fieldMinimum
	numFormFields
)

var formLabels = [numFormFields]string{
	"Title",
	"Description",
	"Due Date",
	"Deadline",
	"Priority",
	"Status",
	"Tags",
	"Estimated Time",
	"Minimum Time",
}

var formPlaceholders = [numFormFields]string{
	"What needs doing?",
	"optional",
	"YYYY-MM-DD",
	"YYYY-MM-DD",
	"",
	"",
	"comma,separated",
	"hours",
	"hours",
}

// formAction tells the board what the last key did to the form
type formAction int

const (
	formNone formAction = iota
	formSave
	formCancel
)

// TaskForm is the modal add-task form
type TaskForm struct {
	inputs   [numFormFields]textinput.Model
	focus    formField
	priority int // index into model.Priorities()
	status   int // index into model.Statuses()
	err      string
	width    int
}

// NewTaskForm creates a form with the dates set to today, Medium priority
// and Not Started status
func NewTaskForm(now time.Time) TaskForm {
	f := TaskForm{
		priority: indexOf(model.Priorities(), model.PriorityMedium),
		status:   model.StatusNotStarted.Index(),
	}

	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Placeholder = formPlaceholders[i]
		ti.Cursor.SetMode(cursor.CursorStatic)
		f.inputs[i] = ti
	}
	f.inputs[fieldDueDate].SetValue(now.Format(model.DateLayout))
	f.inputs[fieldDeadline].SetValue(now.Format(model.DateLayout))
	f.inputs[fieldEstimate].CharLimit = 6
	f.inputs[fieldMinimum].CharLimit = 6

	f.inputs[fieldTitle].Focus()
	return f
}

func indexOf(priorities []model.Priority, p model.Priority) int {
	for i, known := range priorities {
		if known == p {
			return i
		}
	}
	return 0
}

// SetWidth sets the rendered width of the form
func (f TaskForm) SetWidth(width int) TaskForm {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-24)
	}
	return f
}

// Input returns the raw values entered so far
func (f TaskForm) Input() model.TaskInput {
	return model.TaskInput{
		Title:         f.inputs[fieldTitle].Value(),
		Description:   f.inputs[fieldDescription].Value(),
		DueDate:       f.inputs[fieldDueDate].Value(),
		Deadline:      f.inputs[fieldDeadline].Value(),
		Priority:      string(model.Priorities()[f.priority]),
		Status:        string(model.Statuses()[f.status]),
		Tags:          f.inputs[fieldTags].Value(),
		EstimatedTime: f.inputs[fieldEstimate].Value(),
		MinimumTime:   f.inputs[fieldMinimum].Value(),
	}
}

// SetError shows msg below the fields
func (f TaskForm) SetError(msg string) TaskForm {
	f.err = msg
	return f
}

func isChoice(field formField) bool {
	return field == fieldPriority || field == fieldStatus
}

// setFocus moves focus to field, blurring the previous input
func (f *TaskForm) setFocus(field formField) {
	f.inputs[f.focus].Blur()
	f.focus = field
	if !isChoice(field) {
		f.inputs[field].Focus()
		f.inputs[field].CursorEnd()
	}
}

// cycle moves the selection of a choice field by delta, wrapping around
func (f *TaskForm) cycle(delta int) {
	switch f.focus {
	case fieldPriority:
		n := len(model.Priorities())
		f.priority = (f.priority + delta + n) % n
	case fieldStatus:
		n := len(model.Statuses())
		f.status = (f.status + delta + n) % n
	}
}

// Update handles a key press. It validates before reporting formSave, so a
// save action always carries input that passed validation.
func (f TaskForm) Update(msg tea.KeyMsg) (TaskForm, formAction, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return f, formCancel, nil

	case "tab", "down":
		f.setFocus((f.focus + 1) % numFormFields)
		return f, formNone, nil

	case "shift+tab", "up":
		f.setFocus((f.focus + numFormFields - 1) % numFormFields)
		return f, formNone, nil

	case "ctrl+s":
		return f.submit()

	case "enter":
		if f.focus == numFormFields-1 {
			return f.submit()
		}
		f.setFocus(f.focus + 1)
		return f, formNone, nil
	}

	if isChoice(f.focus) {
		switch msg.String() {
		case "left", "h":
			f.cycle(-1)
		case "right", "l", " ":
			f.cycle(1)
		}
		return f, formNone, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, formNone, cmd
}

func (f TaskForm) submit() (TaskForm, formAction, tea.Cmd) {
	if _, err := f.Input().Validate(); err != nil {
		f.err = err.Error()
		return f, formNone, nil
	}
	f.err = ""
	return f, formSave, nil
}

// View renders the form as a bordered panel
func (f TaskForm) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	labelStyle := styles.Label.Width(16)
	focusedLabel := labelStyle.Foreground(t.Primary).Bold(true)

	var lines []string
	lines = append(lines, styles.PanelTitle.Render("New Task"), "")

	for i := formField(0); i < numFormFields; i++ {
		label := labelStyle.Render(formLabels[i])
		if i == f.focus {
			label = focusedLabel.Render(formLabels[i])
		}

		var value string
		switch i {
		case fieldPriority:
			value = f.renderChoice(priorityNames(), f.priority, i == f.focus)
		case fieldStatus:
			value = f.renderChoice(statusNames(), f.status, i == f.focus)
		default:
			value = f.inputs[i].View()
		}
		lines = append(lines, label+value)
	}

	lines = append(lines, "")
	if f.err != "" {
		lines = append(lines, styles.ErrorText.Width(max(20, f.width-8)).Render(f.err))
	}
	lines = append(lines, styles.HelpDesc.Render("tab/shift+tab: field • ←/→: change • ctrl+s: save • esc: cancel"))

	return styles.Panel.BorderForeground(t.Primary).Render(strings.Join(lines, "\n"))
}

func (f TaskForm) renderChoice(names []string, selected int, focused bool) string {
	t := theme.Current.Theme

	var parts []string
	for i, name := range names {
		style := lipgloss.NewStyle().Foreground(t.Subtle)
		if i == selected {
			style = lipgloss.NewStyle().Foreground(t.Foreground).Bold(true)
			if focused {
				style = style.Background(t.Highlight)
			}
			name = fmt.Sprintf("[%s]", name)
		}
		parts = append(parts, style.Render(name))
	}
	return strings.Join(parts, " ")
}

func priorityNames() []string {
	var names []string
	for _, p := range model.Priorities() {
		names = append(names, string(p))
	}
	return names
}

func statusNames() []string {
	var names []string
	for _, s := range model.Statuses() {
		names = append(names, string(s))
	}
	return names
}
