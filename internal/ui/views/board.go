package views

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/devtasks/internal/board"
	"github.com/dori/devtasks/internal/logging"
	"github.com/dori/devtasks/internal/model"
	"github.com/dori/devtasks/internal/ui/theme"
)

// TaskStore is the subset of the store the board needs
type TaskStore interface {
	ListTasks() ([]model.Task, error)
	SearchTasks(term string) ([]model.Task, error)
	CreateTask(in model.TaskInput) (*model.Task, error)
	UpdateTaskStatus(id int64, status model.Status) error
	DeleteTask(id int64) error
}

// CompletionNotifier is told when a task moves to Completed
type CompletionNotifier interface {
	SendTaskCompleted(title string) error
}

// Local message types for the board view
type boardLoadedMsg struct {
	board board.Board
	query string
	err   error
}

type taskCreatedMsg struct {
	task *model.Task
	err  error
}

type statusChangedMsg struct {
	task   model.Task
	status model.Status
	err    error
}

type taskDeletedMsg struct {
	task model.Task
	err  error
}

// BoardMode represents the current input mode
type BoardMode int

const (
	BoardModeNormal BoardMode = iota
	BoardModeSearch
	BoardModeAdd
	BoardModeStatus
	BoardModeConfirmDelete
)

// BoardView shows tasks in three status columns
type BoardView struct {
	store    TaskStore
	notifier CompletionNotifier
	logger   *slog.Logger
	now      func() time.Time

	width  int
	height int

	board board.Board

	// Navigation state
	currentColumn int
	cursorRow     [board.NumColumns]int
	columnScroll  [board.NumColumns]int

	// Tasks with their description expanded
	expanded map[int64]bool

	mode        BoardMode
	searchInput textinput.Model
	query       string
	form        TaskForm

	// For the status selector
	statusCursor int

	// For delete confirmation
	deleteTask model.Task

	// Task to put the cursor on after the next load
	focusAfterLoad int64

	statusMsg string
	errorMsg  string
}

// NewBoardView creates a new board view. notifier may be nil.
func NewBoardView(store TaskStore, notifier CompletionNotifier, logger *slog.Logger) BoardView {
	if logger == nil {
		logger = logging.Discard()
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Search title, description, tags..."
	ti.CharLimit = 256
	ti.Cursor.SetMode(cursor.CursorStatic)

	return BoardView{
		store:       store,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
		expanded:    make(map[int64]bool),
		searchInput: ti,
	}
}

// Init loads the tasks
func (v BoardView) Init() tea.Cmd {
	return v.loadTasks(v.query)
}

// SetSize sets the view dimensions
func (v BoardView) SetSize(width, height int) BoardView {
	v.width = width
	v.height = height
	v.searchInput.Width = max(10, width-14)
	v.form = v.form.SetWidth(width)
	return v
}

// IsInputMode returns whether the view is capturing keys
func (v BoardView) IsInputMode() bool {
	return v.mode != BoardModeNormal
}

// Mode returns the current input mode
func (v BoardView) Mode() BoardMode {
	return v.mode
}

// Query returns the active search term
func (v BoardView) Query() string {
	return v.query
}

// Board returns the tasks currently displayed
func (v BoardView) Board() board.Board {
	return v.board
}

// Error returns the last store error shown to the user
func (v BoardView) Error() string {
	return v.errorMsg
}

// Selected returns the task under the cursor
func (v BoardView) Selected() (model.Task, bool) {
	col := v.board.Columns[v.currentColumn]
	row := v.cursorRow[v.currentColumn]
	if row < 0 || row >= len(col) {
		return model.Task{}, false
	}
	return col[row], true
}

// loadTasks queries the store. An empty query lists everything.
func (v BoardView) loadTasks(query string) tea.Cmd {
	store := v.store
	return func() tea.Msg {
		var tasks []model.Task
		var err error
		if query == "" {
			tasks, err = store.ListTasks()
		} else {
			tasks, err = store.SearchTasks(query)
		}
		if err != nil {
			return boardLoadedMsg{query: query, err: err}
		}
		return boardLoadedMsg{board: board.Project(tasks), query: query}
	}
}

// Update handles messages
func (v BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		// Results for an older search term are stale
		if msg.query != v.query {
			return v, nil
		}
		if msg.err != nil {
			v.fail("load tasks", msg.err)
			return v, nil
		}
		v.board = msg.board
		if len(v.board.Unknown) > 0 {
			v.logger.Warn("tasks with unknown status", "count", len(v.board.Unknown))
		}
		v.restoreFocus()
		return v, nil

	case taskCreatedMsg:
		if msg.err != nil {
			var verr *model.ValidationError
			if errors.As(msg.err, &verr) {
				v.mode = BoardModeAdd
				v.form = v.form.SetError(verr.Error())
				return v, nil
			}
			v.fail("create task", msg.err)
			return v, nil
		}
		v.logger.Info("task created", "id", msg.task.ID, "title", msg.task.Title)
		v.statusMsg = fmt.Sprintf("Added '%s'", msg.task.Title)
		v.focusAfterLoad = msg.task.ID
		return v, v.loadTasks(v.query)

	case statusChangedMsg:
		if msg.err != nil {
			v.fail("update status", msg.err)
			return v, nil
		}
		v.logger.Info("status changed", "id", msg.task.ID, "from", msg.task.Status, "to", msg.status)
		v.statusMsg = fmt.Sprintf("'%s' → %s", msg.task.Title, msg.status)
		v.focusAfterLoad = msg.task.ID
		return v, v.loadTasks(v.query)

	case taskDeletedMsg:
		if msg.err != nil {
			v.fail("delete task", msg.err)
			return v, nil
		}
		v.logger.Info("task deleted", "id", msg.task.ID, "title", msg.task.Title)
		v.statusMsg = fmt.Sprintf("Deleted '%s'", msg.task.Title)
		delete(v.expanded, msg.task.ID)
		return v, v.loadTasks(v.query)

	case tea.KeyMsg:
		v.statusMsg = ""
		switch v.mode {
		case BoardModeSearch:
			return v.handleSearchMode(msg)
		case BoardModeAdd:
			return v.handleAddMode(msg)
		case BoardModeStatus:
			return v.handleStatusMode(msg)
		case BoardModeConfirmDelete:
			return v.handleConfirmDeleteMode(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	return v, nil
}

// fail records a store error so it is both visible and logged
func (v *BoardView) fail(op string, err error) {
	v.logger.Error("store operation failed", "op", op, "err", err)
	v.errorMsg = fmt.Sprintf("Could not %s: %v", op, err)
}

// handleNormalMode handles keys in normal mode
func (v BoardView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.errorMsg = ""

	switch msg.String() {
	// Column navigation
	case "h", "left":
		if v.currentColumn > 0 {
			v.currentColumn--
			v.clampCursor()
		}
		return v, nil

	case "l", "right":
		if v.currentColumn < board.NumColumns-1 {
			v.currentColumn++
			v.clampCursor()
		}
		return v, nil

	// Row navigation
	case "j", "down":
		if v.cursorRow[v.currentColumn] < len(v.board.Columns[v.currentColumn])-1 {
			v.cursorRow[v.currentColumn]++
			v.ensureCursorVisible()
		}
		return v, nil

	case "k", "up":
		if v.cursorRow[v.currentColumn] > 0 {
			v.cursorRow[v.currentColumn]--
			v.ensureCursorVisible()
		}
		return v, nil

	case "g":
		v.cursorRow[v.currentColumn] = 0
		v.columnScroll[v.currentColumn] = 0
		return v, nil

	case "G":
		if n := len(v.board.Columns[v.currentColumn]); n > 0 {
			v.cursorRow[v.currentColumn] = n - 1
			v.ensureCursorVisible()
		}
		return v, nil

	// Move task between columns
	case "H":
		return v, v.moveTask(-1)

	case "L":
		return v, v.moveTask(1)

	case "s":
		if task, ok := v.Selected(); ok {
			v.mode = BoardModeStatus
			v.statusCursor = max(0, task.Status.Index())
		}
		return v, nil

	case " ":
		if task, ok := v.Selected(); ok {
			v.expanded[task.ID] = !v.expanded[task.ID]
			v.ensureCursorVisible()
		}
		return v, nil

	case "a":
		v.mode = BoardModeAdd
		v.form = NewTaskForm(v.now()).SetWidth(v.width)
		return v, nil

	case "d":
		if task, ok := v.Selected(); ok {
			v.deleteTask = task
			v.mode = BoardModeConfirmDelete
		}
		return v, nil

	case "/":
		v.mode = BoardModeSearch
		v.searchInput.SetValue(v.query)
		v.searchInput.CursorEnd()
		cmd := v.searchInput.Focus()
		return v, cmd

	// Clear search
	case "esc":
		if v.query == "" {
			return v, nil
		}
		cmd := v.setQuery("")
		return v, cmd
	}

	return v, nil
}

// handleSearchMode re-queries the store whenever the term changes
func (v BoardView) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.mode = BoardModeNormal
		v.searchInput.Blur()
		return v, nil
	case "esc":
		v.mode = BoardModeNormal
		v.searchInput.Blur()
		v.searchInput.SetValue("")
		load := v.setQuery("")
		return v, load
	}

	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)

	query := v.searchInput.Value()
	if query == v.query {
		return v, cmd
	}
	load := v.setQuery(query)
	return v, tea.Batch(cmd, load)
}

// setQuery changes the filter and resets the columns to the top
func (v *BoardView) setQuery(query string) tea.Cmd {
	v.query = query
	for i := range v.cursorRow {
		v.cursorRow[i] = 0
		v.columnScroll[i] = 0
	}
	return v.loadTasks(query)
}

// handleAddMode forwards keys to the form
func (v BoardView) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, action, cmd := v.form.Update(msg)
	v.form = form

	switch action {
	case formCancel:
		v.mode = BoardModeNormal
		return v, nil
	case formSave:
		v.mode = BoardModeNormal
		return v, v.createTask(form.Input())
	}
	return v, cmd
}

// handleStatusMode handles the three-way status selector
func (v BoardView) handleStatusMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := model.Statuses()

	switch msg.String() {
	case "j", "down", "l", "right", "tab":
		v.statusCursor = (v.statusCursor + 1) % len(statuses)
	case "k", "up", "h", "left", "shift+tab":
		v.statusCursor = (v.statusCursor + len(statuses) - 1) % len(statuses)
	case "1", "2", "3":
		v.statusCursor = int(msg.String()[0] - '1')
		return v.applyStatus(statuses[v.statusCursor])
	case "enter":
		return v.applyStatus(statuses[v.statusCursor])
	case "esc", "q":
		v.mode = BoardModeNormal
	}
	return v, nil
}

func (v BoardView) applyStatus(status model.Status) (tea.Model, tea.Cmd) {
	v.mode = BoardModeNormal
	task, ok := v.Selected()
	if !ok || task.Status == status {
		return v, nil
	}
	return v, v.updateStatus(task, status)
}

// handleConfirmDeleteMode handles keys in delete confirmation mode
func (v BoardView) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = BoardModeNormal
		task := v.deleteTask
		v.deleteTask = model.Task{}
		return v, v.removeTask(task)
	case "n", "N", "esc", "q":
		v.mode = BoardModeNormal
		v.deleteTask = model.Task{}
	}
	return v, nil
}

// moveTask moves the current task to an adjacent column
func (v BoardView) moveTask(direction int) tea.Cmd {
	task, ok := v.Selected()
	if !ok {
		return nil
	}

	newColumn := v.currentColumn + direction
	if newColumn < 0 || newColumn >= board.NumColumns {
		return nil
	}
	return v.updateStatus(task, model.Statuses()[newColumn])
}

func (v BoardView) createTask(in model.TaskInput) tea.Cmd {
	store := v.store
	return func() tea.Msg {
		task, err := store.CreateTask(in)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (v BoardView) updateStatus(task model.Task, status model.Status) tea.Cmd {
	store, notifier, logger := v.store, v.notifier, v.logger
	return func() tea.Msg {
		if err := store.UpdateTaskStatus(task.ID, status); err != nil {
			return statusChangedMsg{task: task, status: status, err: err}
		}
		if status == model.StatusCompleted && notifier != nil {
			if err := notifier.SendTaskCompleted(task.Title); err != nil {
				logger.Warn("completion notification failed", "err", err)
			}
		}
		return statusChangedMsg{task: task, status: status}
	}
}

func (v BoardView) removeTask(task model.Task) tea.Cmd {
	store := v.store
	return func() tea.Msg {
		return taskDeletedMsg{task: task, err: store.DeleteTask(task.ID)}
	}
}

// restoreFocus puts the cursor back on focusAfterLoad and clamps every
// column to its new length
func (v *BoardView) restoreFocus() {
	if v.focusAfterLoad != 0 {
		if col, row, ok := v.board.Find(v.focusAfterLoad); ok {
			v.currentColumn = col
			v.cursorRow[col] = row
		}
		v.focusAfterLoad = 0
	}

	current := v.currentColumn
	for i := range v.board.Columns {
		v.currentColumn = i
		v.clampCursor()
	}
	v.currentColumn = current
	v.ensureCursorVisible()
}

// clampCursor ensures cursor is valid for current column
func (v *BoardView) clampCursor() {
	n := len(v.board.Columns[v.currentColumn])
	if v.cursorRow[v.currentColumn] >= n {
		v.cursorRow[v.currentColumn] = max(0, n-1)
	}
	v.ensureCursorVisible()
}

// ensureCursorVisible adjusts scroll to keep cursor in view
func (v *BoardView) ensureCursorVisible() {
	col := v.currentColumn
	row := v.cursorRow[col]

	if row < v.columnScroll[col] {
		v.columnScroll[col] = row
		return
	}

	tasks := v.board.Columns[col]
	for v.columnScroll[col] < row && v.lastVisible(tasks, v.columnScroll[col]) < row {
		v.columnScroll[col]++
	}
}

// lastVisible returns the index of the last card that fits in a column
// when scrolled to start
func (v BoardView) lastVisible(tasks []model.Task, start int) int {
	available := v.columnContentHeight() - 2 // title and its margin
	if start > 0 {
		available-- // "more above" line
	}

	used := 0
	last := start
	for i := start; i < len(tasks); i++ {
		h := lipgloss.Height(v.renderCard(tasks[i], false))
		if i > start && used+h > available-1 { // keep room for "more below"
			break
		}
		used += h
		last = i
	}
	return last
}

// columnWidth returns the inner width of one column
func (v BoardView) columnWidth() int {
	return max(20, v.width/board.NumColumns-4)
}

// columnContentHeight returns the height inside a column's border
func (v BoardView) columnContentHeight() int {
	// Border and the bottom prompt line
	h := v.height - 3
	if len(v.board.Unknown) > 0 {
		h--
	}
	return max(5, h)
}

// View renders the board
func (v BoardView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	if v.mode == BoardModeAdd {
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, v.form.View())
	}

	styles := theme.Current.Styles

	var sections []string
	if warning := v.renderUnknown(); warning != "" {
		sections = append(sections, warning)
	}

	var cols []string
	for i := range v.board.Columns {
		cols = append(cols, v.renderColumn(i))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, cols...))

	switch v.mode {
	case BoardModeSearch:
		sections = append(sections, styles.InputFocused.Width(v.width-4).Render("Search: "+v.searchInput.View()))
	case BoardModeStatus:
		sections = append(sections, v.renderStatusSelector())
	case BoardModeConfirmDelete:
		sections = append(sections, styles.ErrorText.Render(fmt.Sprintf("Delete '%s'? (y/n)", v.deleteTask.Title)))
	default:
		switch {
		case v.errorMsg != "":
			sections = append(sections, styles.ErrorText.Render(v.errorMsg))
		case v.statusMsg != "":
			sections = append(sections, styles.Notice.Render(v.statusMsg))
		case v.query != "":
			sections = append(sections, styles.Subtitle.Render(fmt.Sprintf("Filtered by \"%s\" (esc: clear)", v.query)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderUnknown warns about tasks that no column can show
func (v BoardView) renderUnknown() string {
	if len(v.board.Unknown) == 0 {
		return ""
	}

	seen := make(map[model.Status]bool)
	var names []string
	for _, task := range v.board.Unknown {
		if !seen[task.Status] {
			seen[task.Status] = true
			names = append(names, fmt.Sprintf("%q", string(task.Status)))
		}
	}

	format := "⚠ %d tasks have an unknown status (%s) and are not on the board"
	if len(v.board.Unknown) == 1 {
		format = "⚠ %d task has an unknown status (%s) and is not on the board"
	}
	return theme.Current.Styles.DueDate.Render(fmt.Sprintf(format, len(v.board.Unknown), strings.Join(names, ", ")))
}

// renderColumn renders one status column with its visible cards
func (v BoardView) renderColumn(i int) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	status := model.Statuses()[i]
	tasks := v.board.Columns[i]
	width := v.columnWidth()
	active := i == v.currentColumn

	title := styles.ColumnTitle.
		Foreground(t.StatusColor(status)).
		Width(width).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("%s (%d)", status, len(tasks)))

	var items []string
	scroll := min(v.columnScroll[i], len(tasks))
	last := v.lastVisible(tasks, scroll)

	more := styles.Label.Width(width).Align(lipgloss.Center)
	if scroll > 0 {
		items = append(items, more.Render(fmt.Sprintf("↑ %d more", scroll)))
	}
	for j := scroll; j <= last && j < len(tasks); j++ {
		items = append(items, v.renderCard(tasks[j], active && j == v.cursorRow[i]))
	}
	if last < len(tasks)-1 {
		items = append(items, more.Render(fmt.Sprintf("↓ %d more", len(tasks)-1-last)))
	}

	content := strings.Join(items, "\n")
	if len(tasks) == 0 {
		content = styles.Placeholder.Italic(true).Render("(empty)")
	}

	cs := styles.Column
	if active {
		cs = styles.ColumnFocused
	}
	return cs.Width(width + 2).Height(v.columnContentHeight()).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

// renderCard renders every field of a task
func (v BoardView) renderCard(task model.Task, selected bool) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	now := v.now()
	width := v.columnWidth() - 2

	titleStyle := styles.Title
	switch {
	case task.Status == model.StatusCompleted:
		titleStyle = styles.CardDone
	case task.IsPastDeadline(now):
		titleStyle = styles.CardOverdue
	}

	var lines []string
	lines = append(lines, titleStyle.Width(width).Render(task.Title))

	due := task.DueDate
	if task.IsDueToday(now) && task.Status != model.StatusCompleted {
		due = "today"
	}
	dates := fmt.Sprintf("due %s · deadline %s", due, task.Deadline)
	if task.IsPastDeadline(now) {
		lines = append(lines, styles.CardOverdue.Render(dates+" (overdue)"))
	} else {
		lines = append(lines, styles.DueDate.Render(dates))
	}

	priority := styles.Priority.Foreground(t.PriorityColor(task.Priority)).Render(priorityIcon(task.Priority) + " " + string(task.Priority))
	hours := styles.Label.Render(fmt.Sprintf(" · %dh est · %dh min", task.EstimatedTime, task.MinimumTime))
	lines = append(lines, priority+hours)

	lines = append(lines, lipgloss.NewStyle().Foreground(t.StatusColor(task.Status)).Render(string(task.Status)))

	if tags := task.TagList(); len(tags) > 0 {
		var rendered []string
		for _, tag := range tags {
			rendered = append(rendered, styles.Tag.Render(model.DisplayTag(tag)))
		}
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(strings.Join(rendered, "")))
	}

	if v.expanded[task.ID] {
		desc := task.Description
		if desc == "" {
			desc = "(no description)"
		}
		lines = append(lines, styles.Description.Width(width).Render(desc))
	}

	card := styles.Card
	if selected {
		card = styles.CardSelected
	}
	return card.Width(width).Render(strings.Join(lines, "\n"))
}

func priorityIcon(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "▲"
	case model.PriorityMedium:
		return "●"
	case model.PriorityLow:
		return "▽"
	}
	return "?"
}

// renderStatusSelector renders the status popup
func (v BoardView) renderStatusSelector() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	task, _ := v.Selected()
	lines := []string{styles.PanelTitle.Render(fmt.Sprintf("Set status of '%s':", task.Title))}
	for i, s := range model.Statuses() {
		style := lipgloss.NewStyle().Foreground(t.StatusColor(s))
		marker := "  "
		if i == v.statusCursor {
			style = style.Background(t.Highlight).Bold(true)
			marker = "> "
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%d %s", marker, i+1, s)))
	}
	lines = append(lines, styles.HelpDesc.Render("j/k: choose • enter: set • esc: cancel"))

	return styles.InputFocused.Render(strings.Join(lines, "\n"))
}
