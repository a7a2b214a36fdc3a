package views

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/devtasks/internal/db"
	"github.com/dori/devtasks/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// keyPress builds the KeyMsg bubbletea delivers for a key name
func keyPress(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// drain feeds every message produced by cmd back into the view
func drain(v BoardView, cmd tea.Cmd) BoardView {
	for _, msg := range collect(cmd) {
		m, next := v.Update(msg)
		v = drain(m.(BoardView), next)
	}
	return v
}

// press sends keys one at a time, running the resulting commands
func press(v BoardView, keys ...string) BoardView {
	for _, k := range keys {
		m, cmd := v.Update(keyPress(k))
		v = drain(m.(BoardView), cmd)
	}
	return v
}

// typeText sends each rune as its own key press
func typeText(v BoardView, s string) BoardView {
	for _, r := range s {
		v = press(v, string(r))
	}
	return v
}

type recordingNotifier struct {
	completed []string
}

func (n *recordingNotifier) SendTaskCompleted(title string) error {
	n.completed = append(n.completed, title)
	return nil
}

func openStore(t *testing.T) *db.DB {
	t.Helper()

	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store *db.DB, title, due string, status model.Status) *model.Task {
	t.Helper()

	task, err := store.CreateTask(model.TaskInput{
		Title:         title,
		Description:   title + " description",
		DueDate:       due,
		Deadline:      due,
		Priority:      "Medium",
		Status:        string(status),
		Tags:          "work",
		EstimatedTime: "3",
		MinimumTime:   "1",
	})
	require.NoError(t, err)
	return task
}

func newTestBoard(store TaskStore, notifier CompletionNotifier) BoardView {
	v := NewBoardView(store, notifier, nil)
	v.now = func() time.Time { return fixedNow }
	v = v.SetSize(150, 40)
	return drain(v, v.Init())
}

func columnTitles(v BoardView, col int) []string {
	var titles []string
	for _, task := range v.Board().Columns[col] {
		titles = append(titles, task.Title)
	}
	return titles
}

func TestBoardView_LoadsColumns(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Write spec", "2024-03-01", model.StatusNotStarted)
	seed(t, store, "Refactor module", "2024-03-02", model.StatusInProgress)
	seed(t, store, "Ship release", "2024-03-03", model.StatusCompleted)

	v := newTestBoard(store, nil)

	assert.Equal(t, []string{"Write spec"}, columnTitles(v, 0))
	assert.Equal(t, []string{"Refactor module"}, columnTitles(v, 1))
	assert.Equal(t, []string{"Ship release"}, columnTitles(v, 2))

	out := v.View()
	assert.Contains(t, out, "Not Started (1)")
	assert.Contains(t, out, "In Progress (1)")
	assert.Contains(t, out, "Completed (1)")
	assert.Contains(t, out, "#work")
	assert.Contains(t, out, "3h est")
	assert.Contains(t, out, "deadline 2024-03-01")
}

func TestBoardView_Navigation(t *testing.T) {
	store := openStore(t)
	seed(t, store, "First", "2024-03-01", model.StatusNotStarted)
	seed(t, store, "Second", "2024-03-02", model.StatusNotStarted)
	seed(t, store, "Third", "2024-03-03", model.StatusNotStarted)
	seed(t, store, "Doing", "2024-03-03", model.StatusInProgress)

	v := newTestBoard(store, nil)

	selected := func(v BoardView) string {
		task, ok := v.Selected()
		require.True(t, ok)
		return task.Title
	}

	assert.Equal(t, "First", selected(v))
	v = press(v, "j", "j", "j")
	assert.Equal(t, "Third", selected(v))
	v = press(v, "g")
	assert.Equal(t, "First", selected(v))
	v = press(v, "G")
	assert.Equal(t, "Third", selected(v))

	v = press(v, "l")
	assert.Equal(t, "Doing", selected(v))

	// Completed is empty
	v = press(v, "l")
	_, ok := v.Selected()
	assert.False(t, ok)

	// Each column keeps its own cursor
	v = press(v, "h", "h")
	assert.Equal(t, "Third", selected(v))
}

func TestBoardView_StatusSelectorMovesTask(t *testing.T) {
	store := openStore(t)
	task := seed(t, store, "Write spec", "2024-03-01", model.StatusNotStarted)

	v := newTestBoard(store, nil)
	v = press(v, "s")
	require.Equal(t, BoardModeStatus, v.Mode())
	assert.Contains(t, v.View(), "Set status of 'Write spec'")

	v = press(v, "j", "enter")
	assert.Equal(t, BoardModeNormal, v.Mode())
	assert.Empty(t, columnTitles(v, 0))
	assert.Equal(t, []string{"Write spec"}, columnTitles(v, 1))

	// Cursor follows the task
	selected, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, task.ID, selected.ID)

	// Any status can be chosen directly, including backwards
	v = press(v, "s", "3")
	assert.Equal(t, []string{"Write spec"}, columnTitles(v, 2))
	v = press(v, "s", "1")
	assert.Equal(t, []string{"Write spec"}, columnTitles(v, 0))

	got, err := store.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotStarted, got.Status)
}

func TestBoardView_StatusSelectorCancel(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Write spec", "2024-03-01", model.StatusNotStarted)

	v := newTestBoard(store, nil)
	v = press(v, "s", "j", "esc")
	assert.Equal(t, BoardModeNormal, v.Mode())
	assert.Equal(t, []string{"Write spec"}, columnTitles(v, 0))
}

func TestBoardView_MoveAdjacentAndNotify(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Write spec", "2024-03-01", model.StatusInProgress)
	notifier := &recordingNotifier{}

	v := newTestBoard(store, notifier)
	v = press(v, "l") // In Progress column
	v = press(v, "L")
	assert.Equal(t, []string{"Write spec"}, columnTitles(v, 2))
	assert.Equal(t, []string{"Write spec"}, notifier.completed)

	// No column to the right of Completed
	v = press(v, "L")
	assert.Equal(t, []string{"Write spec"}, columnTitles(v, 2))

	v = press(v, "H", "H")
	assert.Equal(t, []string{"Write spec"}, columnTitles(v, 0))
	assert.Len(t, notifier.completed, 1)
}

func TestBoardView_DeleteNeedsConfirmation(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Write spec", "2024-03-01", model.StatusNotStarted)
	seed(t, store, "Write spec", "2024-03-01", model.StatusNotStarted)

	v := newTestBoard(store, nil)
	v = press(v, "d")
	require.Equal(t, BoardModeConfirmDelete, v.Mode())
	assert.Contains(t, v.View(), "Delete 'Write spec'? (y/n)")

	v = press(v, "n")
	assert.Len(t, columnTitles(v, 0), 2)

	// Only the selected one of two identical tasks goes
	v = press(v, "d", "y")
	assert.Len(t, columnTitles(v, 0), 1)

	tasks, err := store.ListTasks()
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestBoardView_LiveSearch(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Refactor Module", "2024-03-01", model.StatusNotStarted)
	seed(t, store, "Write spec", "2024-03-02", model.StatusInProgress)

	v := newTestBoard(store, nil)
	v = press(v, "/")
	require.Equal(t, BoardModeSearch, v.Mode())

	v = typeText(v, "refac")
	assert.Equal(t, "refac", v.Query())
	assert.Equal(t, []string{"Refactor Module"}, columnTitles(v, 0))
	assert.Empty(t, columnTitles(v, 1))

	// Keys typed while searching are not commands
	v = typeText(v, "q")
	assert.Equal(t, BoardModeSearch, v.Mode())
	assert.Empty(t, columnTitles(v, 0))

	v = press(v, "backspace", "enter")
	assert.Equal(t, BoardModeNormal, v.Mode())
	assert.Equal(t, "refac", v.Query())
	assert.Contains(t, v.View(), `Filtered by "refac"`)

	v = press(v, "esc")
	assert.Equal(t, "", v.Query())
	assert.Len(t, columnTitles(v, 0), 1)
	assert.Len(t, columnTitles(v, 1), 1)
}

func TestBoardView_SearchKeepsSpaces(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Refactor Module", "2024-03-01", model.StatusNotStarted)
	seed(t, store, "Writespec", "2024-03-02", model.StatusInProgress)

	v := newTestBoard(store, nil)
	v = press(v, "/")
	v = typeText(v, " ")
	assert.Equal(t, " ", v.Query())
	assert.Equal(t, []string{"Refactor Module"}, columnTitles(v, 0))
	assert.Empty(t, columnTitles(v, 1))

	v = typeText(v, "module")
	assert.Equal(t, " module", v.Query())
	assert.Equal(t, []string{"Refactor Module"}, columnTitles(v, 0))
}

func TestBoardView_SearchEscClears(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Refactor Module", "2024-03-01", model.StatusNotStarted)
	seed(t, store, "Write spec", "2024-03-02", model.StatusNotStarted)

	v := newTestBoard(store, nil)
	v = press(v, "/")
	v = typeText(v, "write")
	assert.Len(t, columnTitles(v, 0), 1)

	v = press(v, "esc")
	assert.Equal(t, BoardModeNormal, v.Mode())
	assert.Equal(t, "", v.Query())
	assert.Len(t, columnTitles(v, 0), 2)
}

func TestBoardView_StaleSearchResultsIgnored(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Write spec", "2024-03-01", model.StatusNotStarted)

	v := newTestBoard(store, nil)
	m, _ := v.Update(boardLoadedMsg{query: "older"})
	v = m.(BoardView)
	assert.Len(t, columnTitles(v, 0), 1)
}

func TestBoardView_AddTask(t *testing.T) {
	store := openStore(t)
	v := newTestBoard(store, nil)

	v = press(v, "a")
	require.Equal(t, BoardModeAdd, v.Mode())
	assert.Contains(t, v.View(), "New Task")

	v = typeText(v, "Write spec")
	v = press(v, "tab")
	v = typeText(v, "Draft the doc")
	v = press(v, "tab", "tab", "tab") // due date, deadline, priority
	v = press(v, "right")             // Medium -> High
	v = press(v, "tab", "right")      // Not Started -> In Progress
	v = press(v, "tab")
	v = typeText(v, "docs, planning")
	v = press(v, "tab")
	v = typeText(v, "4")
	v = press(v, "tab")
	v = typeText(v, "2")
	v = press(v, "enter")

	assert.Equal(t, BoardModeNormal, v.Mode())
	assert.Empty(t, v.Error())
	require.Equal(t, []string{"Write spec"}, columnTitles(v, 1))

	selected, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "Write spec", selected.Title)
	assert.Equal(t, "Draft the doc", selected.Description)
	assert.Equal(t, "2024-03-01", selected.DueDate)
	assert.Equal(t, "2024-03-01", selected.Deadline)
	assert.Equal(t, model.PriorityHigh, selected.Priority)
	assert.Equal(t, model.StatusInProgress, selected.Status)
	assert.Equal(t, "docs, planning", selected.Tags)
	assert.Equal(t, 4, selected.EstimatedTime)
	assert.Equal(t, 2, selected.MinimumTime)
}

func TestBoardView_AddTaskValidationKeepsFormOpen(t *testing.T) {
	store := openStore(t)
	v := newTestBoard(store, nil)

	v = press(v, "a", "ctrl+s")
	assert.Equal(t, BoardModeAdd, v.Mode())
	out := v.View()
	assert.Contains(t, out, "Please fill in all required fields")
	assert.Contains(t, out, "title")

	tasks, err := store.ListTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)

	v = press(v, "esc")
	assert.Equal(t, BoardModeNormal, v.Mode())
}

func TestBoardView_ToggleDescription(t *testing.T) {
	store := openStore(t)
	seed(t, store, "Write spec", "2024-03-01", model.StatusNotStarted)

	v := newTestBoard(store, nil)
	assert.NotContains(t, v.View(), "Write spec description")

	v = press(v, " ")
	assert.Contains(t, v.View(), "Write spec description")

	v = press(v, " ")
	assert.NotContains(t, v.View(), "Write spec description")
}

type stubStore struct {
	tasks []model.Task
	err   error
}

func (s *stubStore) ListTasks() ([]model.Task, error) { return s.tasks, s.err }

func (s *stubStore) SearchTasks(string) ([]model.Task, error) { return s.tasks, s.err }

func (s *stubStore) CreateTask(model.TaskInput) (*model.Task, error) { return nil, s.err }

func (s *stubStore) UpdateTaskStatus(int64, model.Status) error { return s.err }

func (s *stubStore) DeleteTask(int64) error { return s.err }

func TestBoardView_StoreErrorsAreVisible(t *testing.T) {
	store := &stubStore{err: errors.New("database is locked")}

	v := newTestBoard(store, nil)
	assert.Contains(t, v.Error(), "Could not load tasks")
	assert.Contains(t, v.View(), "database is locked")
}

func TestBoardView_UpdateErrorIsVisible(t *testing.T) {
	store := &stubStore{tasks: []model.Task{
		{ID: 1, Title: "Write spec", Status: model.StatusNotStarted, Priority: model.PriorityLow},
	}}

	v := newTestBoard(store, nil)
	store.err = errors.New("disk I/O error")

	v = press(v, "L")
	assert.Contains(t, v.Error(), "Could not update status")
	assert.Contains(t, v.View(), "disk I/O error")
}

func TestBoardView_UnknownStatusIsReported(t *testing.T) {
	store := &stubStore{tasks: []model.Task{
		{ID: 1, Title: "Write spec", Status: model.StatusNotStarted},
		{ID: 2, Title: "Legacy", Status: model.Status("Blocked")},
	}}

	v := newTestBoard(store, nil)
	assert.Equal(t, 1, v.Board().Len())
	assert.Contains(t, v.View(), `1 task has an unknown status ("Blocked")`)
}
