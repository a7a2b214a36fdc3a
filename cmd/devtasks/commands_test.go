package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dori/devtasks/internal/config"
	"github.com/dori/devtasks/internal/db"
	"github.com/dori/devtasks/internal/model"
	"github.com/dori/devtasks/internal/notify"
	"github.com/dori/devtasks/internal/logging"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testStore(t *testing.T) *db.DB {
	t.Helper()

	dir := t.TempDir()
	store, _, closeStore, err := openStore(&config.Config{
		DataDir:  dir,
		DBPath:   filepath.Join(dir, "devtasks.db"),
		LogLevel: "info",
	})
	require.NoError(t, err)
	t.Cleanup(closeStore)
	return store
}

func addTask(t *testing.T, store *db.DB, in model.TaskInput) {
	t.Helper()
	require.NoError(t, runAdd(&bytes.Buffer{}, store, in, fixedNow))
}

func TestRunAdd_DefaultsDatesToToday(t *testing.T) {
	store := testStore(t)

	var out bytes.Buffer
	err := runAdd(&out, store, model.TaskInput{
		Title: "Write spec", Priority: "high", Status: "not started",
		EstimatedTime: "4", MinimumTime: "2",
	}, fixedNow)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Created #1: Write spec")

	task, err := store.GetTask(1)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", task.DueDate)
	assert.Equal(t, "2024-03-01", task.Deadline)
	assert.Equal(t, model.PriorityHigh, task.Priority)
}

func TestRunAdd_ValidationError(t *testing.T) {
	store := testStore(t)

	err := runAdd(&bytes.Buffer{}, store, model.TaskInput{
		Title: "Write spec", Priority: "Medium", Status: "Not Started",
	}, fixedNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estimated time, minimum time")
}

func TestRunList_GroupsByStatus(t *testing.T) {
	store := testStore(t)
	addTask(t, store, model.TaskInput{Title: "Write spec", Deadline: "2024-02-01", Priority: "High",
		Status: "Not Started", Tags: "docs", EstimatedTime: "4", MinimumTime: "2"})
	addTask(t, store, model.TaskInput{Title: "Ship it", Priority: "Low",
		Status: "Completed", EstimatedTime: "1", MinimumTime: "1", Description: "tag and push"})

	var out bytes.Buffer
	require.NoError(t, runList(&out, store, fixedNow))

	text := out.String()
	assert.Contains(t, text, "Not Started (1)")
	assert.Contains(t, text, "In Progress (0)")
	assert.Contains(t, text, "Completed (1)")
	assert.Contains(t, text, "deadline 2024-02-01 (overdue)")
	assert.Contains(t, text, "#docs")
	assert.Contains(t, text, "tag and push")
	assert.NotContains(t, text, "Unknown status")
	assert.Less(t, strings.Index(text, "Write spec"), strings.Index(text, "Ship it"))
}

func TestPrintBoard_UnknownGroup(t *testing.T) {
	var out bytes.Buffer
	printBoard(&out, []model.Task{{ID: 7, Title: "Legacy", Status: model.Status("Blocked")}}, fixedNow)

	assert.Contains(t, out.String(), "Unknown status (1)")
	assert.Contains(t, out.String(), `(status "Blocked")`)
}

func TestRunSearch(t *testing.T) {
	store := testStore(t)
	addTask(t, store, model.TaskInput{Title: "Refactor Module", Priority: "Low",
		Status: "In Progress", EstimatedTime: "1", MinimumTime: "1"})

	var out bytes.Buffer
	require.NoError(t, runSearch(&out, store, "refactor", fixedNow))
	assert.Contains(t, out.String(), "Refactor Module")

	out.Reset()
	require.NoError(t, runSearch(&out, store, "nothing", fixedNow))
	assert.Equal(t, "No tasks match \"nothing\"\n", out.String())
}

func TestRunStatus(t *testing.T) {
	store := testStore(t)
	addTask(t, store, model.TaskInput{Title: "Write spec", Priority: "Low",
		Status: "Not Started", EstimatedTime: "1", MinimumTime: "1"})
	notifier := notify.NewNotifier(false)
	logger := logging.Discard()

	var out bytes.Buffer
	require.NoError(t, runStatus(&out, store, notifier, logger, 1, "completed"))
	assert.Contains(t, out.String(), "Not Started → Completed")

	task, err := store.GetTask(1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, task.Status)

	err = runStatus(&out, store, notifier, logger, 1, "Blocked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")

	err = runStatus(&out, store, notifier, logger, 42, "Completed")
	require.Error(t, err)
	assert.Equal(t, "task #42 not found", err.Error())
}

type failingNotifier struct{ calls int }

func (n *failingNotifier) SendTaskCompleted(string) error {
	n.calls++
	return errors.New("notify-send: executable file not found")
}

func TestRunStatus_NotificationFailureIsLogged(t *testing.T) {
	store := testStore(t)
	addTask(t, store, model.TaskInput{Title: "Write spec", Priority: "Low",
		Status: "In Progress", EstimatedTime: "1", MinimumTime: "1"})

	var logs bytes.Buffer
	notifier := &failingNotifier{}

	var out bytes.Buffer
	require.NoError(t, runStatus(&out, store, notifier, logging.New(&logs, "debug"), 1, "Completed"))
	assert.Contains(t, out.String(), "In Progress → Completed")
	assert.Equal(t, 1, notifier.calls)
	assert.Contains(t, logs.String(), "completion notification failed")
	assert.Contains(t, logs.String(), "executable file not found")

	// Already completed: no second notification
	require.NoError(t, runStatus(&out, store, notifier, logging.New(&logs, "debug"), 1, "Completed"))
	assert.Equal(t, 1, notifier.calls)
}

func TestRunDelete(t *testing.T) {
	store := testStore(t)
	addTask(t, store, model.TaskInput{Title: "Write spec", Priority: "Low",
		Status: "Not Started", EstimatedTime: "1", MinimumTime: "1"})

	var out bytes.Buffer
	require.NoError(t, runDelete(strings.NewReader("n\n"), &out, store, 1, false))
	assert.Contains(t, out.String(), "Cancelled")
	_, err := store.GetTask(1)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, runDelete(strings.NewReader("y\n"), &out, store, 1, false))
	assert.Contains(t, out.String(), "Deleted #1: Write spec")
	_, err = store.GetTask(1)
	assert.ErrorIs(t, err, db.ErrTaskNotFound)

	err = runDelete(strings.NewReader(""), &out, store, 1, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunExport(t *testing.T) {
	store := testStore(t)
	addTask(t, store, model.TaskInput{Title: "Write spec", Priority: "Low",
		Status: "Not Started", EstimatedTime: "1", MinimumTime: "1"})

	var out bytes.Buffer
	require.NoError(t, runExport(&out, store, t.TempDir(), "-", fixedNow))
	assert.Contains(t, out.String(), "title: Write spec")

	dir := t.TempDir()
	out.Reset()
	require.NoError(t, runExport(&out, store, dir, "", fixedNow))
	assert.Contains(t, out.String(), "Exported 1 tasks")
	_, err := os.Stat(filepath.Join(dir, "devtasks-export-20240301-100000.yaml"))
	assert.NoError(t, err)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("YES\n"), &out, "? "))
	assert.False(t, confirm(strings.NewReader("\n"), &out, "? "))
	assert.False(t, confirm(strings.NewReader(""), &out, "? "))
	assert.Equal(t, "? ? ? ", out.String())
}
