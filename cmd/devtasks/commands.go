package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/devtasks/internal/app"
	"github.com/dori/devtasks/internal/board"
	"github.com/dori/devtasks/internal/config"
	"github.com/dori/devtasks/internal/db"
	"github.com/dori/devtasks/internal/export"
	"github.com/dori/devtasks/internal/logging"
	"github.com/dori/devtasks/internal/model"
	"github.com/dori/devtasks/internal/notify"
	"github.com/dori/devtasks/internal/ui"
	"github.com/dori/devtasks/internal/ui/theme"
	"github.com/fatih/color"
)

var clock = time.Now

// openStore opens the database without taking the board lock, so quick
// commands work while the board is running
func openStore(cfg *config.Config) (*db.DB, *slog.Logger, func(), error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger, logFile, err := logging.OpenFile(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		logFile.Close()
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return store, logger, func() {
		store.Close()
		logFile.Close()
	}, nil
}

type completionNotifier interface {
	SendTaskCompleted(title string) error
}

func notifierFor(cfg *config.Config) *notify.Notifier {
	return notify.NewNotifier(cfg.Notify)
}

func runTUI(cfg *config.Config, themeName string) error {
	if themeName == "" {
		themeName = cfg.Theme
	}
	t, ok := theme.ByName(themeName)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", themeName, themeNames())
	}
	theme.SetTheme(t)

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}

func themeNames() string {
	var names []string
	for _, t := range theme.Available() {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func runAdd(w io.Writer, store *db.DB, in model.TaskInput, now time.Time) error {
	today := now.Format(model.DateLayout)
	if in.DueDate == "" {
		in.DueDate = today
	}
	if in.Deadline == "" {
		in.Deadline = today
	}

	task, err := store.CreateTask(in)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Created #%d: %s\n", task.ID, task.Title)
	fmt.Fprintf(w, "Status: %s, Priority: %s, Due: %s, Deadline: %s\n",
		task.Status, task.Priority, task.DueDate, task.Deadline)
	return nil
}

func runList(w io.Writer, store *db.DB, now time.Time) error {
	tasks, err := store.ListTasks()
	if err != nil {
		return err
	}
	printBoard(w, tasks, now)
	return nil
}

func runSearch(w io.Writer, store *db.DB, term string, now time.Time) error {
	tasks, err := store.SearchTasks(term)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintf(w, "No tasks match %q\n", term)
		return nil
	}
	printBoard(w, tasks, now)
	return nil
}

func runStatus(w io.Writer, store *db.DB, notifier completionNotifier, logger *slog.Logger, id int64, raw string) error {
	status, ok := model.ParseStatus(raw)
	if !ok {
		return fmt.Errorf("unknown status %q (want one of: %s)", raw, statusNames())
	}

	task, err := store.GetTask(id)
	if err != nil {
		return describe(id, err)
	}
	if err := store.UpdateTaskStatus(id, status); err != nil {
		return describe(id, err)
	}

	fmt.Fprintf(w, "#%d %s: %s → %s\n", task.ID, task.Title, task.Status, status)
	if status == model.StatusCompleted && task.Status != model.StatusCompleted {
		if err := notifier.SendTaskCompleted(task.Title); err != nil {
			logger.Warn("completion notification failed", "id", task.ID, "err", err)
		}
	}
	return nil
}

func runDelete(r io.Reader, w io.Writer, store *db.DB, id int64, yes bool) error {
	task, err := store.GetTask(id)
	if err != nil {
		return describe(id, err)
	}

	if !yes && !confirm(r, w, fmt.Sprintf("Delete #%d '%s'? [y/N] ", task.ID, task.Title)) {
		fmt.Fprintln(w, "Cancelled")
		return nil
	}

	if err := store.DeleteTask(id); err != nil {
		return describe(id, err)
	}
	fmt.Fprintf(w, "Deleted #%d: %s\n", task.ID, task.Title)
	return nil
}

func runExport(w io.Writer, store *db.DB, dataDir, path string, now time.Time) error {
	tasks, err := store.ListTasks()
	if err != nil {
		return err
	}

	if path == "-" {
		return export.Write(w, tasks, now)
	}
	if path == "" {
		path = filepath.Join(dataDir, export.FileName(now))
	}
	if err := export.WriteFile(path, tasks, now); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %d tasks to %s\n", len(tasks), path)
	return nil
}

// confirm asks prompt and reports whether the answer starts with y
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, prompt)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func describe(id int64, err error) error {
	if errors.Is(err, db.ErrTaskNotFound) {
		return fmt.Errorf("task #%d not found", id)
	}
	return err
}

func statusNames() string {
	var names []string
	for _, s := range model.Statuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

var (
	headerColors = [board.NumColumns]*color.Color{
		color.New(color.FgYellow, color.Bold),
		color.New(color.FgCyan, color.Bold),
		color.New(color.FgGreen, color.Bold),
	}
	unknownColor  = color.New(color.FgMagenta, color.Bold)
	overdueColor  = color.New(color.FgRed)
	idColor       = color.New(color.Faint)
	priorityColor = map[model.Priority]*color.Color{
		model.PriorityHigh:   color.New(color.FgRed),
		model.PriorityMedium: color.New(color.FgYellow),
		model.PriorityLow:    color.New(color.FgGreen),
	}
)

// printBoard writes the tasks grouped by status, followed by any tasks
// whose status is not one of the columns
func printBoard(w io.Writer, tasks []model.Task, now time.Time) {
	b := board.Project(tasks)

	for i, status := range model.Statuses() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		headerColors[i].Fprintf(w, "%s (%d)\n", status, len(b.Columns[i]))
		for _, task := range b.Columns[i] {
			printTask(w, task, now)
		}
	}

	if len(b.Unknown) > 0 {
		fmt.Fprintln(w)
		unknownColor.Fprintf(w, "Unknown status (%d)\n", len(b.Unknown))
		for _, task := range b.Unknown {
			printTask(w, task, now)
		}
	}
}

func printTask(w io.Writer, task model.Task, now time.Time) {
	idColor.Fprintf(w, "  #%-4d", task.ID)
	fmt.Fprintf(w, " %s", task.Title)

	if c, ok := priorityColor[task.Priority]; ok {
		c.Fprintf(w, "  [%s]", task.Priority)
	} else {
		fmt.Fprintf(w, "  [%s]", task.Priority)
	}

	fmt.Fprintf(w, "  due %s", task.DueDate)
	if task.IsPastDeadline(now) {
		overdueColor.Fprintf(w, "  deadline %s (overdue)", task.Deadline)
	} else {
		fmt.Fprintf(w, "  deadline %s", task.Deadline)
	}
	fmt.Fprintf(w, "  %dh est/%dh min", task.EstimatedTime, task.MinimumTime)

	if tags := task.TagList(); len(tags) > 0 {
		var shown []string
		for _, tag := range tags {
			shown = append(shown, model.DisplayTag(tag))
		}
		fmt.Fprintf(w, "  %s", strings.Join(shown, " "))
	}
	if task.Status.Index() < 0 {
		fmt.Fprintf(w, "  (status %q)", string(task.Status))
	}
	fmt.Fprintln(w)

	if task.Description != "" {
		fmt.Fprintf(w, "        %s\n", task.Description)
	}
}
