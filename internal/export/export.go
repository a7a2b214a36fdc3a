// Package export writes the board as a YAML document.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dori/devtasks/internal/board"
	"github.com/dori/devtasks/internal/model"
	"gopkg.in/yaml.v3"
)

// Document is the exported board
type Document struct {
	ExportedAt time.Time    `yaml:"exported_at"`
	Total      int          `yaml:"total"`
	NotStarted []model.Task `yaml:"not_started"`
	InProgress []model.Task `yaml:"in_progress"`
	Completed  []model.Task `yaml:"completed"`
	Unknown    []model.Task `yaml:"unknown,omitempty"`
}

// NewDocument groups tasks by status
func NewDocument(tasks []model.Task, now time.Time) Document {
	b := board.Project(tasks)
	return Document{
		ExportedAt: now,
		Total:      len(tasks),
		NotStarted: nonNil(b.Column(model.StatusNotStarted)),
		InProgress: nonNil(b.Column(model.StatusInProgress)),
		Completed:  nonNil(b.Column(model.StatusCompleted)),
		Unknown:    b.Unknown,
	}
}

// nonNil keeps empty columns as [] rather than null in the output
func nonNil(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}

// Write encodes tasks as YAML to w
func Write(w io.Writer, tasks []model.Task, now time.Time) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(tasks, now)); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the YAML export to path, creating parent directories
func WriteFile(path string, tasks []model.Task, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(f, tasks, now); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FileName returns the default export file name for the given time
func FileName(now time.Time) string {
	return fmt.Sprintf("devtasks-export-%s.yaml", now.Format("20060102-150405"))
}
