package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dori/devtasks/internal/model"
	"github.com/google/uuid"
)

const taskColumns = `
	id, uid, title, description, due_date, deadline, priority, status,
	tags, estimated_time, minimum_time, created_at, updated_at`

// ListTasks returns all tasks ordered by due date. Dates are compared as
// YYYY-MM-DD strings, so lexicographic order is calendar order.
func (db *DB) ListTasks() ([]model.Task, error) {
	rows, err := db.Query(`SELECT` + taskColumns + `
		FROM tasks
		ORDER BY due_date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// SearchTasks returns tasks whose title, description or tags contain term,
// ignoring case. An empty term matches every task.
func (db *DB) SearchTasks(term string) ([]model.Task, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	rows, err := db.Query(`SELECT`+taskColumns+`
		FROM tasks
		WHERE unicode_lower(title) LIKE ? ESCAPE '\'
		   OR unicode_lower(description) LIKE ? ESCAPE '\'
		   OR unicode_lower(tags) LIKE ? ESCAPE '\'
		ORDER BY due_date, id
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("could not search tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetTask returns a single task by ID
func (db *DB) GetTask(id int64) (*model.Task, error) {
	row := db.QueryRow(`SELECT`+taskColumns+`
		FROM tasks WHERE id = ?
	`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	return t, nil
}

// CreateTask validates the form input and stores a new task
func (db *DB) CreateTask(in model.TaskInput) (*model.Task, error) {
	task, err := in.Validate()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task.UID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now

	result, err := db.Exec(`
		INSERT INTO tasks (uid, title, description, due_date, deadline, priority, status,
		                   tags, estimated_time, minimum_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.UID, task.Title, task.Description, task.DueDate, task.Deadline,
		task.Priority, task.Status, task.Tags, task.EstimatedTime, task.MinimumTime,
		now, now)
	if err != nil {
		return nil, fmt.Errorf("could not create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert id: %w", err)
	}
	task.ID = id

	return &task, nil
}

// UpdateTaskStatus moves a task to another column. Any status may follow
// any other.
func (db *DB) UpdateTaskStatus(id int64, status model.Status) error {
	if !status.IsValid() {
		return &model.ValidationError{
			Problems: []string{fmt.Sprintf("unknown status %q", status)},
		}
	}

	result, err := db.Exec(`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("could not update task status: %w", err)
	}
	return expectOneRow(result)
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(id int64) error {
	result, err := db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}
	return expectOneRow(result)
}

// Helper functions

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get affected rows: %w", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	err := s.Scan(
		&t.ID, &t.UID, &t.Title, &t.Description, &t.DueDate, &t.Deadline,
		&t.Priority, &t.Status, &t.Tags, &t.EstimatedTime, &t.MinimumTime,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
