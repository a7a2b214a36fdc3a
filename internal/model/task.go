package model

import (
	"strings"
	"time"
)

// DateLayout is the storage format for due dates and deadlines
const DateLayout = "2006-01-02"

// Status represents the column a task is shown in
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses returns the known statuses in column order
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusCompleted}
}

// Index returns the column index of the status, or -1 if it is not known
func (s Status) Index() int {
	for i, known := range Statuses() {
		if s == known {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is one of the three known statuses
func (s Status) IsValid() bool {
	return s.Index() >= 0
}

// ParseStatus matches s against the known statuses ignoring case and
// surrounding whitespace
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, known := range Statuses() {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities returns the known priorities from lowest to highest
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority matches s against the known priorities ignoring case
func ParsePriority(s string) (Priority, bool) {
	s = strings.TrimSpace(s)
	for _, known := range Priorities() {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Task represents a unit of work on the board
type Task struct {
	ID            int64     `json:"id" yaml:"id"`
	UID           string    `json:"uid" yaml:"uid"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	DueDate       string    `json:"due_date" yaml:"due_date"`
	Deadline      string    `json:"deadline" yaml:"deadline"`
	Priority      Priority  `json:"priority" yaml:"priority"`
	Status        Status    `json:"status" yaml:"status"`
	Tags          string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	EstimatedTime int       `json:"estimated_time" yaml:"estimated_time"` // Hours
	MinimumTime   int       `json:"minimum_time" yaml:"minimum_time"`     // Hours
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// TagList splits the comma separated tags, dropping empty entries
func (t *Task) TagList() []string {
	return ParseTags(t.Tags)
}

// IsPastDeadline returns true if the task is not completed and its deadline
// is before the given day
func (t *Task) IsPastDeadline(now time.Time) bool {
	if t.Status == StatusCompleted || t.Deadline == "" {
		return false
	}
	return t.Deadline < now.Format(DateLayout)
}

// IsDueToday returns true if the task is due on the given day
func (t *Task) IsDueToday(now time.Time) bool {
	return t.DueDate == now.Format(DateLayout)
}
