package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool

	// run executes notify-send; replaced in tests
	run func(name string, args ...string) error
}

// NewNotifier creates a new notifier
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}
	return n.run("notify-send", buildArgs(notification)...)
}

func buildArgs(notification Notification) []string {
	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Timeout in milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "devtasks")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}
	return args
}

// SendTaskCompleted announces that a task was moved to Completed
func (n *Notifier) SendTaskCompleted(taskTitle string) error {
	return n.Send(Notification{
		Title:   "Task completed",
		Body:    taskTitle,
		Urgency: UrgencyLow,
		Timeout: 5 * time.Second,
		Icon:    "emblem-ok-symbolic",
	})
}

// SendDeadlineReminder reports how many open tasks are past their deadline
func (n *Notifier) SendDeadlineReminder(overdue int) error {
	if overdue <= 0 {
		return nil
	}

	body := "1 open task is past its deadline"
	if overdue > 1 {
		body = fmt.Sprintf("%d open tasks are past their deadline", overdue)
	}

	return n.Send(Notification{
		Title:   "Deadlines missed",
		Body:    body,
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}
