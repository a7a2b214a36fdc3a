package db

import "errors"

// ErrTaskNotFound is returned when no task has the requested id
var ErrTaskNotFound = errors.New("task not found")
