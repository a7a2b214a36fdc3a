package model

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TaskInput holds the raw values of the add-task form before validation
type TaskInput struct {
	Title         string
	Description   string
	DueDate       string
	Deadline      string
	Priority      string
	Status        string
	Tags          string
	EstimatedTime string
	MinimumTime   string
}

// ValidationError describes why a TaskInput was rejected
type ValidationError struct {
	Missing  []string // Required fields left empty, in form order
	Problems []string // Fields that are present but malformed
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "Please fill in all required fields: "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Problems...)
	return strings.Join(parts, "; ")
}

// taskFields is the trimmed form input with its validation rules. The
// label tag names each field in error messages.
type taskFields struct {
	Title         string `label:"title" validate:"required"`
	DueDate       string `label:"due date" validate:"required,datetime=2006-01-02"`
	Deadline      string `label:"deadline" validate:"required,datetime=2006-01-02"`
	Priority      string `label:"priority" validate:"required,priority"`
	Status        string `label:"status" validate:"required,status"`
	EstimatedTime string `label:"estimated time" validate:"required,hours"`
	MinimumTime   string `label:"minimum time" validate:"required,hours"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("label")
	})

	rules := map[string]validator.Func{
		"priority": func(fl validator.FieldLevel) bool {
			_, ok := ParsePriority(fl.Field().String())
			return ok
		},
		"status": func(fl validator.FieldLevel) bool {
			_, ok := ParseStatus(fl.Field().String())
			return ok
		},
		"hours": func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Field().String())
			return err == nil && n > 0
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return v
}

// Validate checks the input and converts it into a Task ready to be stored.
// The returned error is always a *ValidationError.
func (in TaskInput) Validate() (Task, error) {
	fields := taskFields{
		Title:         strings.TrimSpace(in.Title),
		DueDate:       strings.TrimSpace(in.DueDate),
		Deadline:      strings.TrimSpace(in.Deadline),
		Priority:      strings.TrimSpace(in.Priority),
		Status:        strings.TrimSpace(in.Status),
		EstimatedTime: strings.TrimSpace(in.EstimatedTime),
		MinimumTime:   strings.TrimSpace(in.MinimumTime),
	}

	if err := validate.Struct(fields); err != nil {
		return Task{}, toValidationError(err)
	}

	priority, _ := ParsePriority(fields.Priority)
	status, _ := ParseStatus(fields.Status)
	estimated, _ := strconv.Atoi(fields.EstimatedTime)
	minimum, _ := strconv.Atoi(fields.MinimumTime)

	return Task{
		Title:         fields.Title,
		Description:   strings.TrimSpace(in.Description),
		DueDate:       fields.DueDate,
		Deadline:      fields.Deadline,
		Priority:      priority,
		Status:        status,
		Tags:          strings.TrimSpace(in.Tags),
		EstimatedTime: estimated,
		MinimumTime:   minimum,
	}, nil
}

// toValidationError sorts validator failures into missing and malformed
// fields, keeping struct order.
func toValidationError(err error) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Problems: []string{err.Error()}}
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			verr.Missing = append(verr.Missing, fe.Field())
			continue
		}
		verr.Problems = append(verr.Problems, problem(fe))
	}
	return verr
}

func problem(fe validator.FieldError) string {
	switch fe.Tag() {
	case "datetime":
		return fmt.Sprintf("%s %q must be YYYY-MM-DD", fe.Field(), fe.Value())
	case "priority", "status":
		return fmt.Sprintf("unknown %s %q", fe.Field(), fe.Value())
	case "hours":
		return fmt.Sprintf("%s must be a positive whole number of hours, got %q", fe.Field(), fe.Value())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
