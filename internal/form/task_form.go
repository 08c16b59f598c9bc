// Package form validates user-submitted task input.
package form

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldTask is the form field carrying the task description.
const FieldTask = "task"

var validate = validator.New(validator.WithRequiredStructEnabled())

type taskInput struct {
	Task string `validate:"required"`
}

// TaskForm is the outcome of validating a submitted task. Value always holds
// the text as submitted so the form can be re-rendered.
type TaskForm struct {
	Value   string
	Cleaned string
	Errors  map[string]string
}

// Valid reports whether the form passed validation.
func (f TaskForm) Valid() bool {
	return len(f.Errors) == 0
}

// Error returns the message attached to field, or "".
func (f TaskForm) Error(field string) string {
	return f.Errors[field]
}

// Empty returns an unbound form for rendering.
func Empty() TaskForm {
	return TaskForm{}
}

// FromValues validates the task field of a parsed request body.
func FromValues(values url.Values) TaskForm {
	return ValidateTask(values.Get(FieldTask))
}

// ValidateTask trims raw and requires the result to be non-empty.
func ValidateTask(raw string) TaskForm {
	in := taskInput{Task: strings.TrimSpace(raw)}
	f := TaskForm{Value: raw}

	if err := validate.Struct(in); err != nil {
		f.Errors = map[string]string{FieldTask: messageFor(err)}
		return f
	}
	f.Cleaned = in.Task
	return f
}

func messageFor(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return "This field is required."
		}
	}
	return "Enter a valid task."
}
