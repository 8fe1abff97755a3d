package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrEmptyExport       = errors.New("nothing to export")
	ErrProjectExists     = errors.New("project already exists")
)

// ValidationError reports a malformed or missing field on create/update.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NotFoundError is returned when an id does not exist or belongs to another user.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError; errors.Is(err, ErrNotFound) holds.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidTransitionError is raised by the milestone state machine.
type InvalidTransitionError struct {
	From MilestoneStatus
	To   MilestoneStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("invalid transition: milestone is %s and cannot advance", e.From)
	}
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// EmptyExportError is returned when an export selects zero rows.
type EmptyExportError struct {
	Filtered bool
}

func (e *EmptyExportError) Error() string {
	if e.Filtered {
		return "nothing to export: no expenses match the current filters"
	}
	return "nothing to export: no expenses recorded"
}

func (e *EmptyExportError) Unwrap() error { return ErrEmptyExport }
