package transfer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory defines categories of errors during an ingress run
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// ErrorCategoryInput is a rejected interactive answer; the query is skipped
	ErrorCategoryInput
	// ErrorCategoryQuery is a failed report query; the session ends
	ErrorCategoryQuery
	// ErrorCategoryLoad is a failed load statement; the run aborts
	ErrorCategoryLoad
	// ErrorCategoryInitialization covers unreadable files and schema setup
	ErrorCategoryInitialization
	// ErrorCategoryConnection covers opening or validating the target database
	ErrorCategoryConnection
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryInput:
		return "Input"
	case ErrorCategoryQuery:
		return "Query"
	case ErrorCategoryLoad:
		return "Load"
	case ErrorCategoryInitialization:
		return "Initialization"
	case ErrorCategoryConnection:
		return "Connection"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// Fatal reports whether errors of this category end the program
func (ec ErrorCategory) Fatal() bool {
	return ec >= ErrorCategoryLoad
}

// PhaseError is an error raised by one step of the run
type PhaseError struct {
	Category ErrorCategory
	Phase    string // Step that failed (e.g. "housing", "migrate")
	RowID    string // guid being written, if any
	Err      error
}

// NewPhaseError creates a PhaseError
func NewPhaseError(category ErrorCategory, phase string, err error) *PhaseError {
	return &PhaseError{Category: category, Phase: phase, Err: err}
}

// WithRow adds row information to the error
func (e *PhaseError) WithRow(rowID string) *PhaseError {
	e.RowID = rowID
	return e
}

// Error returns a formatted error message
func (e *PhaseError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Phase)
	if e.RowID != "" {
		sb.WriteString(fmt.Sprintf(" (guid %s)", e.RowID))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error
func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error ends the program
func (e *PhaseError) Fatal() bool {
	return e.Category.Fatal()
}

// CategoryOf returns the category of err. Errors that carry none are
// treated as initialization failures.
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorCategoryInitialization
}
