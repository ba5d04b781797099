package domain

import (
	"errors"
	"fmt"
)

// ErrNoData reports that valid input produced no storms to display.
// It is a reported state, not a failure: callers turn it into an empty view.
var ErrNoData = errors.New("no storm data")

// ErrNotModified is returned by a dataset source whose content has not
// changed since its previous successful fetch.
var ErrNotModified = errors.New("dataset not modified")

// ParseError reports tabular input that cannot be turned into records.
type ParseError struct {
	Line   int // 1-based source line, 0 when the error is not tied to a line
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error on line %d: %s", e.Line, e.Reason)
	}
	return "parse error: " + e.Reason
}

// ValidationError reports user input rejected before any data access.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// PredictionFailure carries a message suitable for display when the model
// service reports a non-success status, returns a malformed payload, or
// cannot be reached.
type PredictionFailure struct {
	Message string
	Err     error
}

func (e *PredictionFailure) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("prediction failed: %s: %v", e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("prediction failed: %v", e.Err)
	default:
		return "prediction failed: " + e.Message
	}
}

func (e *PredictionFailure) Unwrap() error { return e.Err }
