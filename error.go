package framez

import (
	"fmt"
	"strings"
	"time"
)

// ShapeError reports a batch whose columns do not match the stream's schema.
// Column comparison is order-sensitive. A ShapeError is surfaced synchronously
// from Emit, before any accumulator state is touched.
type ShapeError struct {
	// Want is the column list declared by the stream's schema.
	Want []string

	// Got is the column list carried by the offending batch.
	Got []string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch: expected columns [%s], got [%s]",
		strings.Join(e.Want, ", "), strings.Join(e.Got, ", "))
}

// UnknownColumnError reports a lookup of a column name that does not exist
// in the schema.
type UnknownColumnError struct {
	// Column is the name that failed to resolve.
	Column string

	// Columns is the set of known column names.
	Columns []string
}

// Error implements the error interface.
func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q (known columns: [%s])",
		e.Column, strings.Join(e.Columns, ", "))
}

// StepError represents an error raised by an accumulator step while folding
// one item. It captures the item that caused the failure and the stream it
// occurred on, enabling better debugging when errors propagate back out of
// an Emit call through several derived streams.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type StepError[T any] struct {
	// Item is the original item that caused the step to fail.
	Item T

	// Err is the underlying error raised by the step function.
	Err error

	// StreamName identifies which derived stream generated the error.
	StreamName string

	// Timestamp records when the error occurred.
	Timestamp time.Time
}

// NewStepError creates a new StepError with the current timestamp.
func NewStepError[T any](item T, err error, streamName string) *StepError[T] {
	return &StepError[T]{
		Item:       item,
		Err:        err,
		StreamName: streamName,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (se *StepError[T]) Error() string {
	return fmt.Sprintf("StepError[%s]: %v", se.StreamName, se.Err)
}

// Unwrap returns the underlying error, enabling error wrapping chains.
func (se *StepError[T]) Unwrap() error {
	return se.Err
}
