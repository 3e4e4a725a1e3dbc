package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a fault detected while processing a mutation.
//
// Runtime errors include:
//   - Unknown sketch: mutation targets a sketch the store has no row for
//   - Missing ref: constraint update/removal names an unknown constraint
//   - Solve failure: extraction or constraint binding failed, so the
//     sketch was marked invalid
//   - Bad mutation: the mutation itself is malformed
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SketchID identifies the affected sketch.
	SketchID string

	// Revision is the revision at which the fault was detected, when one
	// was assigned.
	Revision int64
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownSketch indicates the target sketch does not exist.
	ErrCodeUnknownSketch RuntimeErrorCode = "UNKNOWN_SKETCH"

	// ErrCodeMissingConstraint indicates an update/remove named a
	// constraint the sketch does not have.
	ErrCodeMissingConstraint RuntimeErrorCode = "MISSING_CONSTRAINT"

	// ErrCodeSolveFailed indicates the solve cycle could not run; the
	// sketch has been marked invalid with the underlying reason.
	ErrCodeSolveFailed RuntimeErrorCode = "SOLVE_FAILED"

	// ErrCodeBadMutation indicates a structurally invalid mutation.
	ErrCodeBadMutation RuntimeErrorCode = "BAD_MUTATION"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.SketchID != "" {
		return fmt.Sprintf("%s: %s (sketch=%s)", e.Code, e.Message, e.SketchID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownSketch reports whether err is an unknown-sketch error.
// Uses errors.As to handle wrapped errors.
func IsUnknownSketch(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeUnknownSketch
}

// IsSolveFailed reports whether err is a solve-failure error.
func IsSolveFailed(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeSolveFailed
}
