// Package cellerrors defines the typed error taxonomy that every other
// package in this module returns instead of ad-hoc errors, so a caller can
// branch on failure category with errors.Is/errors.As regardless of which
// stage (validator, estimator, builder, solver) produced the error.
package cellerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one category from the error taxonomy.
type Kind int

const (
	// InvalidInput covers schema or semantic violations in the problem
	// description: missing keys, bad types, a referenced id that does not
	// exist, infeasible pinned-time arithmetic, an unresolvable collision.
	InvalidInput Kind = iota
	// InvalidGeometry covers non-finite numbers or coincident points where
	// distinct points are required.
	InvalidGeometry
	// DegenerateMovement covers a zero-length movement where a nonzero one
	// is required.
	DegenerateMovement
	// MissingDurationBounds covers a movement lacking d_min/d_max with no
	// estimator fallback available.
	MissingDurationBounds
	// SolverError covers a backend that returned its generic Error status.
	SolverError
	// Infeasible covers a backend that returned Infeasible.
	Infeasible
	// Unbounded covers a backend that returned Unbounded.
	Unbounded
	// TimedOut covers a backend that stopped early on its wall-clock limit.
	TimedOut
	// Interrupted covers a backend that stopped early on a cancellation.
	Interrupted
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case InvalidGeometry:
		return "InvalidGeometry"
	case DegenerateMovement:
		return "DegenerateMovement"
	case MissingDurationBounds:
		return "MissingDurationBounds"
	case SolverError:
		return "SolverError"
	case Infeasible:
		return "Infeasible"
	case Unbounded:
		return "Unbounded"
	case TimedOut:
		return "TimedOut"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// CellError is the single concrete error type behind every category in
// the taxonomy. ActivityID is empty when the error is not about one
// specific activity (e.g. a cycle-time or solver-level failure).
type CellError struct {
	Kind       Kind
	ActivityID string
	msg        string
	cause      error
}

func (e *CellError) Error() string {
	if e.ActivityID != "" {
		return fmt.Sprintf("%s: activity %q: %s", e.Kind, e.ActivityID, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *CellError) Unwrap() error { return e.cause }

// Is reports whether target is a *CellError of the same Kind, so
// errors.Is(err, cellerrors.New(cellerrors.Infeasible, "", "")) works as
// a kind-only sentinel check.
func (e *CellError) Is(target error) bool {
	other, ok := target.(*CellError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New builds a CellError with no wrapped cause.
func New(kind Kind, activityID, msg string) error {
	return &CellError{Kind: kind, ActivityID: activityID, msg: msg}
}

// Newf builds a CellError with a formatted message.
func Newf(kind Kind, activityID, format string, args ...interface{}) error {
	return &CellError{Kind: kind, ActivityID: activityID, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and activity id to an existing error, preserving
// it as the cause for errors.Unwrap/errors.As.
func Wrap(cause error, kind Kind, activityID, msg string) error {
	if cause == nil {
		return nil
	}
	return &CellError{Kind: kind, ActivityID: activityID, msg: msg, cause: errors.WithStack(cause)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(cause error, kind Kind, activityID, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &CellError{Kind: kind, ActivityID: activityID, msg: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// Is reports whether err is a CellError of the given Kind.
func Is(err error, kind Kind) bool {
	var ce *CellError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == kind
}
