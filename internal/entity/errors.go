package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the distribution run error taxonomy (spec §7).
var (
	// ErrSnapshotUnavailable wraps SnapshotUnavailableError; use
	// errors.Is against this sentinel when the concrete record details
	// are not needed.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")

	// ErrInvariantViolation wraps InvariantViolationError.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrPersistenceFailure wraps PersistenceFailureError.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// SnapshotUnavailableError means the core could not obtain a consistent
// read of studies or doctors. Fatal: the run aborts before any mutation.
type SnapshotUnavailableError struct {
	Reason string
}

func (e *SnapshotUnavailableError) Error() string {
	return fmt.Sprintf("snapshot unavailable: %s", e.Reason)
}

func (e *SnapshotUnavailableError) Unwrap() error {
	return ErrSnapshotUnavailable
}

// InvariantViolationError means an internal assertion failed (e.g. a
// commit that would break I1). Should never occur in a correct build;
// treat any occurrence as a bug, not a recoverable condition.
type InvariantViolationError struct {
	Invariant string // e.g. "I1"
	Detail    string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation %s: %s", e.Invariant, e.Detail)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}

// PersistenceFailureError means one or more assignment writes failed
// after retries. Non-fatal: the caller still receives a ResultEnvelope
// with Degraded set and Unpersisted populated; this error type exists so
// the writer's return value can be inspected directly where needed.
type PersistenceFailureError struct {
	FailedStudyIDs []int
	Cause          error
}

func (e *PersistenceFailureError) Error() string {
	return fmt.Sprintf("persistence failure for %d assignment(s): %v", len(e.FailedStudyIDs), e.Cause)
}

func (e *PersistenceFailureError) Unwrap() error {
	return ErrPersistenceFailure
}
