// Package serror defines the error kinds the movement core recovers from
// locally. None of these are surfaced to callers of the tick entry point.
package serror

import "errors"

var (
	// ErrInvalidBody indicates a body id became invalid between query and use.
	// Queries treat this as "no hit".
	ErrInvalidBody = errors.New("stride: body id no longer valid")

	// ErrMissingCollisionShape indicates an actor was created without valid
	// half-extents and without mesh bounds.
	ErrMissingCollisionShape = errors.New("stride: actor has no collision shape")

	// ErrJobPoolFailure indicates a worker job panicked or the barrier failed.
	// The current substep is aborted and retried next tick.
	ErrJobPoolFailure = errors.New("stride: job pool failure")
)
