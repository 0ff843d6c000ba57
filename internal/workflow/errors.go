package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientStock the adjustment would take on-hand below zero
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDocumentLocked the document is in its terminal state and read-only
	ErrDocumentLocked = errors.New("document is locked")
	// ErrNumberConflict number generation kept colliding after retries
	ErrNumberConflict = errors.New("document number conflict")
	// ErrProductNotFound referenced product does not exist
	ErrProductNotFound = errors.New("product not found")
)

// GuardError is a failed transition guard. Recoverable: nothing was
// mutated, the reason names the unmet condition for the user.
type GuardError struct {
	Reason string
}

func (e *GuardError) Error() string {
	return e.Reason
}

// IsGuardError reports whether err is (or wraps) a guard failure
func IsGuardError(err error) bool {
	var ge *GuardError
	return errors.As(err, &ge)
}

// ValidationError is rejected document input, e.g. a packed quantity
// exceeding the picked quantity submitted directly via the API.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is (or wraps) rejected input
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransitionError is a target status not reachable from the current one
type TransitionError struct {
	Kind string
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s status cannot change from %s to %s", e.Kind, e.From, e.To)
}

// IsTransitionError reports whether err is (or wraps) an illegal transition
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
