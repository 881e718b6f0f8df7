package parrot

import (
	"errors"
	"fmt"
)

// Expected failure classes. Callers match them with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrCapacityExceeded = errors.New("memorized-word capacity exceeded")
	ErrAlreadyImported  = errors.New("post already imported")
	ErrUnauthenticated  = errors.New("user id required")
	ErrNotFound         = errors.New("not found")
	ErrNotOwner         = errors.New("not the owner")
)

// CollaboratorError wraps a failure from storage or notification plumbing.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Collaborator wraps err as a CollaboratorError for op. Nil stays nil.
func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return err
	}
	return &CollaboratorError{Op: op, Err: err}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
