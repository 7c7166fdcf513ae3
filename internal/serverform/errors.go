package serverform

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoMount is returned by Setup when the form has no container to render into.
	ErrNoMount = errors.New("serverform: no mount point")

	// ErrMissingElement is returned by Setup when a control is absent after rendering.
	ErrMissingElement = errors.New("serverform: missing element")

	// ErrMissingCollaborator is returned by Setup when a required service was not provided.
	ErrMissingCollaborator = errors.New("serverform: missing collaborator")
)

const unknownError = "Unknown error"

// TimeoutError is reported when the validator does not answer in time.
type TimeoutError struct {
	Candidate string
	After     time.Duration
}

func (e *TimeoutError) Error() string {
	return e.ErrorName() + ": " + e.ErrorMessage()
}

func (e *TimeoutError) ErrorName() string { return "TimeoutError" }

func (e *TimeoutError) ErrorMessage() string {
	return fmt.Sprintf("%s did not respond within %s", e.Candidate, e.After)
}

// Rejection wraps a validator failure that was not an error value.
type Rejection struct {
	Value any
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("validator rejected with %T: %v", r.Value, r.Value)
}

// namedError is implemented by failures that carry a display name,
// such as *domainutil.DomainError.
type namedError interface {
	error
	ErrorName() string
	ErrorMessage() string
}

// ErrorMessage renders a validation failure for the user: "<name>: <message>"
// for named errors, "Error: <text>" for other errors and "Unknown error" when
// the validator failed with something that is not an error.
func ErrorMessage(err error) string {
	var rej *Rejection
	if err == nil || errors.As(err, &rej) {
		return unknownError
	}
	var named namedError
	if errors.As(err, &named) {
		return named.ErrorName() + ": " + named.ErrorMessage()
	}
	return "Error: " + err.Error()
}
