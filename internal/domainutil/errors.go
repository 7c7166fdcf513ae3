package domainutil

import "errors"

// Sentinel causes carried by [DomainError.Err].
var (
	// ErrEmptyURL is returned when the candidate is blank after trimming.
	ErrEmptyURL = errors.New("domainutil: empty url")

	// ErrDuplicate is returned when the server is already registered.
	ErrDuplicate = errors.New("domainutil: server already added")

	// ErrUnresolvable is returned when the host has no A or AAAA records.
	ErrUnresolvable = errors.New("domainutil: host could not be resolved")

	// ErrNotZulip is returned when the host answers but is not a Zulip server.
	ErrNotZulip = errors.New("domainutil: not a zulip server")

	// ErrNoResolver is returned when the system resolver configuration lists no servers.
	ErrNoResolver = errors.New("domainutil: no resolver configured")
)

// DomainError is a validation failure with a short name and a human readable message.
// The name mirrors the error class shown to the user ("DomainError", "CertificateError").
type DomainError struct {
	Name    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Name + ": " + e.Message
}

// ErrorName returns the short name of the failure.
func (e *DomainError) ErrorName() string { return e.Name }

// ErrorMessage returns the message without the name prefix.
func (e *DomainError) ErrorMessage() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

func domainError(msg string, cause error) *DomainError {
	return &DomainError{Name: "DomainError", Message: msg, Err: cause}
}
