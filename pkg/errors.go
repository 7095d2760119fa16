package pkg

import (
	"errors"
	"fmt"
)

// Error kinds shared by every adapter.  Adapters wrap the underlying cause
// with one of these so the presentation layer can pick a message and status
// with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrDataAccess     = errors.New("data access error")
	ErrExternalAPI    = errors.New("external api error")
	ErrIngestion      = errors.New("ingestion error")
)

// StatusError is returned when the completion service answers with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("completion service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion service returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrExternalAPI }

// TransportError is returned when the completion service could not be
// reached or its response could not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "completion service unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() []error { return []error{ErrExternalAPI, e.Err} }
