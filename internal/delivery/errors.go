package delivery

import (
	"errors"
	"fmt"
)

// ErrNotFound means the API has no item matching the request. It is not a
// transport failure and pages render it as an explicit "not found" state.
var ErrNotFound = errors.New("delivery: not found")

// TransportError is any failure to get a usable answer from the API:
// network errors, authentication errors, server errors and undecodable bodies.
type TransportError struct {
	StatusCode int
	Message    string
	RequestID  string
	ErrorCode  int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("delivery: status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("delivery: status %d", e.StatusCode)
	case e.Err != nil:
		return "delivery: " + e.Err.Error()
	}
	return "delivery: transport failure"
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a not-found answer from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// apiError is the JSON error body returned by the Delivery API.
type apiError struct {
	Message      string `json:"message"`
	RequestID    string `json:"request_id"`
	ErrorCode    int    `json:"error_code"`
	SpecificCode int    `json:"specific_code"`
}
