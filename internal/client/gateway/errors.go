package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericMessage is shown when the backend gives no usable error message.
const GenericMessage = "something went wrong"

// ErrUnauthorized matches (via errors.Is) any *Error produced by a 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// Error is returned by the gateway for every failed request.
type Error struct {
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	// Message is the backend's error message or GenericMessage.
	Message string
	// Err is the underlying transport or decoding error, if any.
	Err error

	surfaced bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api error (status %d): %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether e is an unauthorized response.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Surfaced reports whether err has already been shown to the user by the gateway.
func Surfaced(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.surfaced
}

// Message returns the backend-provided message carried by err, or fallback
// when the backend did not provide one.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" && e.Message != GenericMessage {
		return e.Message
	}
	return fallback
}
