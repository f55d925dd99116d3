package cloudinary

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is a failed provider call. StatusCode is inferred from the
// provider's message since the SDK does not surface the HTTP status.
type Error struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("cloudinary %s failed with status %d", e.Operation, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int { return e.StatusCode }

func providerError(op string, err error, message string) error {
	switch {
	case err == nil && message == "":
		return nil
	case err != nil:
		return &Error{Operation: op, StatusCode: http.StatusBadGateway, Message: err.Error(), Err: err}
	default:
		return &Error{Operation: op, StatusCode: statusFromMessage(message), Message: message}
	}
}

func statusFromMessage(message string) int {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "not found"), strings.Contains(m, "can't find"), strings.Contains(m, "cannot find"):
		return http.StatusNotFound
	case strings.Contains(m, "already exists"):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
