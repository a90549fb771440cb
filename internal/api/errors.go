package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is matched by 401 and 403 responses.
var ErrUnauthorized = errors.New("not authorized")

// ErrNotFound is matched by 404 responses.
var ErrNotFound = errors.New("not found")

// Error is a non-2xx response. Message carries the server-provided message
// when the body had one.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Status)
}

// Is lets errors.Is match status classes.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// ServerMessage returns the server message carried by err, or err.Error().
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
