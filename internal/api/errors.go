package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("rejected by server")
	ErrTransport    = errors.New("transport failure")
)

// Error is a non-2xx response. Message is what the server wants shown to
// the user.
type Error struct {
	Status  int    `json:"status"`
	Reason  string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Reason, e.Message)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest ||
			e.Status == http.StatusConflict ||
			e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrTransport) {
		return "Could not reach the server."
	}
	return err.Error()
}
