package app

import (
	"errors"
	"fmt"

	"gosshub/client/internal/guard"
)

var (
	ErrLoginRequired = errors.New("you need to log in first")
	ErrLoggedIn      = errors.New("you are already logged in")
	ErrAdminRequired = errors.New("admin access required")
	// ErrDisabled marks an optional component that is not configured.
	ErrDisabled = errors.New("component not configured")
)

// AccessError is returned when the guard denies a command. Redirect is the
// page the web client would have sent the user to.
type AccessError struct {
	Redirect string
	Err      error
}

func (e *AccessError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s (redirect to %s)", e.Err, e.Redirect)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func accessError(access guard.Access, decision guard.Decision) *AccessError {
	err := ErrLoginRequired
	switch {
	case access == guard.Unauthed:
		err = ErrLoggedIn
	case access == guard.Admin && decision.Redirect == guard.HomePath:
		err = ErrAdminRequired
	}
	return &AccessError{Redirect: decision.Redirect, Err: err}
}

func disabled(component, key string) error {
	return fmt.Errorf("%w: %s (set %s)", ErrDisabled, component, key)
}
