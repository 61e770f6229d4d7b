package auth

import (
	"errors"
	"fmt"
)

// RejectedError is a failure the API explained with a message of its own. Message may
// be empty when the body carried none.
type RejectedError struct {
	Message string
	Err     error
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "rejected by api"
	}
	return fmt.Sprintf("rejected by api: %s", e.Message)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

var (
	ErrCredentialsMismatch = errors.New("email and password do not match")
	ErrPasswordTooShort    = errors.New("password too short")
	ErrUserNotFound        = errors.New("user not found")
	ErrMissingToken        = errors.New("missing token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrNetwork             = errors.New("api unreachable")
)
