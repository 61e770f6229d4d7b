package movieapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Error is the one shape every failed API call is normalized to.
//
// Transport failures set Network and carry Err with a zero Status. Failures to build the
// request carry only Err. Non-OK responses carry Status and whatever the body said in its
// "message" and "error" keys. A body that could not be decoded carries both Status and Err.
type Error struct {
	Op      string
	Status  int
	Message string
	Reason  string
	Network bool
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Reason != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Reason)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IsNetwork reports whether the request was sent but never got a response.
func (e *Error) IsNetwork() bool {
	return e.Network
}

// MessageOf returns the server's message for err, or "" when err did not come from a
// response body.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Reason
	}
	return ""
}

func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.IsNetwork()
}
