package client

import (
	"errors"
	"fmt"
)

// RejectedError is an application-level failure: the server answered with a
// status other than "success".
type RejectedError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Message)
}

// RejectionMessage is the server-provided text meant for the user.
func (e *RejectedError) RejectionMessage() string { return e.Message }

// TransportError covers network failures and unparseable responses.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Rejection returns the server message when err is a RejectedError.
func Rejection(err error) (string, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Message, true
	}
	return "", false
}
