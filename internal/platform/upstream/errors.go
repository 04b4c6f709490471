// Package upstream talks to the clinical backend and the prediction model
// service. Every failure crossing this boundary is classified into a small
// error taxonomy so callers never inspect raw transport errors.
package upstream

import (
	"errors"
	"fmt"
	"strings"
)

// Authentication failure signatures emitted by the backend in error bodies.
var authSignatures = []string{
	"Authentication failed",
	"No authentication token",
}

// ErrNoInvestigationData means a prediction was requested for a patient with
// zero monthly lab panels. The model endpoint is never called in that case.
var ErrNoInvestigationData = errors.New("no investigation data available")

// AuthError means the request was rejected for missing or invalid credentials.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

// FetchError is any non-auth failure reaching or reading an upstream service.
type FetchError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: upstream returned %d", e.Op, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError means the addressed resource does not exist upstream.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Classify wraps an arbitrary upstream failure into the taxonomy. Errors that
// already belong to it pass through unchanged; anything carrying an
// authentication signature in its message becomes an AuthError; the rest
// become FetchErrors tagged with the operation name.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	var fetchErr *FetchError
	var nfErr *NotFoundError
	if errors.As(err, &authErr) || errors.As(err, &fetchErr) || errors.As(err, &nfErr) {
		return err
	}
	if errors.Is(err, ErrNoInvestigationData) {
		return err
	}
	msg := err.Error()
	for _, sig := range authSignatures {
		if strings.Contains(msg, sig) {
			return &AuthError{Message: msg}
		}
	}
	return &FetchError{Op: op, Err: err}
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNotFound reports whether err is a missing-resource failure.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}
