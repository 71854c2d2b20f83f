// Package apierr classifies failures from the Synthesis and Capsule APIs.
//
// Only authentication failures abort a run. Transport, decode and not-found
// failures are collapsed to absence-of-data by the sync pipeline, so their
// types exist mainly for logging and tests.
package apierr

import (
	"errors"
	"fmt"
)

// AuthError reports a rejected login or credential. Fatal: the run must not
// proceed past it.
type AuthError struct {
	Platform string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: authentication failed", e.Platform)
	}
	return fmt.Sprintf("%s: authentication failed: %v", e.Platform, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError reports a network-level or non-2xx HTTP failure.
type TransportError struct {
	Err        error
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport failure (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that was not JSON or not the expected
// shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failure: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NotFoundError reports an empty lookup result for a specific resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found", e.Resource)
}

// IsAuth reports whether err (or any error in its chain) is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
