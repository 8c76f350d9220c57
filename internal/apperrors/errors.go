// Package apperrors defines the error taxonomy shared by services and
// handlers. "No data" is deliberately not part of it: queries with an empty
// result return nil values, never an error.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter indicates a malformed query input. Surfaced as 400
// with field-level detail.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrUnauthorized indicates missing or invalid credentials. Surfaced as 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUpstreamUnavailable indicates the transaction store could not be
// reached. Surfaced as 503 and never conflated with an empty result.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// InvalidParameterf wraps ErrInvalidParameter with the offending field name
// and a formatted detail message.
func InvalidParameterf(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, fmt.Sprintf(format, args...))
}

// Upstream wraps a store error as ErrUpstreamUnavailable, preserving the
// cause for logging.
func Upstream(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
