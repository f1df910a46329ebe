package gpconnect

import (
	"errors"
	"fmt"
)

// Configuration problems are detected before any remote call is attempted.
var (
	ErrNotConfigured = errors.New("gp connect integration is not configured")
	ErrSigningKey    = errors.New("gp connect signing key is missing or invalid")
)

// IsConfigurationError reports whether err means the tenant's integration
// cannot be used at all, as opposed to a call that was attempted and failed.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrSigningKey)
}

// StatusError is returned when the remote endpoint answers with a non-2xx
// status. The failed request is never retried.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("gp connect request failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("gp connect request failed with status %d", e.StatusCode)
}

// MapError marks a single resource entry that could not be mapped. Callers
// skip the entry and continue; a MapError never fails a whole sync.
type MapError struct {
	ResourceType string
	Reason       string
}

func (e *MapError) Error() string {
	return fmt.Sprintf("cannot map %s: %s", e.ResourceType, e.Reason)
}

// IsMapError reports whether err is a per-entry mapping failure.
func IsMapError(err error) bool {
	var me *MapError
	return errors.As(err, &me)
}
