package upstream

import (
	"errors"
	"fmt"
)

// ConfigError indicates missing or invalid client configuration (no API
// key). It is fatal: retrying cannot help.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("upstream not configured: missing %s", e.Field)
}

// RateLimitError is returned after a 429 survived the automatic retry.
type RateLimitError struct {
	URL string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by upstream: %s", e.URL)
}

// NotFoundError indicates the entity does not exist upstream. Callers map
// this to a 404 instead of a generic failure.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found upstream: %s", e.URL)
}

// UpstreamError carries a non-2xx status other than 404/429.
type UpstreamError struct {
	URL    string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.URL)
}

// TransportError wraps network-level failures (timeout, DNS, reset).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PartialError signals that pagination stopped early. Records accumulated
// before the failure are still returned; callers decide whether partial
// data is acceptable.
type PartialError struct {
	Pages int
	Err   error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("pagination stopped after %d page(s): %v", e.Pages, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// IsRetryable reports whether the failure is worth retrying later, as
// opposed to a permanent configuration or not-found condition.
func IsRetryable(err error) bool {
	var rateErr *RateLimitError
	var transportErr *TransportError
	var upstreamErr *UpstreamError
	switch {
	case errors.As(err, &rateErr), errors.As(err, &transportErr):
		return true
	case errors.As(err, &upstreamErr):
		return upstreamErr.Status >= 500
	}
	return false
}
