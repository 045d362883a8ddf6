package model

import "errors"

// ErrNotFound is returned by services when the provider reports that the
// requested resource does not exist.
var ErrNotFound = errors.New("resource not found")

// UpstreamFailureError is returned when the provider returned 2xx but
// explicitly signaled failure in its envelope, on an endpoint where that
// cannot be degraded to an empty result.
type UpstreamFailureError struct {
	Message string
}

func (e *UpstreamFailureError) Error() string {
	if e.Message == "" {
		return "upstream provider signaled failure"
	}
	return "upstream provider signaled failure: " + e.Message
}

// ShapeMismatchError is returned when a 2xx response was missing the payload
// a write endpoint requires. Fabricating a success body for a booking write
// would hide a failed mutation.
type ShapeMismatchError struct {
	Expected string
}

func (e *ShapeMismatchError) Error() string {
	return "upstream response missing expected payload: " + e.Expected
}
