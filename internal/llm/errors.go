package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrInferenceUnavailable is returned by the Gateway when no completion
// session is bound, i.e. provisioning left the system in degraded mode.
var ErrInferenceUnavailable = errors.New("inference unavailable: no completion session initialized")

// ErrInferenceFailure indicates the backend reported a failure or returned
// an empty or unusable payload.
type ErrInferenceFailure struct {
	Message string
	Err     error
}

func (e *ErrInferenceFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inference failure: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("inference failure: %s", e.Message)
}

func (e *ErrInferenceFailure) Unwrap() error { return e.Err }

// ErrRateLimit indicates the backend returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }
