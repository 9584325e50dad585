// Package errs defines the error-kind taxonomy shared across the engine.
// Kinds are sentinel errors wrapped with context via
// fmt.Errorf("...: %w", ...) rather than a hierarchy of error types.
package errs

import "errors"

// Kind sentinels. Use errors.Is against these after wrapping with
// fmt.Errorf("%w: detail", Kind).
var (
	// ErrValidation marks a rejected input, surfaced as a 400 with field
	// messages at the HTTP boundary.
	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable, ErrUpstreamTimeout, ErrUpstreamAuth,
	// ErrUpstreamNotFound, ErrUpstreamServer, and ErrRetryExhausted
	// classify failures from the upstream provider boundary.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamAuth        = errors.New("upstream authentication failed")
	ErrUpstreamNotFound    = errors.New("upstream resource not found")
	ErrUpstreamServer      = errors.New("upstream server error")
	ErrRetryExhausted      = errors.New("upstream retries exhausted")

	// ErrInvariant marks a fatal graph-build invariant violation: the
	// pipeline aborts and the previous published graph remains active.
	ErrInvariant = errors.New("graph invariant violation")

	// ErrNoPath marks a routing request that cannot be matched or has no
	// connecting path; callers must treat this as an empty result, not an
	// error response.
	ErrNoPath = errors.New("no path")

	// ErrPipelineConflict marks a second concurrent orchestration attempt.
	ErrPipelineConflict = errors.New("pipeline already running")

	// ErrRiskDegraded marks a risk-engine fallback to a default MEDIUM
	// assessment because a historical-data or weather provider failed.
	ErrRiskDegraded = errors.New("risk engine degraded")
)

// RetryableStatus reports whether an upstream HTTP status code is in the
// retryable set.
func RetryableStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
