package admission

import (
	"time"
)

// Rejection reason codes surfaced to clients.
const (
	ReasonRateLimited     = "RATE_LIMITED"
	ReasonQueryTooComplex = "QUERY_TOO_COMPLEX"
)

// Verdict is the single outcome object of one admission check. Both
// header conventions and the rejection body render from it; it carries
// everything the invoking layer needs and nothing request-scoped beyond
// that.
type Verdict struct {
	// Allowed whether the request may proceed to the graph engine.
	Allowed bool

	// Tier the resolved policy tier name.
	Tier string

	// Limit the tier's quota per window.
	Limit int64

	// Remaining quota left after this check.
	Remaining int64

	// ResetAt when the current window reopens.
	ResetAt time.Time

	// Score and Depth from the cost analyzer; zero when the request
	// carried no document.
	Score int
	Depth int

	// Reason is empty when allowed, otherwise RATE_LIMITED or
	// QUERY_TOO_COMPLEX.
	Reason string

	// RetryAfter suggested client back-off (rate-limit rejections only).
	RetryAfter time.Duration

	// Degraded true when the counter store was unreachable and the
	// limiter failed open.
	Degraded bool
}

// ResetAtEpochMs returns the window reset time as unix milliseconds, the
// unit both header conventions and the rejection body use.
func (v *Verdict) ResetAtEpochMs() int64 {
	if v.ResetAt.IsZero() {
		return 0
	}
	return v.ResetAt.UnixMilli()
}
