package admission

import (
	"net/http"

	"github.com/fedgate/admission/errcode"
)

// Module code 42 is reserved for the admission layer.
const moduleCode = 42

var (
	// ErrRateLimited the caller exhausted its tier quota.
	ErrRateLimited = errcode.Register(errcode.New(
		moduleCode, 1, "admission", ReasonRateLimited,
		"request rate limit exceeded",
		http.StatusTooManyRequests))

	// ErrQueryTooComplex the document's cost score exceeds the budget.
	ErrQueryTooComplex = errcode.Register(errcode.New(
		moduleCode, 2, "admission", ReasonQueryTooComplex,
		"query exceeds the complexity budget",
		http.StatusTooManyRequests))

	// ErrUnknownTier an admin operation addressed a tier that is not
	// configured.
	ErrUnknownTier = errcode.Register(errcode.New(
		moduleCode, 3, "admission", "UNKNOWN_TIER",
		"unknown policy tier",
		http.StatusNotFound))
)

// RejectionError maps a denying verdict to its coded error, with the
// diagnostic data clients need to adapt. Allowed verdicts map to nil.
func RejectionError(v *Verdict, budget int) *errcode.CodedError {
	switch v.Reason {
	case ReasonRateLimited:
		return ErrRateLimited.WithFields(map[string]interface{}{
			"tier":        v.Tier,
			"limit":       v.Limit,
			"retry_after": v.RetryAfter.Seconds(),
			"reset_at":    v.ResetAtEpochMs(),
		})
	case ReasonQueryTooComplex:
		return ErrQueryTooComplex.WithFields(map[string]interface{}{
			"tier":   v.Tier,
			"score":  v.Score,
			"budget": budget,
			"depth":  v.Depth,
		})
	default:
		return nil
	}
}
