package admission

import (
	"math"
	"strconv"
	"time"
)

// HeaderFormatter renders one verdict into header key/value pairs. The
// two naming conventions are independent formatters over the same
// verdict; decision logic never forks per convention.
type HeaderFormatter func(v *Verdict) map[string]string

// ModernHeaders renders the draft-standard RateLimit-* names. Reset is
// delta seconds, per the draft.
func ModernHeaders(v *Verdict) map[string]string {
	return map[string]string{
		"RateLimit-Limit":     strconv.FormatInt(v.Limit, 10),
		"RateLimit-Remaining": strconv.FormatInt(v.Remaining, 10),
		"RateLimit-Reset":     strconv.FormatInt(deltaSeconds(v.ResetAt), 10),
	}
}

// LegacyHeaders renders the X-RateLimit-* names older clients parse.
// Reset is epoch milliseconds, matching what those clients already
// expect from the previous gateway generation.
func LegacyHeaders(v *Verdict) map[string]string {
	return map[string]string{
		"X-RateLimit-Limit":     strconv.FormatInt(v.Limit, 10),
		"X-RateLimit-Remaining": strconv.FormatInt(v.Remaining, 10),
		"X-RateLimit-Reset":     strconv.FormatInt(v.ResetAtEpochMs(), 10),
	}
}

// FormattersFor maps the configured style to the active formatters.
// Unknown styles fall back to both, the safe superset.
func FormattersFor(style string) []HeaderFormatter {
	switch style {
	case HeaderStyleModern:
		return []HeaderFormatter{ModernHeaders}
	case HeaderStyleLegacy:
		return []HeaderFormatter{LegacyHeaders}
	default:
		return []HeaderFormatter{ModernHeaders, LegacyHeaders}
	}
}

// RenderHeaders applies the style's formatters and merges the result.
func RenderHeaders(style string, v *Verdict) map[string]string {
	merged := make(map[string]string, 6)
	for _, format := range FormattersFor(style) {
		for key, value := range format(v) {
			merged[key] = value
		}
	}
	return merged
}

func deltaSeconds(resetAt time.Time) int64 {
	if resetAt.IsZero() {
		return 0
	}
	remaining := time.Until(resetAt).Seconds()
	if remaining < 0 {
		return 0
	}
	return int64(math.Ceil(remaining))
}
