package limiter

import (
	"time"
)

// Tier is one named rate-limit policy. Tiers are configuration-time
// constructs: loaded at startup, validated, and never mutated afterwards.
type Tier struct {
	// Name identifies the tier in decisions, events and metrics.
	Name string `mapstructure:"name"`

	// Prefix namespaces the tier's keys; defaults to Name.
	Prefix string `mapstructure:"prefix"`

	// Window duration of one counting window.
	Window time.Duration `mapstructure:"window"`

	// MaxRequests quota per window.
	MaxRequests int64 `mapstructure:"max_requests"`
}

// Key derives the rate-limit key for a caller identity. The same logical
// caller in the same window always maps to the same key.
func (t Tier) Key(identity string) string {
	prefix := t.Prefix
	if prefix == "" {
		prefix = t.Name
	}
	return prefix + ":" + identity
}

// Validate checks the tier parameters.
func (t Tier) Validate() error {
	if t.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if t.Window <= 0 {
		return &ValidationError{Field: "window", Message: "must be > 0"}
	}
	if t.MaxRequests <= 0 {
		return &ValidationError{Field: "max_requests", Message: "must be > 0"}
	}
	return nil
}

// UserIdentity builds the identity string for an authenticated caller.
func UserIdentity(userID string) string {
	return "user:" + userID
}

// IPIdentity builds the identity string for an anonymous caller.
func IPIdentity(addr string) string {
	return "ip:" + addr
}
