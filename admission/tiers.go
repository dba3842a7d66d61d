package admission

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/fedgate/admission/limiter"
)

// Caller is the authentication context resolved by the external auth
// layer before admission runs. A zero UserID means anonymous.
type Caller struct {
	UserID   string
	Roles    []string
	Premium  bool
	ClientIP string
}

// Identity derives the rate-limit identity: the user id when
// authenticated, the client address otherwise.
func (c Caller) Identity() string {
	if c.UserID != "" {
		return limiter.UserIdentity(c.UserID)
	}
	return limiter.IPIdentity(c.ClientIP)
}

// Request is one inbound request as seen by the admission layer.
// Document is nil for non-graph traffic; such requests are only rate
// limited, never cost-scored.
type Request struct {
	Caller

	Document  *ast.QueryDocument
	Variables map[string]interface{}
}

// tierRule pairs a predicate with the tier it grants.
type tierRule struct {
	match func(Caller) bool
	tier  limiter.Tier
}

// TierResolver maps a caller to exactly one tier. Rules are evaluated in
// fixed precedence order (admin, premium, authenticated, anonymous) so
// the same caller always resolves to the same tier. Pure: no I/O, no
// side effects.
type TierResolver struct {
	rules []tierRule
}

// NewTierResolver builds the resolver from the configured tier set.
func NewTierResolver(cfg Config) *TierResolver {
	adminRoles := make(map[string]struct{}, len(cfg.AdminRoles))
	for _, role := range cfg.AdminRoles {
		adminRoles[role] = struct{}{}
	}

	return &TierResolver{rules: []tierRule{
		{
			match: func(c Caller) bool {
				if c.UserID == "" {
					return false
				}
				for _, role := range c.Roles {
					if _, ok := adminRoles[role]; ok {
						return true
					}
				}
				return false
			},
			tier: cfg.Tiers.Admin,
		},
		{
			match: func(c Caller) bool { return c.UserID != "" && c.Premium },
			tier:  cfg.Tiers.Premium,
		},
		{
			match: func(c Caller) bool { return c.UserID != "" },
			tier:  cfg.Tiers.Authenticated,
		},
		{
			match: func(Caller) bool { return true },
			tier:  cfg.Tiers.Anonymous,
		},
	}}
}

// Resolve returns the first matching tier. The anonymous rule matches
// everything, so Resolve always succeeds.
func (r *TierResolver) Resolve(caller Caller) limiter.Tier {
	for _, rule := range r.rules {
		if rule.match(caller) {
			return rule.tier
		}
	}
	return r.rules[len(r.rules)-1].tier
}

// TierByName returns the configured tier with the given name, for admin
// operations addressing a tier directly.
func (r *TierResolver) TierByName(name string) (limiter.Tier, bool) {
	for _, rule := range r.rules {
		if rule.tier.Name == name {
			return rule.tier, true
		}
	}
	return limiter.Tier{}, false
}

// Tiers returns every configured tier in precedence order.
func (r *TierResolver) Tiers() []limiter.Tier {
	tiers := make([]limiter.Tier, 0, len(r.rules))
	for _, rule := range r.rules {
		tiers = append(tiers, rule.tier)
	}
	return tiers
}
