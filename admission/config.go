package admission

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fedgate/admission/complexity"
	"github.com/fedgate/admission/limiter"
)

// Header rendering conventions. "both" emits the modern and the legacy
// names from the same verdict.
const (
	HeaderStyleModern = "modern"
	HeaderStyleLegacy = "legacy"
	HeaderStyleBoth   = "both"
)

// Config is the admission layer configuration: one tier per caller class,
// the analyzer settings and the header convention.
type Config struct {
	// HeaderStyle selects the rate-limit header convention.
	HeaderStyle string `mapstructure:"header_style"`

	// AdminRoles role names granting the admin tier (default ["admin"]).
	AdminRoles []string `mapstructure:"admin_roles"`

	// Tiers quota policy per caller class.
	Tiers TiersConfig `mapstructure:"tiers"`

	// Complexity query cost analyzer settings.
	Complexity complexity.Config `mapstructure:"complexity"`
}

// TiersConfig holds the four built-in tiers in precedence order, most
// privileged first.
type TiersConfig struct {
	Admin         limiter.Tier `mapstructure:"admin"`
	Premium       limiter.Tier `mapstructure:"premium"`
	Authenticated limiter.Tier `mapstructure:"authenticated"`
	Anonymous     limiter.Tier `mapstructure:"anonymous"`
}

// DefaultConfig returns a workable policy set for a single gateway.
func DefaultConfig() Config {
	return Config{
		HeaderStyle: HeaderStyleBoth,
		AdminRoles:  []string{"admin"},
		Tiers: TiersConfig{
			Admin:         limiter.Tier{Name: "admin", Window: time.Minute, MaxRequests: 5000},
			Premium:       limiter.Tier{Name: "premium", Window: time.Minute, MaxRequests: 600},
			Authenticated: limiter.Tier{Name: "authenticated", Window: time.Minute, MaxRequests: 120},
			Anonymous:     limiter.Tier{Name: "anonymous", Window: time.Minute, MaxRequests: 30},
		},
		Complexity: complexity.Config{Budget: 1000},
	}
}

// ApplyDefaults fills zero-value fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.HeaderStyle == "" {
		c.HeaderStyle = def.HeaderStyle
	}
	if len(c.AdminRoles) == 0 {
		c.AdminRoles = def.AdminRoles
	}
	applyTierDefaults(&c.Tiers.Admin, def.Tiers.Admin)
	applyTierDefaults(&c.Tiers.Premium, def.Tiers.Premium)
	applyTierDefaults(&c.Tiers.Authenticated, def.Tiers.Authenticated)
	applyTierDefaults(&c.Tiers.Anonymous, def.Tiers.Anonymous)
	c.Complexity.ApplyDefaults()
}

func applyTierDefaults(tier *limiter.Tier, def limiter.Tier) {
	if tier.Name == "" {
		tier.Name = def.Name
	}
	if tier.Window <= 0 {
		tier.Window = def.Window
	}
	if tier.MaxRequests <= 0 {
		tier.MaxRequests = def.MaxRequests
	}
}

// Validate checks the policy set after defaults were applied. The
// anonymous tier must never out-rank the authenticated one, neither in
// absolute quota nor in window-normalized rate; this is caught here at
// load time, never at runtime.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.HeaderStyle,
			validation.Required,
			validation.In(HeaderStyleModern, HeaderStyleLegacy, HeaderStyleBoth)),
		validation.Field(&c.AdminRoles, validation.Required),
	); err != nil {
		return err
	}

	tiers := []limiter.Tier{c.Tiers.Admin, c.Tiers.Premium, c.Tiers.Authenticated, c.Tiers.Anonymous}
	for _, tier := range tiers {
		if err := tier.Validate(); err != nil {
			return fmt.Errorf("tier %q: %w", tier.Name, err)
		}
	}

	anon, auth := c.Tiers.Anonymous, c.Tiers.Authenticated
	if anon.MaxRequests > auth.MaxRequests {
		return fmt.Errorf("anonymous quota %d exceeds authenticated quota %d",
			anon.MaxRequests, auth.MaxRequests)
	}
	if rate(anon) > rate(auth) {
		return fmt.Errorf("anonymous rate %.2f req/s exceeds authenticated rate %.2f req/s",
			rate(anon), rate(auth))
	}

	if c.Complexity.Budget < 0 {
		return fmt.Errorf("complexity budget must be >= 0, got %d", c.Complexity.Budget)
	}
	return nil
}

func rate(t limiter.Tier) float64 {
	return float64(t.MaxRequests) / t.Window.Seconds()
}
