// Package admission composes tier resolution, rate limiting and query
// cost analysis into one allow/deny verdict. It is the only package the
// serving layer talks to; every outcome, including internal faults, is
// expressed through the Verdict, never as an escaping error.
package admission

import (
	"context"

	"go.uber.org/zap"

	"github.com/fedgate/admission/complexity"
	"github.com/fedgate/admission/limiter"
	"github.com/fedgate/admission/logger"
	"github.com/fedgate/admission/validator"
)

// Controller is the admission composition root.
type Controller struct {
	config   Config
	resolver *TierResolver
	limiter  *limiter.Manager
	analyzer *complexity.Analyzer
	logger   *logger.CtxZapLogger
}

// NewController wires the controller. The limiter manager is owned by
// the caller (it holds the store connection); the analyzer is built here.
func NewController(cfg Config, lim *limiter.Manager, log *logger.CtxZapLogger) (*Controller, error) {
	cfg.ApplyDefaults()
	if err := validator.ValidateRequest(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetLogger("admission")
	}

	return &Controller{
		config:   cfg,
		resolver: NewTierResolver(cfg),
		limiter:  lim,
		analyzer: complexity.NewAnalyzer(cfg.Complexity, log),
		logger:   log,
	}, nil
}

// Admit runs the full admission pipeline for one inbound request:
// resolve the tier, consume one quota slot, then score the document
// against the budget when one is present. The quota check runs first so
// a denied caller cannot burn analyzer CPU; a slot consumed by a
// subsequently too-complex query stays consumed.
func (c *Controller) Admit(ctx context.Context, req Request) *Verdict {
	tier := c.resolver.Resolve(req.Caller)
	decision := c.limiter.Check(ctx, tier, req.Identity())

	verdict := &Verdict{
		Tier:      tier.Name,
		Limit:     decision.Limit,
		Remaining: decision.Remaining,
		ResetAt:   decision.ResetAt,
		Degraded:  decision.Degraded,
	}

	if !decision.Allowed {
		verdict.Reason = ReasonRateLimited
		verdict.RetryAfter = decision.RetryAfter
		return verdict
	}

	if req.Document != nil {
		result := c.analyzer.Score(req.Document, req.Variables)
		verdict.Score = result.Score
		verdict.Depth = result.Depth

		if budget := c.analyzer.Budget(); budget > 0 && result.Score > budget {
			verdict.Reason = ReasonQueryTooComplex
			c.logger.DebugCtx(ctx, "query over complexity budget",
				zap.String("tier", tier.Name),
				zap.Int("score", result.Score),
				zap.Int("budget", budget),
				zap.Int("depth", result.Depth))
			return verdict
		}
	}

	verdict.Allowed = true
	return verdict
}

// Refund returns the caller's consumed slot after a downstream failure.
// Async and best-effort; see limiter.Manager.Refund.
func (c *Controller) Refund(req Request) {
	tier := c.resolver.Resolve(req.Caller)
	c.limiter.Refund(tier, req.Identity())
}

// Reset clears the identity's counter under the named tier. Admin
// surface, not the hot path.
func (c *Controller) Reset(ctx context.Context, tierName, identity string) error {
	tier, ok := c.resolver.TierByName(tierName)
	if !ok {
		return ErrUnknownTier.WithData("tier", tierName)
	}
	return c.limiter.Reset(ctx, tier, identity)
}

// ResetIdentity clears the identity's counters under every configured
// tier, for support workflows where the caller's tier is unknown. The
// first store error is returned after all tiers were attempted.
func (c *Controller) ResetIdentity(ctx context.Context, identity string) error {
	var firstErr error
	for _, tier := range c.resolver.Tiers() {
		if err := c.limiter.Reset(ctx, tier, identity); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Status reports the identity's current count and window TTL without
// consuming quota.
func (c *Controller) Status(ctx context.Context, tierName, identity string) (*limiter.Status, error) {
	tier, ok := c.resolver.TierByName(tierName)
	if !ok {
		return nil, ErrUnknownTier.WithData("tier", tierName)
	}
	return c.limiter.Status(ctx, tier, identity)
}

// StatusByIdentity reports the identity's count and TTL under every
// configured tier, keyed by tier name.
func (c *Controller) StatusByIdentity(ctx context.Context, identity string) (map[string]*limiter.Status, error) {
	statuses := make(map[string]*limiter.Status, len(c.resolver.Tiers()))
	for _, tier := range c.resolver.Tiers() {
		status, err := c.limiter.Status(ctx, tier, identity)
		if err != nil {
			return nil, err
		}
		statuses[tier.Name] = status
	}
	return statuses, nil
}

// HeaderStyle returns the configured header convention.
func (c *Controller) HeaderStyle() string {
	return c.config.HeaderStyle
}

// Budget returns the configured complexity budget (0 = unbounded).
func (c *Controller) Budget() int {
	return c.analyzer.Budget()
}

// Limiter exposes the underlying manager for event subscribers.
func (c *Controller) Limiter() *limiter.Manager {
	return c.limiter
}
