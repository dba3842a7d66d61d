package limiter

import (
	"context"
	"fmt"
	"time"
)

// fixedWindowAlgorithm counts requests in discrete windows keyed by TTL.
// The exact window start is not tracked separately, so ResetAt on a denial
// is a best-effort now+window estimate.
type fixedWindowAlgorithm struct{}

// NewFixedWindowAlgorithm creates the fixed-window strategy.
func NewFixedWindowAlgorithm() Algorithm {
	return &fixedWindowAlgorithm{}
}

func (a *fixedWindowAlgorithm) Name() string {
	return string(AlgorithmFixedWindow)
}

// Check consumes one slot via a single atomic store round trip.
func (a *fixedWindowAlgorithm) Check(ctx context.Context, store Store, key string, tier Tier) (*Decision, error) {
	now := time.Now()

	count, allowed, err := store.IncrWindow(ctx, key, tier.MaxRequests, tier.Window)
	if err != nil {
		return nil, fmt.Errorf("incr window: %w", err)
	}

	if !allowed {
		return &Decision{
			Allowed:    false,
			Limit:      tier.MaxRequests,
			Remaining:  0,
			ResetAt:    now.Add(tier.Window),
			RetryAfter: tier.Window,
		}, nil
	}

	return &Decision{
		Allowed:   true,
		Limit:     tier.MaxRequests,
		Remaining: tier.MaxRequests - count,
		ResetAt:   now.Add(tier.Window),
	}, nil
}

// Refund gives one slot back without letting the counter go negative.
func (a *fixedWindowAlgorithm) Refund(ctx context.Context, store Store, key string) error {
	_, err := store.DecrIfPositive(ctx, key)
	return err
}

// Status reads the count via a zero-limit check (which never writes).
func (a *fixedWindowAlgorithm) Status(ctx context.Context, store Store, key string, tier Tier) (*Status, error) {
	count, _, err := store.IncrWindow(ctx, key, 0, tier.Window)
	if err != nil {
		return nil, fmt.Errorf("read window count: %w", err)
	}
	ttl, err := store.TTL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read window ttl: %w", err)
	}
	return &Status{Count: count, TTL: ttl}, nil
}
