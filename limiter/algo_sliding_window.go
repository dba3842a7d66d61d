package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// slidingWindowAlgorithm keeps one timestamped entry per admitted request
// in a sorted set and counts entries inside the moving window. Slots
// reopen one at a time as old entries age out, instead of all at once at
// a bucket boundary.
type slidingWindowAlgorithm struct{}

// NewSlidingWindowAlgorithm creates the sliding-window strategy.
func NewSlidingWindowAlgorithm() Algorithm {
	return &slidingWindowAlgorithm{}
}

func (a *slidingWindowAlgorithm) Name() string {
	return string(AlgorithmSlidingWindow)
}

// Check prunes, counts and conditionally admits in a single atomic store
// round trip. Members are uuids so concurrent requests in the same
// millisecond stay distinct.
func (a *slidingWindowAlgorithm) Check(ctx context.Context, store Store, key string, tier Tier) (*Decision, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - tier.Window.Milliseconds()

	count, allowed, err := store.SlideWindow(ctx, key, uuid.New().String(),
		tier.MaxRequests, windowStart, nowMs, tier.Window)
	if err != nil {
		return nil, fmt.Errorf("slide window: %w", err)
	}

	if !allowed {
		// the oldest in-window entry expires after at most one
		// window/limit share on a steady stream
		retryAfter := tier.Window / time.Duration(tier.MaxRequests)
		return &Decision{
			Allowed:    false,
			Limit:      tier.MaxRequests,
			Remaining:  maxInt64(0, tier.MaxRequests-count),
			ResetAt:    now.Add(tier.Window),
			RetryAfter: retryAfter,
		}, nil
	}

	return &Decision{
		Allowed:   true,
		Limit:     tier.MaxRequests,
		Remaining: tier.MaxRequests - count,
		ResetAt:   now.Add(tier.Window),
	}, nil
}

// Refund drops the newest entry so the slot reopens immediately.
func (a *slidingWindowAlgorithm) Refund(ctx context.Context, store Store, key string) error {
	return store.PopNewest(ctx, key)
}

// Status reads the pruned in-window count via a zero-limit call.
func (a *slidingWindowAlgorithm) Status(ctx context.Context, store Store, key string, tier Tier) (*Status, error) {
	now := time.Now().UnixMilli()
	windowStart := now - tier.Window.Milliseconds()

	count, _, err := store.SlideWindow(ctx, key, "", 0, windowStart, now, tier.Window)
	if err != nil {
		return nil, fmt.Errorf("read window count: %w", err)
	}
	ttl, err := store.TTL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read window ttl: %w", err)
	}
	return &Status{Count: count, TTL: ttl}, nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
