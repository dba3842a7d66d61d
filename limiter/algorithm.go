package limiter

import (
	"context"
	"time"
)

// Decision is the outcome of one quota check. It is derived fresh per
// request and never persisted.
type Decision struct {
	// Allowed whether the request may proceed.
	Allowed bool

	// Limit the tier's quota.
	Limit int64

	// Remaining quota left in the current window.
	Remaining int64

	// ResetAt best-effort estimate of when the window reopens.
	ResetAt time.Time

	// RetryAfter suggested wait before retrying (set when denied).
	RetryAfter time.Duration

	// Degraded true when the store was unreachable and the limiter failed
	// open; Limit/Remaining are then nominal values, not measurements.
	Degraded bool
}

// Status is the administrative view of one key.
type Status struct {
	Count int64
	TTL   time.Duration
}

// Algorithm is a window-counting strategy. Implementations hold no state;
// all shared state lives in the Store.
type Algorithm interface {
	// Name returns the algorithm identifier used in configuration.
	Name() string

	// Check consumes one slot for key if the tier's quota permits.
	Check(ctx context.Context, store Store, key string, tier Tier) (*Decision, error)

	// Refund returns one previously consumed slot, best-effort.
	Refund(ctx context.Context, store Store, key string) error

	// Status reads the current count and TTL without consuming.
	Status(ctx context.Context, store Store, key string, tier Tier) (*Status, error)
}

// AlgorithmType selects the algorithm.
type AlgorithmType string

const (
	// AlgorithmFixedWindow counts in discrete non-overlapping buckets;
	// one store round trip per request.
	AlgorithmFixedWindow AlgorithmType = "fixed_window"

	// AlgorithmSlidingWindow approximates a continuously moving window;
	// smoother burst control at a higher store cost.
	AlgorithmSlidingWindow AlgorithmType = "sliding_window"
)

// GetAlgorithm returns the algorithm instance for a config value,
// defaulting to fixed window.
func GetAlgorithm(name string) Algorithm {
	switch AlgorithmType(name) {
	case AlgorithmSlidingWindow:
		return NewSlidingWindowAlgorithm()
	default:
		return NewFixedWindowAlgorithm()
	}
}
