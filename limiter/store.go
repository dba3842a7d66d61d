package limiter

import (
	"context"
	"time"
)

// Store is the narrow contract the limiter needs from a shared counter
// backend. Both window operations are single atomic round trips: the
// check, the mutation, and the expiry handling happen inside one store
// call, never as separate read/modify/write steps from this process.
// That atomicity is the only correctness mechanism for concurrent
// requests hitting the same key, across any number of gateway instances.
type Store interface {
	// IncrWindow checks the counter at key against limit and, when below
	// it, increments. The expiry is set in the same atomic step, and only
	// on the 0→1 transition, so repeated requests cannot extend a window.
	// A denied call performs no write. Returns the effective count after
	// the call and whether the request was admitted.
	IncrWindow(ctx context.Context, key string, limit int64, ttl time.Duration) (count int64, allowed bool, err error)

	// SlideWindow prunes all members scored below windowStart, counts the
	// remainder and, when below limit, adds member scored at now and
	// refreshes the set's expiry (housekeeping only; correctness relies on
	// pruning). Atomic as a whole. A limit of 0 makes the call a pure
	// pruned-count read.
	SlideWindow(ctx context.Context, key, member string, limit int64, windowStart, now int64, ttl time.Duration) (count int64, allowed bool, err error)

	// DecrIfPositive decrements the counter at key unless it is already
	// zero or missing. Used by the best-effort compensating refund.
	DecrIfPositive(ctx context.Context, key string) (int64, error)

	// PopNewest removes the highest-scored member of the set at key.
	PopNewest(ctx context.Context, key string) error

	// TTL returns the remaining lifetime of key (0 when absent or
	// persistent).
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Del removes keys outright (administrative reset).
	Del(ctx context.Context, keys ...string) error

	// Close releases store resources.
	Close() error
}

// StoreType selects the Store implementation.
type StoreType string

const (
	// StoreTypeMemory per-process store, for tests and single-instance
	// deployments.
	StoreTypeMemory StoreType = "memory"

	// StoreTypeRedis shared store for multi-instance gateways.
	StoreTypeRedis StoreType = "redis"
)
