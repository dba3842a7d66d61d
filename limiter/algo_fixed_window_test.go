package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindow_QuotaSequence(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	algo := NewFixedWindowAlgorithm()
	ctx := context.Background()
	tier := Tier{Name: "authenticated", Window: 60 * time.Second, MaxRequests: 3}
	key := tier.Key(UserIdentity("42"))

	// requests 1-3 pass with remaining 2, 1, 0
	for i, wantRemaining := range []int64{2, 1, 0} {
		d, err := algo.Check(ctx, store, key, tier)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should pass", i+1)
		assert.Equal(t, wantRemaining, d.Remaining, "request %d", i+1)
		assert.Equal(t, int64(3), d.Limit)
	}

	// request 4 is denied without consuming
	d, err := algo.Check(ctx, store, key, tier)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(0), d.Remaining)
	assert.Positive(t, d.RetryAfter)

	st, err := algo.Status(ctx, store, key, tier)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Count, "denied request must not increment")
}

func TestFixedWindow_WindowReset(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	algo := NewFixedWindowAlgorithm()
	ctx := context.Background()
	tier := Tier{Name: "anonymous", Window: 200 * time.Millisecond, MaxRequests: 1}
	key := tier.Key(IPIdentity("203.0.113.7"))

	d, err := algo.Check(ctx, store, key, tier)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = algo.Check(ctx, store, key, tier)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	time.Sleep(250 * time.Millisecond)

	d, err = algo.Check(ctx, store, key, tier)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "window must reopen after it elapses")
}

func TestFixedWindow_Refund(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	algo := NewFixedWindowAlgorithm()
	ctx := context.Background()
	tier := Tier{Name: "premium", Window: time.Minute, MaxRequests: 2}
	key := tier.Key(UserIdentity("7"))

	for i := 0; i < 2; i++ {
		d, err := algo.Check(ctx, store, key, tier)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i+1)
	}

	d, err := algo.Check(ctx, store, key, tier)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	require.NoError(t, algo.Refund(ctx, store, key))

	d, err = algo.Check(ctx, store, key, tier)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "refunded slot must be usable again")

	// refunding an empty counter never goes negative
	empty := tier.Key(UserIdentity("nobody"))
	require.NoError(t, algo.Refund(ctx, store, empty))
	st, err := algo.Status(ctx, store, empty, tier)
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Count)
}

func TestFixedWindow_ConcurrentBoundary(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	algo := NewFixedWindowAlgorithm()
	ctx := context.Background()
	tier := Tier{Name: "authenticated", Window: time.Minute, MaxRequests: 10}
	key := tier.Key(UserIdentity("racer"))

	const attempts = 50
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			d, err := algo.Check(ctx, store, key, tier)
			if err != nil {
				results <- false
				return
			}
			results <- d.Allowed
		}()
	}

	var admitted int64
	for i := 0; i < attempts; i++ {
		if <-results {
			admitted++
		}
	}
	assert.Equal(t, tier.MaxRequests, admitted,
		"concurrent requests must never admit past the quota")
}
