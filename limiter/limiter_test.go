package limiter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedgate/admission/logger"
)

// failingStore simulates an unreachable counter store.
type failingStore struct{}

var errStoreDown = errors.New("connection refused")

func (s *failingStore) IncrWindow(context.Context, string, int64, time.Duration) (int64, bool, error) {
	return 0, false, errStoreDown
}
func (s *failingStore) SlideWindow(context.Context, string, string, int64, int64, int64, time.Duration) (int64, bool, error) {
	return 0, false, errStoreDown
}
func (s *failingStore) DecrIfPositive(context.Context, string) (int64, error) {
	return 0, errStoreDown
}
func (s *failingStore) PopNewest(context.Context, string) error       { return errStoreDown }
func (s *failingStore) TTL(context.Context, string) (time.Duration, error) {
	return 0, errStoreDown
}
func (s *failingStore) Del(context.Context, ...string) error { return errStoreDown }
func (s *failingStore) Close() error                         { return nil }

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	log, _ := logger.NewTestLogger("limiter")
	m, err := NewManager(cfg, log, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_FailOpenOnStoreFailure(t *testing.T) {
	m := newTestManager(t, Config{Enabled: true})
	m.store = &failingStore{}

	tier := Tier{Name: "authenticated", Window: time.Minute, MaxRequests: 3}

	var failures []Event
	var mu sync.Mutex
	m.EventBus().Subscribe(EventListenerFunc(func(e Event) {
		if e.Type == EventStoreFailure {
			mu.Lock()
			failures = append(failures, e)
			mu.Unlock()
		}
	}))

	for i := 0; i < 10; i++ {
		d := m.Check(context.Background(), tier, UserIdentity("42"))
		require.True(t, d.Allowed, "store outage must never reject a request")
		assert.True(t, d.Degraded)
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failures) == 10
	}, time.Second, 10*time.Millisecond, "every fail-open must be surfaced on the bus")
}

func TestManager_DisabledPassesThrough(t *testing.T) {
	m := newTestManager(t, Config{Enabled: false})

	tier := Tier{Name: "anonymous", Window: time.Minute, MaxRequests: 1}
	for i := 0; i < 5; i++ {
		d := m.Check(context.Background(), tier, IPIdentity("10.0.0.1"))
		assert.True(t, d.Allowed)
		assert.False(t, d.Degraded)
	}
}

func TestManager_QuotaAndAdminOps(t *testing.T) {
	m := newTestManager(t, Config{Enabled: true, StoreType: "memory"})
	ctx := context.Background()
	tier := Tier{Name: "authenticated", Window: time.Minute, MaxRequests: 2}
	identity := UserIdentity("42")

	require.True(t, m.Check(ctx, tier, identity).Allowed)
	require.True(t, m.Check(ctx, tier, identity).Allowed)
	require.False(t, m.Check(ctx, tier, identity).Allowed)

	st, err := m.Status(ctx, tier, identity)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Count)
	assert.Positive(t, st.TTL)

	// administrative reset reopens the window immediately
	require.NoError(t, m.Reset(ctx, tier, identity))
	assert.True(t, m.Check(ctx, tier, identity).Allowed)
}

func TestManager_RefundToggle(t *testing.T) {
	m := newTestManager(t, Config{Enabled: true, StoreType: "memory", RefundFailures: true})
	ctx := context.Background()
	tier := Tier{Name: "authenticated", Window: time.Minute, MaxRequests: 1}
	identity := UserIdentity("42")

	require.True(t, m.Check(ctx, tier, identity).Allowed)
	require.False(t, m.Check(ctx, tier, identity).Allowed)

	m.Refund(tier, identity)

	assert.Eventually(t, func() bool {
		st, err := m.Status(ctx, tier, identity)
		return err == nil && st.Count == 0
	}, time.Second, 10*time.Millisecond, "async refund must land")
}

func TestManager_RejectedEventsPublished(t *testing.T) {
	m := newTestManager(t, Config{Enabled: true, StoreType: "memory"})
	tier := Tier{Name: "anonymous", Window: time.Minute, MaxRequests: 1}

	var rejected int
	var mu sync.Mutex
	m.EventBus().Subscribe(EventListenerFunc(func(e Event) {
		if e.Type == EventRejected {
			mu.Lock()
			rejected++
			mu.Unlock()
		}
	}))

	ctx := context.Background()
	m.Check(ctx, tier, IPIdentity("10.9.8.7"))
	m.Check(ctx, tier, IPIdentity("10.9.8.7"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return rejected == 1
	}, time.Second, 10*time.Millisecond)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled skips validation", Config{Enabled: false}, false},
		{"memory fixed window", Config{Enabled: true, StoreType: "memory", Algorithm: "fixed_window", StoreTimeout: time.Millisecond, EventBusBuffer: 1}, false},
		{"bad store type", Config{Enabled: true, StoreType: "dynamo", Algorithm: "fixed_window"}, true},
		{"bad algorithm", Config{Enabled: true, StoreType: "memory", Algorithm: "leaky_bucket"}, true},
		{"redis without instance", Config{Enabled: true, StoreType: "redis", Algorithm: "fixed_window"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTier_Key(t *testing.T) {
	tier := Tier{Name: "premium", Window: time.Minute, MaxRequests: 100}
	assert.Equal(t, "premium:user:42", tier.Key(UserIdentity("42")))

	tier.Prefix = "prem"
	assert.Equal(t, "prem:ip:10.0.0.1", tier.Key(IPIdentity("10.0.0.1")))
}
