// Package limiter bounds request volume per caller over time windows.
//
// All shared state lives in a Store (Redis in production, in-process for
// tests); the limiter itself holds no per-key locks and is correct across
// multiple gateway instances sharing one store. When the store is slow or
// down the limiter fails open: availability of the protected services is
// judged more important than strict quota enforcement during an outage.
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fedgate/admission/logger"
)

// Manager runs quota checks for resolved tiers.
type Manager struct {
	config    Config
	store     Store
	algorithm Algorithm
	eventBus  EventBus
	metrics   *Metrics
	logger    *logger.CtxZapLogger
}

// NewManager creates a limiter manager. redisClient is only required when
// the configured store type is redis; metrics may be nil.
func NewManager(cfg Config, log *logger.CtxZapLogger, redisClient *redis.Client, metrics *Metrics) (*Manager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.GetLogger("limiter")
	}

	if !cfg.Enabled {
		log.Debug("limiter disabled, all checks pass through")
		return &Manager{config: cfg, logger: log}, nil
	}

	var store Store
	switch StoreType(cfg.StoreType) {
	case StoreTypeMemory:
		store = NewMemoryStore()
	case StoreTypeRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis client is required for redis store")
		}
		store = NewRedisStore(redisClient, cfg.Redis.KeyPrefix)
	}

	m := &Manager{
		config:    cfg,
		store:     store,
		algorithm: GetAlgorithm(cfg.Algorithm),
		eventBus:  NewEventBus(cfg.EventBusBuffer),
		metrics:   metrics,
		logger:    log,
	}

	log.Debug("limiter initialized",
		zap.String("store_type", cfg.StoreType),
		zap.String("algorithm", m.algorithm.Name()),
		zap.Duration("store_timeout", cfg.StoreTimeout))

	return m, nil
}

// Check consumes one quota slot for the identity under the tier and
// returns the decision. Call it at most once per physical inbound request.
// Store faults never propagate: the request is admitted with
// Decision.Degraded set and the fault goes to logs, metrics and the event
// bus instead.
func (m *Manager) Check(ctx context.Context, tier Tier, identity string) *Decision {
	if !m.config.Enabled {
		return &Decision{
			Allowed:   true,
			Limit:     tier.MaxRequests,
			Remaining: tier.MaxRequests,
			ResetAt:   time.Now().Add(tier.Window),
		}
	}

	key := tier.Key(identity)

	storeCtx, cancel := context.WithTimeout(ctx, m.config.StoreTimeout)
	defer cancel()

	decision, err := m.algorithm.Check(storeCtx, m.store, key, tier)
	if err != nil {
		return m.failOpen(ctx, tier, key, err)
	}

	m.metrics.RecordDecision(ctx, tier.Name, decision.Allowed)

	eventType := EventAllowed
	if !decision.Allowed {
		eventType = EventRejected
		m.logger.DebugCtx(ctx, "request over quota",
			zap.String("tier", tier.Name),
			zap.String("key", key),
			zap.Int64("limit", decision.Limit))
	}
	m.eventBus.Publish(Event{
		Type:      eventType,
		Tier:      tier.Name,
		Key:       key,
		Decision:  decision,
		Timestamp: time.Now(),
	})

	return decision
}

// failOpen admits the request despite a store fault. Quota metadata is
// nominal, flagged via Degraded.
func (m *Manager) failOpen(ctx context.Context, tier Tier, key string, err error) *Decision {
	m.logger.WarnCtx(ctx, "counter store unavailable, failing open",
		zap.String("tier", tier.Name),
		zap.String("key", key),
		zap.Error(err))
	m.metrics.RecordStoreFailure(ctx, tier.Name)
	m.eventBus.Publish(Event{
		Type:      EventStoreFailure,
		Tier:      tier.Name,
		Key:       key,
		Err:       err,
		Timestamp: time.Now(),
	})

	return &Decision{
		Allowed:   true,
		Limit:     tier.MaxRequests,
		Remaining: tier.MaxRequests,
		ResetAt:   time.Now().Add(tier.Window),
		Degraded:  true,
	}
}

// Refund asynchronously returns one consumed slot for a request that
// ultimately failed. Best-effort: quota is spent once the atomic store
// operation completed, so a refund racing a concurrent denial gives no
// guarantees.
func (m *Manager) Refund(tier Tier, identity string) {
	if !m.config.Enabled || !m.config.RefundFailures {
		return
	}

	key := tier.Key(identity)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.StoreTimeout)
		defer cancel()

		if err := m.algorithm.Refund(ctx, m.store, key); err != nil {
			m.logger.Debug("refund failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

// Reset deletes the identity's counter or entry set outright. Intended
// for support workflows, not the hot path.
func (m *Manager) Reset(ctx context.Context, tier Tier, identity string) error {
	if !m.config.Enabled {
		return nil
	}
	return m.store.Del(ctx, tier.Key(identity))
}

// Status returns the identity's current count and remaining TTL without
// consuming quota.
func (m *Manager) Status(ctx context.Context, tier Tier, identity string) (*Status, error) {
	if !m.config.Enabled {
		return &Status{}, nil
	}
	return m.algorithm.Status(ctx, m.store, tier.Key(identity), tier)
}

// EventBus exposes the bus for subscribers; nil when disabled.
func (m *Manager) EventBus() EventBus {
	return m.eventBus
}

// IsEnabled reports whether checks consume quota.
func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}

// Algorithm returns the active algorithm name ("" when disabled).
func (m *Manager) Algorithm() string {
	if m.algorithm == nil {
		return ""
	}
	return m.algorithm.Name()
}

// Close releases the store and stops event dispatch.
func (m *Manager) Close() error {
	if m.eventBus != nil {
		m.eventBus.Close()
	}
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}
