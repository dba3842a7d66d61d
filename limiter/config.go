package limiter

import (
	"time"
)

// Config limiter configuration.
type Config struct {
	// Enabled false makes every check a pass-through.
	Enabled bool `mapstructure:"enabled"`

	// StoreType storage backend: memory or redis.
	StoreType string `mapstructure:"store_type"`

	// Algorithm window strategy: fixed_window or sliding_window.
	Algorithm string `mapstructure:"algorithm"`

	// StoreTimeout per-call deadline for store operations. On timeout or
	// store error the limiter fails open; admission control must never be
	// the slowest part of the request path.
	StoreTimeout time.Duration `mapstructure:"store_timeout"`

	// RefundFailures when true, a request that ultimately fails gets its
	// consumed slot returned asynchronously, best-effort.
	RefundFailures bool `mapstructure:"refund_failures"`

	// EventBusBuffer size of the event channel.
	EventBusBuffer int `mapstructure:"event_bus_buffer"`

	// Redis instance reference (required when StoreType is redis).
	Redis RedisInstanceConfig `mapstructure:"redis"`
}

// RedisInstanceConfig points the limiter at a named client of the redis
// manager.
type RedisInstanceConfig struct {
	// Instance name configured under redis.instances.
	Instance string `mapstructure:"instance"`

	// KeyPrefix namespaces limiter keys (default "admission:").
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DefaultConfig returns the defaults applied to unset fields.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		StoreType:      string(StoreTypeMemory),
		Algorithm:      string(AlgorithmFixedWindow),
		StoreTimeout:   50 * time.Millisecond,
		EventBusBuffer: 500,
	}
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.StoreType == "" {
		c.StoreType = def.StoreType
	}
	if c.Algorithm == "" {
		c.Algorithm = def.Algorithm
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = def.StoreTimeout
	}
	if c.EventBusBuffer <= 0 {
		c.EventBusBuffer = def.EventBusBuffer
	}
}

// Validate checks the configuration after defaults were applied.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.StoreType != string(StoreTypeMemory) && c.StoreType != string(StoreTypeRedis) {
		return &ValidationError{Field: "store_type", Message: "must be 'memory' or 'redis'"}
	}
	if c.Algorithm != string(AlgorithmFixedWindow) && c.Algorithm != string(AlgorithmSlidingWindow) {
		return &ValidationError{Field: "algorithm", Message: "must be 'fixed_window' or 'sliding_window'"}
	}
	if c.StoreType == string(StoreTypeRedis) && c.Redis.Instance == "" {
		return &ValidationError{Field: "redis.instance", Message: "redis instance name is required"}
	}
	return nil
}
