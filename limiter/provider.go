package limiter

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	"github.com/fedgate/admission/config"
	"github.com/fedgate/admission/logger"
	"github.com/fedgate/admission/redis"
)

// ProvideManager builds the limiter manager from the loader's "limiter"
// section. The redis manager is only resolved when the store type needs it.
func ProvideManager(i do.Injector) (*Manager, error) {
	loader := do.MustInvoke[*config.Loader](i)

	cfg := DefaultConfig()
	if loader.IsSet("limiter") {
		cfg = Config{}
		if err := loader.Unmarshal("limiter", &cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyDefaults()

	var client *goredis.Client
	if cfg.Enabled && cfg.StoreType == string(StoreTypeRedis) {
		manager, err := do.Invoke[*redis.Manager](i)
		if err != nil {
			return nil, fmt.Errorf("redis store configured but no redis manager provided: %w", err)
		}
		client, err = manager.Get(cfg.Redis.Instance)
		if err != nil {
			return nil, err
		}
	}

	metrics, err := NewMetrics(nil)
	if err != nil {
		return nil, err
	}

	return NewManager(cfg, logger.GetLogger("limiter"), client, metrics)
}
