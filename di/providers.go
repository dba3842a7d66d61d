package di

import (
	"github.com/samber/do/v2"

	"github.com/fedgate/admission/admission"
	"github.com/fedgate/admission/config"
	"github.com/fedgate/admission/limiter"
	"github.com/fedgate/admission/logger"
	"github.com/fedgate/admission/redis"
)

// LoaderOptions describe the configuration sources of one deployment.
type LoaderOptions struct {
	// File path of the yaml/json config file; empty skips the source.
	File string

	// EnvPrefix for environment overrides (default "ADMISSION").
	EnvPrefix string
}

// ProvideLoader builds and loads the config loader. Environment
// variables override the file.
func ProvideLoader(opts LoaderOptions) func(do.Injector) (*config.Loader, error) {
	return func(do.Injector) (*config.Loader, error) {
		prefix := opts.EnvPrefix
		if prefix == "" {
			prefix = "ADMISSION"
		}

		loader := config.NewLoader()
		if opts.File != "" {
			loader.AddSource(config.NewFileSource(opts.File, 10))
		}
		loader.AddSource(config.NewEnvSource(prefix, 20))

		if err := loader.Load(); err != nil {
			return nil, err
		}
		return loader, nil
	}
}

// ProvideRedisManager builds the redis client manager from the loader's
// "redis.instances" section.
func ProvideRedisManager(i do.Injector) (*redis.Manager, error) {
	loader := do.MustInvoke[*config.Loader](i)

	configs := make(map[string]redis.Config)
	if loader.IsSet("redis.instances") {
		if err := loader.Unmarshal("redis.instances", &configs); err != nil {
			return nil, err
		}
	}
	return redis.NewManager(configs, logger.GetLogger("redis"))
}

// RegisterCore registers every admission-layer component. Components are
// lazy: nothing connects or validates until first invoked, so a
// memory-store deployment never dials redis.
func RegisterCore(injector do.Injector, opts LoaderOptions) {
	do.Provide(injector, ProvideLoader(opts))
	do.Provide(injector, ProvideRedisManager)
	do.Provide(injector, limiter.ProvideManager)
	do.Provide(injector, admission.ProvideController)
}
