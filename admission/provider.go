package admission

import (
	"github.com/samber/do/v2"

	"github.com/fedgate/admission/config"
	"github.com/fedgate/admission/limiter"
	"github.com/fedgate/admission/logger"
)

// ProvideController builds the controller from the loader's "admission"
// section and the shared limiter manager.
func ProvideController(i do.Injector) (*Controller, error) {
	loader := do.MustInvoke[*config.Loader](i)

	cfg := DefaultConfig()
	if loader.IsSet("admission") {
		cfg = Config{}
		if err := loader.Unmarshal("admission", &cfg); err != nil {
			return nil, err
		}
	}

	lim, err := do.Invoke[*limiter.Manager](i)
	if err != nil {
		return nil, err
	}

	return NewController(cfg, lim, logger.GetLogger("admission"))
}
