package config

import (
	"os"
	"strings"
)

// EnvSource loads overrides from environment variables with a common
// prefix. A double underscore separates config sections, a single
// underscore stays part of the key, so snake_case keys remain
// addressable: ADMISSION_LIMITER__STORE_TIMEOUT=75ms becomes
// limiter.store_timeout=75ms.
type EnvSource struct {
	prefix   string
	priority int
}

// NewEnvSource creates an environment source. prefix is matched without
// the trailing underscore, e.g. "ADMISSION".
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: prefix, priority: priority}
}

func (s *EnvSource) Name() string  { return "env:" + s.prefix }
func (s *EnvSource) Priority() int { return s.priority }

// Load scans the process environment for prefixed variables.
func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	marker := s.prefix + "_"

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], marker) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], marker))
		key = strings.ReplaceAll(key, "__", ".")
		result[key] = parts[1]
	}

	return result, nil
}
