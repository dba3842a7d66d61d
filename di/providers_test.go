package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedgate/admission/admission"
	"github.com/fedgate/admission/config"
	"github.com/fedgate/admission/limiter"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admission.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegisterCore_MemoryStoreStack(t *testing.T) {
	path := writeConfigFile(t, `
limiter:
  enabled: true
  store_type: memory
admission:
  header_style: modern
  tiers:
    anonymous:
      max_requests: 10
    authenticated:
      max_requests: 50
`)

	injector := New()
	RegisterCore(injector, LoaderOptions{File: path})

	ctrl, err := do.Invoke[*admission.Controller](injector)
	require.NoError(t, err)
	assert.Equal(t, admission.HeaderStyleModern, ctrl.HeaderStyle())

	verdict := ctrl.Admit(context.Background(), admission.Request{
		Caller: admission.Caller{ClientIP: "10.0.0.1"},
	})
	assert.True(t, verdict.Allowed)
	assert.Equal(t, int64(10), verdict.Limit)
}

func TestRegisterCore_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
limiter:
  enabled: true
  algorithm: fixed_window
`)
	t.Setenv("ADMISSION_LIMITER__ALGORITHM", "sliding_window")

	injector := New()
	RegisterCore(injector, LoaderOptions{File: path})

	lim, err := do.Invoke[*limiter.Manager](injector)
	require.NoError(t, err)
	assert.Equal(t, string(limiter.AlgorithmSlidingWindow), lim.Algorithm())
}

func TestRegisterCore_DefaultsWithoutFile(t *testing.T) {
	injector := New()
	RegisterCore(injector, LoaderOptions{})

	loader, err := do.Invoke[*config.Loader](injector)
	require.NoError(t, err)
	assert.False(t, loader.IsSet("limiter"))

	ctrl, err := do.Invoke[*admission.Controller](injector)
	require.NoError(t, err)
	assert.Equal(t, admission.HeaderStyleBoth, ctrl.HeaderStyle())
}

func TestProvideRedisManager_NoInstances(t *testing.T) {
	injector := New()
	RegisterCore(injector, LoaderOptions{})

	mgr, err := ProvideRedisManager(injector)
	require.NoError(t, err)
	assert.Empty(t, mgr.Names())
}
