package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Compute(t *testing.T) {
	t.Run("FIB_MODE and FIB_WIDTH", func(t *testing.T) {
		clearFibEnv(t)
		t.Setenv("FIB_MODE", "checked")
		t.Setenv("FIB_WIDTH", "64")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())

		assert.Equal(t, "checked", cfg.Compute.Mode)
		assert.Equal(t, 64, cfg.Compute.Width)
	})

	t.Run("FIB_MAX_INDEX", func(t *testing.T) {
		clearFibEnv(t)
		t.Setenv("FIB_MAX_INDEX", "500")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())
		assert.Equal(t, int64(500), cfg.Compute.MaxIndex)
	})

	t.Run("non-numeric width is an error", func(t *testing.T) {
		clearFibEnv(t)
		t.Setenv("FIB_WIDTH", "wide")

		cfg := DefaultConfig()
		assert.Error(t, cfg.applyEnvOverrides())
	})
}

func TestEnvOverrides_Store(t *testing.T) {
	clearFibEnv(t)
	t.Setenv("FIB_DB_PATH", "/tmp/fib-cache.db")

	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnvOverrides())

	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "/tmp/fib-cache.db", cfg.Store.DatabasePath)
}

func TestEnvOverrides_Logging(t *testing.T) {
	clearFibEnv(t)
	t.Setenv("FIB_DEBUG", "true")
	t.Setenv("FIB_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnvOverrides())

	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides_AppliedByLoadWithoutFile(t *testing.T) {
	clearFibEnv(t)
	t.Setenv("FIB_WORKERS", "2")

	cfg, err := Load(DefaultPath(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Batch.Workers)
}
