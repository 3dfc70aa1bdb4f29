package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/core/config"
)

func TestLoadParsesEnvironment(t *testing.T) {
	type serverConfig struct {
		Addr        string        `env:"TEST_SERVER_ADDR" envDefault:":8080"`
		ReadTimeout time.Duration `env:"TEST_SERVER_READ_TIMEOUT" envDefault:"15s"`
	}

	t.Setenv("TEST_SERVER_ADDR", ":9090")

	var cfg serverConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
}

func TestLoadCachesByType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_CACHED_VALUE" envDefault:"first"`
	}

	t.Setenv("TEST_CACHED_VALUE", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "first", first.Value)

	// Changing the environment after the first load must not change the
	// cached value; configuration is immutable after startup.
	t.Setenv("TEST_CACHED_VALUE", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}

func TestLoadRequiredMissing(t *testing.T) {
	type strictConfig struct {
		Secret string `env:"TEST_STRICT_SECRET,required"`
	}

	var cfg strictConfig
	err := config.Load(&cfg)
	require.Error(t, err)
}

func TestLoadInvalidTarget(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, config.Load(nil), config.ErrInvalidTarget)

	var notStruct int
	assert.ErrorIs(t, config.Load(&notStruct), config.ErrInvalidTarget)

	type someConfig struct{}
	assert.ErrorIs(t, config.Load(someConfig{}), config.ErrInvalidTarget)
}

func TestMustLoadPanicsOnFailure(t *testing.T) {
	type brokenConfig struct {
		Missing string `env:"TEST_MUST_LOAD_MISSING,required"`
	}

	assert.Panics(t, func() {
		config.MustLoad(&brokenConfig{})
	})
}
