package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, 5*time.Second, cfg.CollaboratorTimeout)
	assert.Equal(t, 20.0, cfg.MileageFreeRadius)
	assert.Equal(t, 1.0, cfg.MileageRate)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Equal(t, "keyword", cfg.IntentProvider)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MAX_RETRIES", "2")
	t.Setenv("SESSION_IDLE_TIMEOUT", "90s")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("MILEAGE_RATE", "1.5")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 90*time.Second, cfg.SessionIdleTimeout)
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, 1.5, cfg.MileageRate)
}

func TestIsProduction(t *testing.T) {
	prev := AppConfig
	t.Cleanup(func() { AppConfig = prev })

	AppConfig.Env = "production"
	assert.True(t, IsProduction())

	AppConfig.Env = "development"
	assert.False(t, IsProduction())
}
