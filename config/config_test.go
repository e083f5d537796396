package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antimatter-studios/cognito-local/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 9229, cfg.HTTPPort)
	assert.Equal(t, "./.cognito-local", cfg.DataDir)
	assert.Equal(t, 15*time.Second, cfg.Lambda.Timeout)
	assert.Equal(t, "IDENTITY", cfg.NATS.Stream)
	assert.Equal(t, "identity.>", cfg.NATS.Subject)
	assert.True(t, cfg.IsLocal())
}

// TestLoadEnvOverridesDefaults covers the env vars whose name, once
// lower-cased and "_"->"." mapped, lines up with the struct's nesting
// (single-word path segments). A key like LOG_LEVEL does not override
// LogLevel's flat "log_level" tag this way, since the transform turns it
// into the two-level path "log.level" — a pre-existing quirk of this
// env-var scheme, inherited as-is.
func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ISSUER", "https://issuer.example.com")
	t.Setenv("LAMBDA_TIMEOUT", "5s")
	t.Setenv("LAMBDA_DIR", "/tmp/lambda")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "https://issuer.example.com", cfg.Issuer)
	assert.Equal(t, 5*time.Second, cfg.Lambda.Timeout)
	assert.Equal(t, "/tmp/lambda", cfg.Lambda.Dir)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.False(t, cfg.IsLocal())
}
