package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CHECKOUT_SINGLE_FLIGHT", "")
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.DBAutoMigrate)
	assert.True(t, cfg.CheckoutSingleFlight)
	assert.Equal(t, 30*time.Second, cfg.CheckoutLockTTL)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Empty(t, cfg.ScyllaHosts)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("SESSION_MAX_AGE", "2h")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("CHECKOUT_SINGLE_FLIGHT", "false")
	t.Setenv("SCYLLA_HOSTS", "10.0.0.1, 10.0.0.2,")
	t.Setenv("CORS_ORIGINS", "https://shop.example")
	cfg := FromEnv()

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 3, cfg.LoginMaxAttempts)
	assert.False(t, cfg.CheckoutSingleFlight)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.ScyllaHosts)
	assert.Equal(t, []string{"https://shop.example"}, cfg.CORSOrigins)
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("LOGIN_MAX_ATTEMPTS", "many")
	t.Setenv("CART_TTL", "forever")
	t.Setenv("DB_AUTO_MIGRATE", "maybe")
	cfg := FromEnv()

	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 30*24*time.Hour, cfg.CartTTL)
	assert.True(t, cfg.DBAutoMigrate)
}

func TestValidateSessionSecret(t *testing.T) {
	cfg := Config{Env: "production"}
	require.ErrorIs(t, cfg.Validate(), ErrMissingSessionSecret)

	cfg.SessionSecret = "s3cret"
	require.NoError(t, cfg.Validate())

	require.NoError(t, Config{Env: "development"}.Validate())
}
