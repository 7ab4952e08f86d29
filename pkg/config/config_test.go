package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DELIVERY_CHARGE", "150")
	t.Setenv("ORDER_SWEEP_POLICY", "continue")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(150), cfg.DeliveryCharge)
	assert.Equal(t, SweepContinue, cfg.SweepPolicy)
	assert.Equal(t, int64(30), cfg.RateLimitPerMinute)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DELIVERY_CHARGE", "80")
	t.Setenv("ORDER_SWEEP_POLICY", "halt")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(80), cfg.DeliveryCharge)
	assert.Equal(t, SweepHalt, cfg.SweepPolicy)
	assert.Equal(t, int64(5), cfg.RateLimitPerMinute)
}

func TestLoadRejectsUnknownSweepPolicy(t *testing.T) {
	t.Setenv("ORDER_SWEEP_POLICY", "sometimes")
	t.Setenv("DELIVERY_CHARGE", "150")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	_, err := Load()
	assert.ErrorContains(t, err, "ORDER_SWEEP_POLICY")
}

func TestLoadRejectsNegativeDeliveryCharge(t *testing.T) {
	t.Setenv("ORDER_SWEEP_POLICY", "continue")
	t.Setenv("DELIVERY_CHARGE", "-1")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	_, err := Load()
	assert.ErrorContains(t, err, "DELIVERY_CHARGE")
}

func TestGetEnvAsInt64FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_NUMBER", "abc")
	assert.Equal(t, int64(7), getEnvAsInt64("SOME_NUMBER", 7))
}

func TestAllowedOriginsList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://agri.example.com, http://localhost:3000,")
	assert.Equal(t, []string{"https://agri.example.com", "http://localhost:3000"}, getEnvAsList("CORS_ALLOWED_ORIGINS", "*"))
}
