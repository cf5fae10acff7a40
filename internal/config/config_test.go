package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_URL", "http://upstream.test/api/v1")
	t.Setenv("POLL_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("POLL_INTERVAL_MS", "50")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("GO_ENV", "development")

	cfg := Load()

	assert.Equal(t, "http://upstream.test/api/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, "rack.session", cfg.Upstream.CookieName)
	assert.Equal(t, 10, cfg.Relay.PollMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Relay.PollInterval)
	assert.Equal(t, 200, cfg.Relay.MaxTopN)
	assert.True(t, cfg.App.OtelEnabled)
	assert.False(t, cfg.IsProduction())
}
