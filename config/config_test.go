package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(env(map[string]string{"JWT_SECRET_KEY": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, []byte("s3cret"), cfg.SecretKey)
	assert.Equal(t, "http://localhost:4000/graphql", cfg.GraphQLURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 3*time.Second, cfg.KitchenPollInterval)
	assert.Equal(t, time.Minute, cfg.TicketClockInterval)
	assert.Equal(t, 15, cfg.LateAfterMinutes)
	assert.Equal(t, PolicyServer, cfg.SessionPolicy)
	assert.False(t, cfg.CookieSecure)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(env(map[string]string{
		"JWT_SECRET_KEY": "k",
		"POLL_INTERVAL":  "2s",
		"SESSION_POLICY": "CLAIMS",
		"COOKIE_SECURE":  "true",
		"CORS_ORIGINS":   "http://a.test, http://b.test,",
	}))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, PolicyClaims, cfg.SessionPolicy)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadReportsEveryProblem(t *testing.T) {
	_, err := Load(env(map[string]string{
		"POLL_INTERVAL":      "soon",
		"LATE_AFTER_MINUTES": "-1",
		"SESSION_POLICY":     "maybe",
	}))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "JWT_SECRET_KEY not set")
	assert.Contains(t, msg, "POLL_INTERVAL")
	assert.Contains(t, msg, "LATE_AFTER_MINUTES")
	assert.Contains(t, msg, "SESSION_POLICY")
}
