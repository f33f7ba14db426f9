package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.StoreDriver)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "default", cfg.Waha.Session)
	assert.False(t, cfg.StrictDisputeTransitions)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, defaultReminderRule, cfg.ReminderRule)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"PORT":                       "9000",
		"STORE_DRIVER":               "Mongo",
		"SESSION_TTL":                "30m",
		"STRICT_DISPUTE_TRANSITIONS": "true",
		"MINIO_USE_SSL":              "1",
		"JWT_SECRET":                 "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.StrictDisputeTransitions)
	assert.True(t, cfg.Minio.UseSSL)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestFromEnvRejects(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"unknown store driver", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"production without secret", map[string]string{"APP_ENV": "production"}},
		{"bad duration", map[string]string{"SESSION_TTL": "soon"}},
		{"negative duration", map[string]string{"SESSION_TTL": "-1h"}},
		{"bad bool", map[string]string{"STRICT_DISPUTE_TRANSITIONS": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.values))
			assert.Error(t, err)
		})
	}
}
