package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.AdminTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.PricingCacheTTL)
	assert.Equal(t, "orders", cfg.KafkaOrderTopic)
	assert.Empty(t, cfg.PostgresURL)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.False(t, cfg.S3Enabled())

	// No secret configured: a random one is generated for this process.
	assert.True(t, cfg.GeneratedTokenSecret)
	assert.Len(t, cfg.AdminTokenSecret, 64)
}

func TestLoadFromValues(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"POSTGRES_URL":       "postgres://u:p@localhost:5432/db",
		"ADMIN_USERNAME":     "admin",
		"ADMIN_PASSWORD":     "secret",
		"ADMIN_TOKEN_SECRET": "signing-key",
		"ADMIN_TOKEN_TTL":    "2h",
		"KAFKA_BROKERS":      "k1:9092, ,k2:9092",
		"TELEGRAM_CHAT_ID":   "-100123",
		"RATE_LIMIT_RPS":     "2.5",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost:5432/db", cfg.PostgresURL)
	assert.Equal(t, "signing-key", cfg.AdminTokenSecret)
	assert.False(t, cfg.GeneratedTokenSecret)
	assert.Equal(t, 2*time.Hour, cfg.AdminTokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.0001)
}

func TestLoadFromS3RequiresCredentials(t *testing.T) {
	_, err := LoadFrom(map[string]string{"S3_BUCKET": "exports"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_REGION")
	assert.Contains(t, err.Error(), "S3_SECRET_KEY")
}

func TestLoadFromRejectsBadRateLimit(t *testing.T) {
	_, err := LoadFrom(map[string]string{"RATE_LIMIT_BURST": "0"})
	require.Error(t, err)
}
