package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"FORMS_ADDR", "DATABASE_URL", "REDIS_URL", "TX_TIMEOUT", "JWT_SIGNING_KEY", "KAFKA_BROKERS", "RATE_LIMIT_DISABLED", "RATE_LIMIT_WINDOW"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.NotEmpty(t, cfg.JWTSigningKey)
	assert.Empty(t, cfg.Audit.KafkaBrokers)
	assert.Equal(t, "forms.audit", cfg.Audit.Topic)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FORMS_ADDR", ":9090")
	t.Setenv("TX_TIMEOUT", "2s")
	t.Setenv("REDIS_POOL_SIZE", "25")
	t.Setenv("REDIS_READ_TIMEOUT", "not-a-duration")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.TxTimeout)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
	assert.Equal(t, 3*time.Second, cfg.Redis.ReadTimeout)
}

func TestFromEnvBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("RATE_LIMIT_DISABLED", "true")
	t.Setenv("RATE_LIMIT_ANSWERS", "30")

	cfg := FromEnv()
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Audit.KafkaBrokers)
	assert.True(t, cfg.RateLimit.Disabled)
	assert.Equal(t, 30, cfg.RateLimit.Answers)
}
