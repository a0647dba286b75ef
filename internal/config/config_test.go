package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 15*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, 10, cfg.MinPhoneDigits)
	assert.Equal(t, "pos.sale.recorded", cfg.SalesTopic)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOOKUP_TIMEOUT", "2s")
	t.Setenv("MIN_PHONE_DIGITS", "9")

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 9, cfg.MinPhoneDigits)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("LOOKUP_TIMEOUT", "-1s")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "LOOKUP_TIMEOUT")
}

func TestFromEnvRejectsUnparsableDuration(t *testing.T) {
	t.Setenv("SUBMIT_TIMEOUT", "soon")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "parse config")
}

func TestFromEnvRejectsZeroPhoneDigits(t *testing.T) {
	t.Setenv("MIN_PHONE_DIGITS", "0")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "MIN_PHONE_DIGITS")
}
