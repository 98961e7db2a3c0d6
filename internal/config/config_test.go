package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_URI", "")
	t.Setenv("PG_DSN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.OpenAI.Enabled)
	assert.Equal(t, 5, cfg.OpenAI.RetryMaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.OpenAI.RetryInitialDelay)
	assert.Equal(t, 60*time.Second, cfg.OpenAI.RetryMaxDelay)
	assert.Equal(t, 0.65, cfg.Dedup.TextThreshold)
	assert.Equal(t, 0.30, cfg.Dedup.ImageThreshold)
	assert.Equal(t, 0.15, cfg.Dedup.PriceTolerance)
	assert.Equal(t, 5, cfg.Enrich.Workers)
	assert.Equal(t, 3, cfg.Dialogue.MaxTurns)
	assert.Contains(t, cfg.GetPostgreSQLDSN(), "dbname=")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_BASE", "http://localhost:9999/v1/")
	t.Setenv("OPENAI_RETRY_INITIAL_DELAY", "2")
	t.Setenv("OPENAI_RETRY_MAX_DELAY", "1m30s")
	t.Setenv("ENRICH_SUMMARIES", "false")
	t.Setenv("DEDUP_WORKERS", "not-a-number")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/cars")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.OpenAI.Enabled)
	assert.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.APIBase)
	assert.Equal(t, 2*time.Second, cfg.OpenAI.RetryInitialDelay)
	assert.Equal(t, 90*time.Second, cfg.OpenAI.RetryMaxDelay)
	assert.False(t, cfg.Enrich.Summaries)
	assert.Equal(t, 4, cfg.Dedup.Workers)
	assert.Equal(t, "postgres://u:p@db/cars", cfg.GetPostgreSQLDSN())
}

func TestLoadRejectsInvalidThreshold(t *testing.T) {
	t.Setenv("DEDUP_TEXT_THRESHOLD", "1.5")

	_, err := Load()
	assert.ErrorContains(t, err, "DEDUP_TEXT_THRESHOLD")
}
