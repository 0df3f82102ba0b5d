package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1025, cfg.SMTPPort)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, "mongo", cfg.WorkforceDriver)
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-flash-latest"}, cfg.GeminiModels)
	assert.Equal(t, 200*time.Millisecond, cfg.AIBaseDelay)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("AI_BASE_DELAY", "1s")
	t.Setenv("GEMINI_MODELS", " a , ,b")
	t.Setenv("MAIL_MAX_RETRIES", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, time.Second, cfg.AIBaseDelay)
	assert.Equal(t, []string{"a", "b"}, cfg.GeminiModels)
	assert.Equal(t, 2, cfg.MailMaxRetries)
}
