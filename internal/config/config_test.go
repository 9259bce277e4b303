package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:3001/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 20*time.Millisecond, cfg.Interaction.Cooldown)
	assert.Equal(t, 500*time.Millisecond, cfg.Interaction.Settle)
	assert.Equal(t, 20, cfg.Paging.PostLimit)
	assert.Equal(t, 10, cfg.Paging.CommentLimit)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://board.example.com/api")
	t.Setenv("API_TIMEOUT_MS", "2500")
	t.Setenv("LIKE_COOLDOWN_MS", "50")
	t.Setenv("LIKE_SETTLE_MS", "900")
	t.Setenv("COMMENT_PAGE_LIMIT", "25")
	t.Setenv("DEBUG", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://board.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.API.RequestTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Interaction.Cooldown)
	assert.Equal(t, 900*time.Millisecond, cfg.Interaction.Settle)
	assert.Equal(t, 25, cfg.Paging.CommentLimit)
	assert.Equal(t, 20, cfg.Paging.PostLimit)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("API_TIMEOUT_MS", "not-a-number")
	t.Setenv("LIKE_COOLDOWN_MS", "-5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 20*time.Millisecond, cfg.Interaction.Cooldown)
}
