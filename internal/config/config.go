// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// APIConfig holds transport settings for the backing board API.
type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// InteractionConfig holds the windows that govern toggle deduplication.
// Cooldown is the minimum gap between admitted toggles for one entity;
// Settle is the delay after which an admitted toggle becomes eligible again.
type InteractionConfig struct {
	Cooldown time.Duration
	Settle   time.Duration
}

// PagingConfig holds default page sizes for list fetches.
type PagingConfig struct {
	PostLimit    int
	CommentLimit int
}

// Config holds the complete application configuration
type Config struct {
	API         *APIConfig
	Interaction *InteractionConfig
	Paging      *PagingConfig
	Debug       bool
}

// DefaultConfig provides default settings for a session
func DefaultConfig() *Config {
	return &Config{
		API: &APIConfig{
			BaseURL:        "http://localhost:3001/api",
			RequestTimeout: 10 * time.Second,
		},
		Interaction: &InteractionConfig{
			Cooldown: 20 * time.Millisecond,
			Settle:   500 * time.Millisecond,
		},
		Paging: &PagingConfig{
			PostLimit:    20,
			CommentLimit: 10,
		},
		Debug: false,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env from the usual locations; a missing file is fine.
	envLocations := []string{
		".env",
		"../../.env",
	}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	cfg := DefaultConfig()

	if url := os.Getenv("API_BASE_URL"); url != "" {
		cfg.API.BaseURL = url
	}

	if timeoutStr := os.Getenv("API_TIMEOUT_MS"); timeoutStr != "" {
		if ms, err := strconv.Atoi(timeoutStr); err == nil && ms > 0 {
			cfg.API.RequestTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	if cooldownStr := os.Getenv("LIKE_COOLDOWN_MS"); cooldownStr != "" {
		if ms, err := strconv.Atoi(cooldownStr); err == nil && ms > 0 {
			cfg.Interaction.Cooldown = time.Duration(ms) * time.Millisecond
		}
	}

	if settleStr := os.Getenv("LIKE_SETTLE_MS"); settleStr != "" {
		if ms, err := strconv.Atoi(settleStr); err == nil && ms > 0 {
			cfg.Interaction.Settle = time.Duration(ms) * time.Millisecond
		}
	}

	if limitStr := os.Getenv("POST_PAGE_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			cfg.Paging.PostLimit = limit
		}
	}

	if limitStr := os.Getenv("COMMENT_PAGE_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			cfg.Paging.CommentLimit = limit
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, nil
}
