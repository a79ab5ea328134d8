// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the service needs at startup.
type Config struct {
	// APIKey authenticates calls to the YouTube Data API. Required.
	APIKey string

	// HTTPTimeout bounds every tool invocation. Zero means no deadline.
	HTTPTimeout time.Duration

	// MaxRetries is the number of retries after the first attempt of a
	// transient upstream call.
	MaxRetries int

	// RetryBaseDelay is the backoff before the first retry; it doubles
	// on each subsequent one.
	RetryBaseDelay time.Duration
}

const (
	defaultMaxRetries     = 2
	defaultRetryBaseDelay = 250 * time.Millisecond
)

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first; a missing file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIKey:         strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")),
		MaxRetries:     defaultMaxRetries,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("YOUTUBE_API_KEY is not set")
	}

	var err error
	if cfg.HTTPTimeout, err = durationEnv("YTMCP_HTTP_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.MaxRetries, err = intEnv("YTMCP_MAX_RETRIES", defaultMaxRetries); err != nil {
		return Config{}, err
	}
	if cfg.RetryBaseDelay, err = durationEnv("YTMCP_RETRY_BASE_DELAY", defaultRetryBaseDelay); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", name, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", name)
	}
	return d, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative", name)
	}
	return n, nil
}
