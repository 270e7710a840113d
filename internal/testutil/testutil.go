// Package testutil holds helpers shared by package and end-to-end tests.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/userapi/userapi/internal/config"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// EnvOrDefault returns an environment variable or fallback when unset.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRedis starts an in-process Redis and returns it with a connected client.
// Both are closed when the test ends.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

// NewConfig returns a valid testing configuration with rate limiting off.
// Callers adjust fields before building a router.
func NewConfig() *config.Config {
	return &config.Config{
		AppEnv:             config.EnvTesting,
		AppPort:            8080,
		LogLevel:           "info",
		LogFormat:          "json",
		RateLimitEnabled:   false,
		RateLimitRPS:       20,
		RateLimitBurst:     40,
		MaxRequestBodySize: 1 << 20,
		MetricsEnabled:     true,
	}
}
