// Package config loads reference-server settings from the environment.
package config

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	// HTTP
	Addr string

	// Tokens
	Issuer     string
	AccessTTL  time.Duration
	SigningKey string
}

func Load() Config {
	return Config{
		Addr:       getenv("ADDR", ":8080"),
		Issuer:     getenv("ISSUER", "chatapp-dev"),
		AccessTTL:  getdur("ACCESS_TTL", 24*time.Hour),
		SigningKey: getenv("SIGNING_KEY", "dev-signing-key"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", k, "value", v, "default", def)
	}
	return def
}
