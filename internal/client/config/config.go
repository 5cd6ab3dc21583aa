// Package config loads runtime settings for the ChatApp CLI.
package config

import "time"

// Config holds runtime settings for the chat client.
//
// Fields:
//   - ServerURL: base URL of the chat backend.
//   - DatabaseFile: path of the local SQLite cache.
//   - ResolveTimeout: budget for the silent auto-login at startup.
type Config struct {
	ServerURL      string
	DatabaseFile   string
	ResolveTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabaseFile = "chat.db"
	c.ResolveTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
