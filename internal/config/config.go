// Package config loads and validates the YAML service configuration.
package config

import "time"

// Config is the top-level service configuration.
type Config struct {
	Server               ServerConfig              `yaml:"server"`
	Cache                CacheConfig               `yaml:"cache"`
	Search               SearchConfig              `yaml:"search"`
	Providers            map[string]ProviderConfig `yaml:"providers"`
	EnvironmentVariables map[string]string         `yaml:"environment_variables"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CacheConfig configures the search response cache.
type CacheConfig struct {
	Enabled    *bool    `yaml:"enabled"`
	Type       string   `yaml:"type"`
	Addrs      []string `yaml:"addrs"`
	Password   string   `yaml:"password"`
	TTLSeconds int      `yaml:"ttl_seconds"`
	MaxEntries int      `yaml:"max_entries"`
}

// TTL returns the configured cache TTL.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// IsEnabled reports whether caching is on. Unset means enabled.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// SearchConfig tunes the orchestrator and provider health tracking.
type SearchConfig struct {
	Concurrency            int `yaml:"concurrency"`
	ProviderTimeoutSeconds int `yaml:"provider_timeout_seconds"`
	CooldownSeconds        int `yaml:"cooldown_seconds"`
	AllowedFails           int `yaml:"allowed_fails"`
}

// ProviderTimeout returns the per-provider search deadline.
func (s SearchConfig) ProviderTimeout() time.Duration {
	return time.Duration(s.ProviderTimeoutSeconds) * time.Second
}

// Cooldown returns how long a failing provider is skipped.
func (s SearchConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownSeconds) * time.Second
}

// ProviderConfig holds per-provider credentials and switches. A provider
// absent from the map uses its defaults and stays enabled.
type ProviderConfig struct {
	Enabled *bool  `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	APIBase string `yaml:"api_base"`
}

// IsEnabled reports whether the provider participates. Unset means enabled.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "memory"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 30
	}
	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = 500
	}
	if cfg.Search.Concurrency <= 0 {
		cfg.Search.Concurrency = 4
	}
	if cfg.Search.ProviderTimeoutSeconds <= 0 {
		cfg.Search.ProviderTimeoutSeconds = 8
	}
	if cfg.Search.CooldownSeconds <= 0 {
		cfg.Search.CooldownSeconds = 120
	}
	if cfg.Search.AllowedFails <= 0 {
		cfg.Search.AllowedFails = 5
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}
}
