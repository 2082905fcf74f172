package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a fabsearch.yaml file and returns a Config with all
// environment variable references resolved and defaults applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvironmentVariables(&cfg)
	resolveEnvVars(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// applyEnvironmentVariables sets OS env vars from the config's
// environment_variables section before any key resolution happens.
func applyEnvironmentVariables(cfg *Config) {
	for k, v := range cfg.EnvironmentVariables {
		os.Setenv(k, ResolveEnvVar(v))
	}
}

func resolveEnvVars(cfg *Config) {
	cfg.Cache.Password = ResolveEnvVar(cfg.Cache.Password)
	for id, pc := range cfg.Providers {
		pc.APIKey = ResolveEnvVar(pc.APIKey)
		pc.APIBase = ResolveEnvVar(pc.APIBase)
		cfg.Providers[id] = pc
	}
}
