// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads CLI configuration from a file, ORCH_* environment
// variables and flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/luxfi/orchestrator"
	"github.com/luxfi/orchestrator/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. ORCH_ATTEMPTS=5.
const EnvPrefix = "ORCH"

// Config is the CLI configuration.
type Config struct {
	// Environment picks a known orchestrator; ignored when BaseURL is set.
	Environment string `mapstructure:"environment"`
	BaseURL     string `mapstructure:"base_url"`

	Codec          string        `mapstructure:"codec"`
	Transport      string        `mapstructure:"transport"`
	Attempts       int           `mapstructure:"attempts"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`

	Location    string `mapstructure:"location"`
	DebugDir    string `mapstructure:"debug_dir"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	Log logging.Config `mapstructure:"log"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Environment:    string(orchestrator.EnvironmentBeta),
		Codec:          orchestrator.CodecProto,
		Transport:      orchestrator.DefaultTransport,
		Attempts:       orchestrator.DefaultAttempts,
		AttemptTimeout: orchestrator.DefaultAttemptTimeout,
		Location:       orchestrator.DefaultLocation,
		Log: logging.Config{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies ORCH_*
// environment variables.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("environment", d.Environment)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("codec", d.Codec)
	v.SetDefault("transport", d.Transport)
	v.SetDefault("attempts", d.Attempts)
	v.SetDefault("attempt_timeout", d.AttemptTimeout)
	v.SetDefault("location", d.Location)
	v.SetDefault("debug_dir", d.DebugDir)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.outputs", d.Log.Outputs)
	v.SetDefault("log.development", d.Log.Development)
}

// Validate checks the fields that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Attempts <= 0 {
		return errors.New("attempts must be positive")
	}
	if c.AttemptTimeout < 0 {
		return errors.New("attempt_timeout must not be negative")
	}
	if c.BaseURL == "" {
		if _, err := orchestrator.ParseEnvironment(c.Environment); err != nil {
			return err
		}
	}
	return nil
}

// OrchestratorURL resolves the base URL.
func (c *Config) OrchestratorURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	env, err := orchestrator.ParseEnvironment(c.Environment)
	if err != nil {
		return ""
	}
	return env.OrchestratorURL()
}
