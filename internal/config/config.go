// Package config loads momosync settings from an optional YAML file and the environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment
// variables, then command-line flags (applied by the cli package).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/akhdanfadh/momosync/internal/maimemo"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultLockTTL     = 30 * time.Second
	defaultReadFailure = "empty"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)

// Config holds all application configuration.
//
// NOTE: env tags carry no envDefault on purpose: a default would overwrite a
// value already read from the YAML file. Defaults are applied afterwards.
type Config struct {
	// Maimemo API
	Token   string        `yaml:"token" env:"MAIMEMO_TOKEN"`
	Notepad string        `yaml:"notepad" env:"MAIMEMO_NOTEPAD"`
	BaseURL string        `yaml:"baseURL" env:"MAIMEMO_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"MAIMEMO_TIMEOUT"`

	// What to do when the current words cannot be read: empty or propagate
	ReadFailure string `yaml:"readFailure" env:"MAIMEMO_READ_FAILURE"`

	// Cross-process locking (optional)
	LockRedisURL string        `yaml:"lockRedisURL" env:"MOMOSYNC_REDIS_URL"`
	LockTTL      time.Duration `yaml:"lockTTL" env:"MOMOSYNC_LOCK_TTL"`

	// Logging
	LogLevel  string `yaml:"logLevel" env:"LOG_LEVEL"`
	LogFormat string `yaml:"logFormat" env:"LOG_FORMAT"`
}

// Load reads the YAML file at path (skipped when path is empty), overlays
// environment variables and fills in defaults. It does not validate; call
// Validate once flags have been applied.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = maimemo.DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.ReadFailure == "" {
		c.ReadFailure = defaultReadFailure
	}
	if c.LockTTL == 0 {
		c.LockTTL = defaultLockTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
}

// Validate checks that the settings needed to talk to the API are present and sane.
func (c *Config) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, errors.New("token is required (set MAIMEMO_TOKEN or --token)"))
	}
	if c.Notepad == "" {
		errs = append(errs, errors.New("notepad title is required (set MAIMEMO_NOTEPAD or --notepad)"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("lock TTL must be positive, got %s", c.LockTTL))
	}
	if _, err := c.ReadFailurePolicy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ReadFailurePolicy returns the parsed ReadFailure setting.
func (c *Config) ReadFailurePolicy() (maimemo.ReadFailurePolicy, error) {
	return maimemo.ParseReadFailurePolicy(c.ReadFailure)
}
