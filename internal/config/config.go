// Package config loads process configuration from an optional file and ATS_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. ATS_RULES_SOURCE for rules.source
const EnvPrefix = "ATS"

// Rule sources accepted by rules.source
const (
	RulesEmbedded = "embedded"
	RulesDir      = "dir"
	RulesPostgres = "postgres"
)

// Config is the process configuration. All fields are optional; the defaults
// below apply when neither the file nor the environment sets a key.
type Config struct {
	Port        int    `mapstructure:"port"`
	DatabaseURL string `mapstructure:"database_url"`

	Rules     RulesConfig     `mapstructure:"rules"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Server    ServerConfig    `mapstructure:"server"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
}

// RulesConfig selects where rule documents are read from
type RulesConfig struct {
	Source string `mapstructure:"source"` // embedded, dir or postgres
	Dir    string `mapstructure:"dir"`    // Directory holding <name>.json when source is dir
}

// LogConfig controls the zap logger
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// RateLimitConfig controls per-client limiting of the HTTP API
type RateLimitConfig struct {
	RequestsPerMinute int    `mapstructure:"requests_per_minute"` // 0 disables limiting
	Burst             int    `mapstructure:"burst"`
	Whitelist         string `mapstructure:"whitelist"` // Comma-separated client IPs
}

// ServerConfig holds HTTP API limits
type ServerConfig struct {
	MaxBatchItems int `mapstructure:"max_batch_items"`
}

// AnalysisConfig tunes the pipeline
type AnalysisConfig struct {
	Concurrency  int `mapstructure:"concurrency"`
	MaxTextBytes int `mapstructure:"max_text_bytes"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("database_url", "")
	v.SetDefault("rules.source", RulesEmbedded)
	v.SetDefault("rules.dir", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("ratelimit.requests_per_minute", 60)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("ratelimit.whitelist", "")
	v.SetDefault("server.max_batch_items", 50)
	v.SetDefault("analysis.concurrency", 4)
	v.SetDefault("analysis.max_text_bytes", 200_000)
}

// New returns a viper instance with defaults and environment binding
// configured. Environment variables override the config file.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the config file at path, if any, and applies environment
// overrides. An empty path means defaults plus environment only.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Rules.Source {
	case RulesEmbedded:
	case RulesDir:
		if c.Rules.Dir == "" {
			errs = append(errs, errors.New("config error: 'rules.dir' is required when 'rules.source' is dir"))
		}
	case RulesPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("config error: 'database_url' is required when 'rules.source' is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("config error: unknown 'rules.source' %q", c.Rules.Source))
	}

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config error: 'port' %d out of range", c.Port))
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("config error: rate limits must be non-negative"))
	}
	if c.Server.MaxBatchItems < 0 {
		errs = append(errs, errors.New("config error: 'server.max_batch_items' must be non-negative"))
	}
	if c.Analysis.Concurrency < 0 || c.Analysis.MaxTextBytes < 0 {
		errs = append(errs, errors.New("config error: analysis limits must be non-negative"))
	}

	return errors.Join(errs...)
}
