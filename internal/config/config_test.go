package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(nil, "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, RulesEmbedded, cfg.Rules.Source)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, 50, cfg.Server.MaxBatchItems)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.Equal(t, 200_000, cfg.Analysis.MaxTextBytes)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := writeConfig(t, "ats.yaml", `
port: 9090
rules:
  source: dir
  dir: ./rules
log:
  json: true
ratelimit:
  requests_per_minute: 120
  whitelist: "10.0.0.1, 10.0.0.2"
analysis:
  max_text_bytes: 1000
`)

	cfg, err := LoadConfig(nil, path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, RulesDir, cfg.Rules.Source)
	assert.Equal(t, "./rules", cfg.Rules.Dir)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "10.0.0.1, 10.0.0.2", cfg.RateLimit.Whitelist)
	assert.Equal(t, 1000, cfg.Analysis.MaxTextBytes)
	// untouched keys keep their defaults
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
}

func TestLoadConfig_JSONFile(t *testing.T) {
	path := writeConfig(t, "ats.json", `{"port": 7000, "log": {"debug": true}}`)

	cfg, err := LoadConfig(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.True(t, cfg.Log.Debug)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "ats.yaml", "port: 9090\nanalysis:\n  concurrency: 2\n")
	t.Setenv("ATS_PORT", "9191")
	t.Setenv("ATS_ANALYSIS_CONCURRENCY", "8")
	t.Setenv("ATS_RULES_SOURCE", "postgres")
	t.Setenv("ATS_DATABASE_URL", "postgres://localhost/ats")

	cfg, err := LoadConfig(nil, path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, 8, cfg.Analysis.Concurrency)
	assert.Equal(t, RulesPostgres, cfg.Rules.Source)
	assert.Equal(t, "postgres://localhost/ats", cfg.DatabaseURL)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		cfg, err := LoadConfig(nil, "/nonexistent/path/ats.yaml")
		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "ats.yaml", "port: [unclosed")
		_, err := LoadConfig(nil, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, "ats.yaml", "rules:\n  source: s3\n")
		_, err := LoadConfig(nil, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown 'rules.source'")
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Port: 8080, Rules: RulesConfig{Source: RulesEmbedded}}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "dir without path", mutate: func(c *Config) { c.Rules.Source = RulesDir }, wantErr: "'rules.dir' is required"},
		{name: "postgres without url", mutate: func(c *Config) { c.Rules.Source = RulesPostgres }, wantErr: "'database_url' is required"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "out of range"},
		{name: "negative burst", mutate: func(c *Config) { c.RateLimit.Burst = -1 }, wantErr: "non-negative"},
		{name: "negative batch items", mutate: func(c *Config) { c.Server.MaxBatchItems = -1 }, wantErr: "max_batch_items"},
		{name: "negative concurrency", mutate: func(c *Config) { c.Analysis.Concurrency = -2 }, wantErr: "analysis limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
