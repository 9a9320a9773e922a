package config

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearDBEnv(t *testing.T) {
	for _, name := range envBindings {
		t.Setenv(name, "")
	}
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		baseYAML string // Base YAML config
		envYAML  string // Environment-specific YAML (optional)
		env      string
		check    func(t *testing.T, cfg *Config)
		wantErr  bool
	}{
		{
			name: "defaults without any file",
			env:  "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "dev", cfg.Env)
				assert.Equal(t, "https://openexchangerates.org/api/latest.json", cfg.API.BaseURL)
				assert.Equal(t, 30*time.Second, cfg.API.Timeout)
				assert.Equal(t, "EGP", cfg.API.Currency)
				assert.Equal(t, 0, cfg.Extract.Backoff.RetryMax)
				assert.Equal(t, 3306, cfg.Database.Port)
				assert.Equal(t, []string{"orders", "order_items"}, cfg.Database.Tables)
				assert.Equal(t, PathsConfig{
					DataLake:       "DataLake",
					Extracted:      "extracted",
					Staging1:       "staging_1",
					Staging2:       "staging_2",
					Mart:           "Information_Mart",
					QualityReports: "quality_reports",
					Visualizations: "Visualizations",
				}, cfg.Paths)
				assert.False(t, cfg.Warehouse.Enabled)
				assert.Equal(t, "0 2 * * *", cfg.Schedule.Cron)
			},
		},
		{
			name: "base file overrides defaults",
			baseYAML: `
api:
  timeout: 5s
  currency: USD
extract:
  backoff:
    retry_max: 2
paths:
  extracted: /tmp/extracted
warehouse:
  enabled: true
  path: "test.db"
  post_load_queries:
    - sql/views.sql
`,
			env: "prod",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "prod", cfg.Env)
				assert.Equal(t, 5*time.Second, cfg.API.Timeout)
				assert.Equal(t, "USD", cfg.API.Currency)
				assert.Equal(t, 2, cfg.Extract.Backoff.RetryMax)
				assert.Equal(t, "/tmp/extracted", cfg.Paths.Extracted)
				assert.Equal(t, "staging_1", cfg.Paths.Staging1)
				assert.Equal(t, WarehouseConfig{
					Enabled:         true,
					Path:            "test.db",
					PostLoadQueries: []string{"sql/views.sql"},
				}, cfg.Warehouse)
			},
		},
		{
			name: "environment file is merged",
			baseYAML: `
log:
  level: info
`,
			envYAML: `
log:
  level: debug
  format: text
`,
			env: "test",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, LogConfig{Level: "debug", Format: "text"}, cfg.Log)
			},
		},
		{
			name:     "invalid base yaml",
			baseYAML: "api: [unclosed",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearDBEnv(t)

			var base, env io.Reader
			if tt.baseYAML != "" {
				base = strings.NewReader(tt.baseYAML)
			}
			if tt.envYAML != "" {
				env = strings.NewReader(tt.envYAML)
			}

			cfg, err := NewConfig(base, env, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "etl")
	t.Setenv("DB_PASS", "pw")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "retail")

	cfg, err := NewConfig(nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.API.Key)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "etl", cfg.Database.User)
	assert.Equal(t, "pw", cfg.Database.Pass)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.Equal(t, "retail", cfg.Database.Name)
}
