package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 1<<20, cfg.Server.MaxHeaderBytes)
	assert.Equal(t, SourceXLSX, cfg.Source.Kind)
	assert.Equal(t, DefaultSourceURL, cfg.Source.URL)
	assert.Equal(t, "obv", cfg.Pipeline.Preset)
	assert.Equal(t, SliderConfig{Min: 15, Max: 35, Step: 1, DefaultMin: 15, DefaultMax: 35}, cfg.Filters.Age)
	assert.Equal(t, SliderConfig{Min: 0, Max: 140, Step: 1, DefaultMin: 0, DefaultMax: 140}, cfg.Filters.Usage)
	assert.Equal(t, "xlsx", cfg.Export.Format)
	assert.True(t, cfg.Telemetry.MetricsEnabled)
	assert.False(t, cfg.Telemetry.TracingEnabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, SourceXLSX, cfg.Source.Kind)
				// an unprefixed variable such as PATH must not leak in
				assert.Empty(t, cfg.Source.Path)
				assert.Equal(t, "console", cfg.Logging.Output)
			},
		},
		{
			name: "environment variables",
			env: map[string]string{
				"OBV_SERVER_PORT":               "9090",
				"OBV_SERVER_READ_TIMEOUT":       "30s",
				"OBV_SECURITY_ALLOWED_ORIGINS":  "http://example.com,https://example.com",
				"OBV_SECURITY_RATE_LIMIT_RPS":   "5.5",
				"OBV_SOURCE_KIND":               "FILE",
				"OBV_SOURCE_PATH":               "/data/stats.xlsx",
				"OBV_PIPELINE_METRICS":          "OBV,xG",
				"OBV_FILTERS_AGE_DEFAULT_MAX":   "30",
				"OBV_EXPORT_FORMAT":             "CSV",
				"OBV_TELEMETRY_TRACING_ENABLED": "true",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 5.5, cfg.Security.RateLimit.RPS)
				assert.Equal(t, SourceFile, cfg.Source.Kind)
				assert.Equal(t, "/data/stats.xlsx", cfg.Source.Path)
				assert.Equal(t, []string{"OBV", "xG"}, cfg.Pipeline.Metrics)
				assert.Equal(t, 30, cfg.Filters.Age.DefaultMax)
				assert.Equal(t, 35, cfg.Filters.Age.Max)
				assert.Equal(t, "csv", cfg.Export.Format)
				assert.True(t, cfg.Telemetry.TracingEnabled)
			},
		},
		{
			name: "yaml file",
			file: `
server:
  port: 9191
  write_timeout: 2m
source:
  kind: sheets
  spreadsheet_id: abc123
  range: Players!A:AZ
pipeline:
  preset: league
logging:
  level: debug
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9191, cfg.Server.Port)
				assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, SourceSheets, cfg.Source.Kind)
				assert.Equal(t, "abc123", cfg.Source.SpreadsheetID)
				assert.Equal(t, "Players!A:AZ", cfg.Source.Range)
				assert.Equal(t, "league", cfg.Pipeline.Preset)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"OBV_SERVER_PORT": "7070"},
			file: "server:\n  port: 9191\n  idle_timeout: 5s\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.IdleTimeout)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"OBV_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "unparsable value",
			env:     map[string]string{"OBV_SERVER_PORT": "eighty"},
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			file:    "server: [unterminated",
			wantErr: true,
		},
		{
			name:    "unknown source kind",
			env:     map[string]string{"OBV_SOURCE_KIND": "ftp"},
			wantErr: true,
		},
		{
			name:    "sheets without spreadsheet id",
			env:     map[string]string{"OBV_SOURCE_KIND": "sheets"},
			wantErr: true,
		},
		{
			name:    "slider default outside bounds",
			env:     map[string]string{"OBV_FILTERS_USAGE_DEFAULT_MAX": "200"},
			wantErr: true,
		},
		{
			name:    "unsupported export format",
			env:     map[string]string{"OBV_EXPORT_FORMAT": "pdf"},
			wantErr: true,
		},
		{
			name:    "invalid logging output",
			env:     map[string]string{"OBV_LOGGING_OUTPUT": "syslog"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to load config from file")
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 6060\n")
	t.Setenv("OBV_CONFIG_FILE", path)

	assert.Equal(t, path, getConfigFilePath())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(c *Config) {},
		},
		{
			name:    "zero read timeout",
			modify:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "cors without origins",
			modify:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name: "cors disabled without origins",
			modify: func(c *Config) {
				c.Security.EnableCORS = false
				c.Security.AllowedOrigins = nil
			},
		},
		{
			name:    "rate limit without burst",
			modify:  func(c *Config) { c.Security.RateLimit.Burst = 0 },
			wantErr: "rate limit",
		},
		{
			name:    "xlsx without url",
			modify:  func(c *Config) { c.Source.URL = "" },
			wantErr: "source url",
		},
		{
			name:    "file without path",
			modify:  func(c *Config) { c.Source.Kind = SourceFile },
			wantErr: "source path",
		},
		{
			name:    "negative max bytes",
			modify:  func(c *Config) { c.Source.MaxBytes = -1 },
			wantErr: "max bytes",
		},
		{
			name:    "empty preset",
			modify:  func(c *Config) { c.Pipeline.Preset = "" },
			wantErr: "preset",
		},
		{
			name:    "inverted slider",
			modify:  func(c *Config) { c.Filters.Age.Min = 40 },
			wantErr: "age slider",
		},
		{
			name:    "zero step",
			modify:  func(c *Config) { c.Filters.Usage.Step = 0 },
			wantErr: "usage slider step",
		},
		{
			name: "file output gets a default path",
			modify: func(c *Config) {
				c.Logging.Output = "FILE"
				c.Logging.FilePath = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if cfg.Logging.Output == "file" {
				assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
			}
		})
	}
}
