package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. OBV_SERVER_PORT.
const EnvPrefix = "OBV"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Filters   FiltersConfig   `yaml:"filters" envconfig:"FILTERS"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" split_words:"true"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
	RequestTimeout  time.Duration `yaml:"request_timeout" split_words:"true"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" split_words:"true"`
	EnableCORS     bool            `yaml:"enable_cors" split_words:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" split_words:"true"`
	RPS     float64 `yaml:"rps" split_words:"true"`
	Burst   int     `yaml:"burst" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true"`
	Output   string `yaml:"output" split_words:"true"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// Source kinds
const (
	SourceXLSX   = "xlsx"
	SourceFile   = "file"
	SourceSheets = "sheets"
)

// SourceConfig selects where the player workbook comes from
type SourceConfig struct {
	Kind            string        `yaml:"kind" split_words:"true"`
	URL             string        `yaml:"url" split_words:"true"`
	Path            string        `yaml:"path" split_words:"true"`
	Timeout         time.Duration `yaml:"timeout" split_words:"true"`
	MaxBytes        int64         `yaml:"max_bytes" split_words:"true"`
	SpreadsheetID   string        `yaml:"spreadsheet_id" split_words:"true"`
	Range           string        `yaml:"range" split_words:"true"`
	APIKey          string        `yaml:"api_key" split_words:"true"`
	CredentialsFile string        `yaml:"credentials_file" split_words:"true"`
}

// PipelineConfig picks the dashboard variant. Metrics, GroupColumn and
// CompetitionColumn override the preset when set.
type PipelineConfig struct {
	Preset            string   `yaml:"preset" split_words:"true"`
	Metrics           []string `yaml:"metrics" split_words:"true"`
	GroupColumn       string   `yaml:"group_column" split_words:"true"`
	CompetitionColumn string   `yaml:"competition_column" split_words:"true"`
}

// FiltersConfig holds the slider bounds offered to clients
type FiltersConfig struct {
	Age   SliderConfig `yaml:"age" envconfig:"AGE"`
	Usage SliderConfig `yaml:"usage" envconfig:"USAGE"`
}

// SliderConfig describes one numeric range input
type SliderConfig struct {
	Min        int `yaml:"min" split_words:"true"`
	Max        int `yaml:"max" split_words:"true"`
	Step       int `yaml:"step" split_words:"true"`
	DefaultMin int `yaml:"default_min" split_words:"true"`
	DefaultMax int `yaml:"default_max" split_words:"true"`
}

// ExportConfig contains file export configuration
type ExportConfig struct {
	Dir    string `yaml:"dir" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" split_words:"true"`
	WriteBufferSize int           `yaml:"write_buffer_size" split_words:"true"`
	MaxMessageSize  int64         `yaml:"max_message_size" split_words:"true"`
	PingPeriod      time.Duration `yaml:"ping_period" split_words:"true"`
	PongWait        time.Duration `yaml:"pong_wait" split_words:"true"`
	WriteWait       time.Duration `yaml:"write_wait" split_words:"true"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" split_words:"true"`
	Environment    string `yaml:"environment" split_words:"true"`
	TracingEnabled bool   `yaml:"tracing_enabled" split_words:"true"`
	MetricsEnabled bool   `yaml:"metrics_enabled" split_words:"true"`
}

// Load builds the configuration from defaults, the first config file found in
// the usual locations and OBV_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set are applied, so file values survive.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes enumerated values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	c.Logging.Output = strings.ToLower(c.Logging.Output)
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if err := c.Source.validate(); err != nil {
		return err
	}

	if c.Pipeline.Preset == "" {
		return fmt.Errorf("pipeline preset is required")
	}

	if err := c.Filters.Age.validate("age"); err != nil {
		return err
	}
	if err := c.Filters.Usage.validate("usage"); err != nil {
		return err
	}

	c.Export.Format = strings.ToLower(c.Export.Format)
	if c.Export.Format != "xlsx" && c.Export.Format != "csv" {
		return fmt.Errorf("invalid export format %q", c.Export.Format)
	}

	return nil
}

func (s *SourceConfig) validate() error {
	s.Kind = strings.ToLower(s.Kind)
	switch s.Kind {
	case SourceXLSX:
		if s.URL == "" {
			return fmt.Errorf("source url is required for kind %q", s.Kind)
		}
	case SourceFile:
		if s.Path == "" {
			return fmt.Errorf("source path is required for kind %q", s.Kind)
		}
	case SourceSheets:
		if s.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet id is required for kind %q", s.Kind)
		}
		if s.Range == "" {
			return fmt.Errorf("sheet range is required for kind %q", s.Kind)
		}
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}
	if s.MaxBytes < 0 {
		return fmt.Errorf("source max bytes cannot be negative")
	}
	return nil
}

func (s SliderConfig) validate(name string) error {
	if s.Min > s.Max {
		return fmt.Errorf("%s slider min %d exceeds max %d", name, s.Min, s.Max)
	}
	if s.Step <= 0 {
		return fmt.Errorf("%s slider step must be positive", name)
	}
	if s.DefaultMin < s.Min || s.DefaultMax > s.Max || s.DefaultMin > s.DefaultMax {
		return fmt.Errorf("%s slider default [%d, %d] outside [%d, %d]", name, s.DefaultMin, s.DefaultMax, s.Min, s.Max)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Source: SourceConfig{
			Kind:    SourceXLSX,
			URL:     DefaultSourceURL,
			Timeout: DefaultSourceTimeout,
			Range:   DefaultSheetRange,
		},
		Pipeline: PipelineConfig{
			Preset: DefaultPreset,
		},
		Filters: FiltersConfig{
			Age:   SliderConfig{Min: 15, Max: 35, Step: 1, DefaultMin: 15, DefaultMax: 35},
			Usage: SliderConfig{Min: 0, Max: 140, Step: 1, DefaultMin: 0, DefaultMax: 140},
		},
		Export: ExportConfig{
			Dir:    DefaultExportDir,
			Format: "xlsx",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxMessageSize:  64 * 1024,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
			WriteWait:       10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TracingEnabled: false,
			MetricsEnabled: true,
		},
	}
}
