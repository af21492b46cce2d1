package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	defaultFormat          = "console"
	defaultMissingValue    = "N/A"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultRateLimitRPS    = 25.0
	defaultRateLimitBurst  = 50
	defaultMaxRequestBytes = 4 << 20

	// DefaultConfigFile is looked up under the XDG config directories when no
	// --config flag is given.
	DefaultConfigFile = "propcompare/config.yaml"
)

// ErrInvalidConfig wraps validation failures of the resolved configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Format               string
	OutputFile           string
	MissingValue         string
	NoColor              bool
	Preview              bool
	PreviewWidth         int
	Workers              int
	LogLevel             string
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	MaxRequestBytes      int64
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Format               string        `yaml:"format"`
	OutputFile           string        `yaml:"output_file"`
	MissingValue         string        `yaml:"missing_value"`
	NoColor              *bool         `yaml:"no_color"`
	Preview              *bool         `yaml:"preview"`
	PreviewWidth         *int          `yaml:"preview_width"`
	Workers              *int          `yaml:"workers"`
	LogLevel             string        `yaml:"log_level"`
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	MaxRequestBytes      *int64        `yaml:"max_request_bytes"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides. Nil pointers leave the
// lower-precedence value untouched.
type CLIOverrides struct {
	ConfigFile     string
	Format         *string
	OutputFile     *string
	MissingValue   *string
	NoColor        *bool
	Preview        *bool
	Workers        *int
	LogLevel       *string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// searchConfigFile resolves the default config file; replaced in tests.
var searchConfigFile = func() (string, bool) {
	path, err := xdg.SearchConfigFile(DefaultConfigFile)
	if err != nil {
		return "", false
	}
	return path, true
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := Defaults()

	// Apply environment variables
	applyEnvConfig(&cfg)

	// Load from YAML file if specified or found in the XDG config dirs
	configFile := ""
	if overrides != nil {
		configFile = overrides.ConfigFile
	}
	if configFile == "" {
		if found, ok := searchConfigFile(); ok {
			configFile = found
		}
	}
	if configFile != "" {
		yamlCfg, err := loadFromFile(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config %s: %w", configFile, err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Format:               defaultFormat,
		MissingValue:         defaultMissingValue,
		Workers:              4,
		LogLevel:             defaultLogLevel,
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		MaxRequestBytes:      defaultMaxRequestBytes,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Format != "" {
		cfg.Format = yamlCfg.Format
	}
	if yamlCfg.OutputFile != "" {
		cfg.OutputFile = yamlCfg.OutputFile
	}
	if yamlCfg.MissingValue != "" {
		cfg.MissingValue = yamlCfg.MissingValue
	}
	if yamlCfg.NoColor != nil {
		cfg.NoColor = *yamlCfg.NoColor
	}
	if yamlCfg.Preview != nil {
		cfg.Preview = *yamlCfg.Preview
	}
	if yamlCfg.PreviewWidth != nil {
		cfg.PreviewWidth = *yamlCfg.PreviewWidth
	}
	if yamlCfg.Workers != nil {
		cfg.Workers = *yamlCfg.Workers
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.field = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.MaxRequestBytes != nil {
		cfg.MaxRequestBytes = *yamlCfg.MaxRequestBytes
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if format := strings.TrimSpace(os.Getenv("PROPCOMPARE_FORMAT")); format != "" {
		cfg.Format = format
	}

	if output := strings.TrimSpace(os.Getenv("PROPCOMPARE_OUTPUT")); output != "" {
		cfg.OutputFile = output
	}

	if missing := os.Getenv("PROPCOMPARE_MISSING"); missing != "" {
		cfg.MissingValue = missing
	}

	// https://no-color.org: any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}

	if workers := strings.TrimSpace(os.Getenv("PROPCOMPARE_WORKERS")); workers != "" {
		if value, err := strconv.Atoi(workers); err == nil && value > 0 {
			cfg.Workers = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Format != nil && *overrides.Format != "" {
		cfg.Format = *overrides.Format
	}
	if overrides.OutputFile != nil && *overrides.OutputFile != "" {
		cfg.OutputFile = *overrides.OutputFile
	}
	if overrides.MissingValue != nil && *overrides.MissingValue != "" {
		cfg.MissingValue = *overrides.MissingValue
	}
	if overrides.NoColor != nil && *overrides.NoColor {
		cfg.NoColor = true
	}
	if overrides.Preview != nil && *overrides.Preview {
		cfg.Preview = true
	}
	if overrides.Workers != nil && *overrides.Workers > 0 {
		cfg.Workers = *overrides.Workers
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration. The report format is not
// checked here; unknown formats fall back to console output.
func validateConfig(cfg Config) error {
	if cfg.MissingValue == "" {
		return fmt.Errorf("%w: missing value placeholder cannot be empty", ErrInvalidConfig)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1", ErrInvalidConfig)
	}
	if cfg.PreviewWidth < 0 {
		return fmt.Errorf("%w: preview width must be >= 0", ErrInvalidConfig)
	}
	if cfg.MaxRequestBytes <= 0 {
		return fmt.Errorf("%w: max request bytes must be > 0", ErrInvalidConfig)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("%w: RATE_LIMIT_RPS must be >= 0", ErrInvalidConfig)
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("%w: RATE_LIMIT_BURST must be >= 0", ErrInvalidConfig)
	}
	return nil
}
