package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carbon-credit-engine/internal/methodology"
	"github.com/rshade/carbon-credit-engine/internal/numeric"
)

const (
	envConfig             = "CARBON_ENGINE_CONFIG"
	envLogLevel           = "CARBON_ENGINE_LOG_LEVEL"
	envLogFormat          = "CARBON_ENGINE_LOG_FORMAT"
	envDefaultMethodology = "CARBON_ENGINE_DEFAULT_METHODOLOGY"
	envDefaultProjectType = "CARBON_ENGINE_DEFAULT_PROJECT_TYPE"
	envGridEFFile         = "CARBON_ENGINE_GRID_EF_FILE"

	logFormatConsole = "console"
	logFormatJSON    = "json"

	defaultLogLevel    = "info"
	defaultProjectType = "solar"
)

// Config holds the CLI settings. Values come from an optional YAML file and
// are then overridden by CARBON_ENGINE_* environment variables.
type Config struct {
	LogLevel           string `yaml:"log_level"`
	LogFormat          string `yaml:"log_format"`
	DefaultMethodology string `yaml:"default_methodology"`
	DefaultProjectType string `yaml:"default_project_type"`

	// GridEFFile replaces the embedded grid emission factor dataset.
	GridEFFile string `yaml:"grid_ef_file"`

	// EFOverrides maps a country code to the emission factor used when no
	// explicit override is passed on the command line.
	EFOverrides map[string]float64 `yaml:"ef_overrides"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:           defaultLogLevel,
		LogFormat:          logFormatConsole,
		DefaultMethodology: methodology.IDAMSID,
		DefaultProjectType: defaultProjectType,
	}
}

// loadConfig reads the file at path (or $CARBON_ENGINE_CONFIG when path is
// empty), applies environment overrides and replaces invalid values with
// their defaults. Only an unreadable or malformed file is an error.
func loadConfig(path string, registry *methodology.Registry, logger zerolog.Logger) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path != "" {
		if err := readConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
		logger.Debug().Str("path", path).Msg("config file loaded")
	}

	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(envDefaultMethodology); v != "" {
		cfg.DefaultMethodology = v
	}
	if v := os.Getenv(envDefaultProjectType); v != "" {
		cfg.DefaultProjectType = v
	}
	if v := os.Getenv(envGridEFFile); v != "" {
		cfg.GridEFFile = v
	}

	cfg.sanitize(registry, logger)
	return cfg, nil
}

func readConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) sanitize(registry *methodology.Registry, logger zerolog.Logger) {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		logger.Warn().Str("value", c.LogLevel).Msg("invalid log level, using default")
		c.LogLevel = defaultLogLevel
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != logFormatConsole && c.LogFormat != logFormatJSON {
		logger.Warn().Str("value", c.LogFormat).Msg("invalid log format, using default")
		c.LogFormat = logFormatConsole
	}

	if _, err := registry.Get(c.DefaultMethodology); err != nil {
		logger.Warn().Str("value", c.DefaultMethodology).Msg("unknown default methodology, using default")
		c.DefaultMethodology = methodology.IDAMSID
	}

	c.DefaultProjectType = strings.ToLower(strings.TrimSpace(c.DefaultProjectType))
	if c.DefaultProjectType == "" {
		c.DefaultProjectType = defaultProjectType
	}

	overrides := make(map[string]float64, len(c.EFOverrides))
	for country, ef := range c.EFOverrides {
		if ef < 0 || !numeric.IsFinite(ef) {
			logger.Warn().
				Str("country_code", country).
				Float64("value", ef).
				Msg("invalid emission factor override ignored")
			continue
		}
		overrides[strings.ToUpper(strings.TrimSpace(country))] = ef
	}
	c.EFOverrides = overrides
}

// efOverride returns the configured emission factor for countryCode.
func (c Config) efOverride(countryCode string) (float64, bool) {
	ef, ok := c.EFOverrides[strings.ToUpper(countryCode)]
	return ef, ok
}

// newLogger builds the process logger described by c.
func (c Config) newLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if c.LogFormat == logFormatJSON {
		logger = zerolog.New(w)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Str("service", serviceName).Logger()
}
