// Package config loads dronectl settings.
//
// Precedence, lowest to highest: built-in defaults, the YAML file,
// DRONECTL_* environment variables, command-line flags (applied by the
// cli package).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the complete dronectl configuration.
type Config struct {
	// LogLevel is the minimum diagnostic level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogFormat selects text or json diagnostics.
	LogFormat string `yaml:"log_format"`

	// TelemetryCapacity bounds the telemetry log. Default: 512.
	TelemetryCapacity int `yaml:"telemetry_capacity"`

	// Color is auto, always or never. Auto colours only a terminal
	// without NO_COLOR set.
	Color string `yaml:"color"`

	// Profile is the path of a CUE vehicle profile. Empty selects the
	// embedded quadcopter profile.
	Profile string `yaml:"profile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:          "warn",
		LogFormat:         "text",
		TelemetryCapacity: 512,
		Color:             ColorAuto,
	}
}

// Load reads the YAML file at path over the defaults and then applies the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode parses YAML onto cfg, rejecting unknown fields.
func (c *Config) decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from DRONECTL_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DRONECTL_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("DRONECTL_LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := lookup("DRONECTL_TELEMETRY_CAPACITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DRONECTL_TELEMETRY_CAPACITY: %q is not an integer", v)
		}
		c.TelemetryCapacity = n
	}
	if v, ok := lookup("DRONECTL_COLOR"); ok {
		c.Color = v
	}
	if v, ok := lookup("DRONECTL_PROFILE"); ok {
		c.Profile = v
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: %q must be debug, info, warn or error", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format: %q must be text or json", c.LogFormat))
	}
	if c.TelemetryCapacity < 1 {
		errs = append(errs, fmt.Errorf("telemetry_capacity: must be positive, got %d", c.TelemetryCapacity))
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("color: %q must be auto, always or never", c.Color))
	}

	return errors.Join(errs...)
}
