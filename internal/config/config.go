// Package config provides configuration loading and validation for the launch dashboard.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no -config flag is given.
const DefaultPath = "dashboard.toml"

// Config represents the main configuration structure
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Slider  SliderConfig  `toml:"slider" yaml:"slider"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Export  ExportConfig  `toml:"export" yaml:"export"`
}

// GeneralConfig contains general settings
type GeneralConfig struct {
	DataPath string `toml:"data_path" yaml:"data_path"`
	Title    string `toml:"title" yaml:"title"`
	ColorBy  string `toml:"color_by" yaml:"color_by"` // booster_version, booster_category
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	ListenAddr        string  `toml:"listen_addr" yaml:"listen_addr"`
	ReadHeaderTimeout string  `toml:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   string  `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	CompressionLevel  int     `toml:"compression_level" yaml:"compression_level"`
	ChartRate         float64 `toml:"chart_rate" yaml:"chart_rate"` // chart renders per second
}

// SliderConfig controls the payload range selector
type SliderConfig struct {
	Step float64 `toml:"step" yaml:"step"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // console, json
}

// ExportConfig controls static exports
type ExportConfig struct {
	OutputDir   string   `toml:"output_dir" yaml:"output_dir"`
	Concurrency int      `toml:"concurrency" yaml:"concurrency"`
	Formats     []string `toml:"formats" yaml:"formats"`
}

// Default returns a complete configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.General.DataPath == "" {
		c.General.DataPath = "spacex_launch_dash.csv"
	}
	if c.General.Title == "" {
		c.General.Title = "SpaceX Launch Records Dashboard"
	}
	if c.General.ColorBy == "" {
		c.General.ColorBy = "booster_version"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1:8050"
	}
	if c.Server.ReadHeaderTimeout == "" {
		c.Server.ReadHeaderTimeout = "10s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "5s"
	}
	if c.Server.CompressionLevel == 0 {
		c.Server.CompressionLevel = 5
	}
	if c.Server.ChartRate == 0 {
		c.Server.ChartRate = 20
	}
	if c.Slider.Step == 0 {
		c.Slider.Step = 1000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "./results"
	}
	if c.Export.Concurrency <= 0 {
		c.Export.Concurrency = 4
	}
	if len(c.Export.Formats) == 0 {
		c.Export.Formats = []string{"html", "md", "json", "png"}
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.General.ColorBy {
	case "booster_version", "booster_category":
	default:
		return fmt.Errorf("general.color_by has invalid value: %s", c.General.ColorBy)
	}
	if c.Slider.Step < 0 || math.IsNaN(c.Slider.Step) || math.IsInf(c.Slider.Step, 0) {
		return fmt.Errorf("slider.step must be > 0, got %g", c.Slider.Step)
	}
	if c.Server.CompressionLevel < 1 || c.Server.CompressionLevel > 9 {
		return fmt.Errorf("server.compression_level must be between 1 and 9, got %d", c.Server.CompressionLevel)
	}
	if c.Server.ChartRate < 0 {
		return fmt.Errorf("server.chart_rate must be > 0, got %g", c.Server.ChartRate)
	}
	if _, err := time.ParseDuration(c.Server.ReadHeaderTimeout); err != nil {
		return fmt.Errorf("server.read_header_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format has invalid value: %s", c.Log.Format)
	}
	for _, f := range c.Export.Formats {
		switch f {
		case "html", "md", "json", "png":
		default:
			return fmt.Errorf("export.formats contains invalid format: %s", f)
		}
	}
	return nil
}

// ReadHeaderTimeoutDuration parses the read header timeout into a Duration
func (s ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.ReadHeaderTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ShutdownTimeoutDuration parses the shutdown timeout into a Duration
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// validatePath checks for path traversal attempts
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	// Reject paths that climb above the working directory
	if strings.HasPrefix(cleanPath, "..") || strings.Contains(cleanPath, "../") {
		return fmt.Errorf("path contains invalid traversal sequence: %s", path)
	}

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads and parses a TOML or YAML configuration file
func Load(path string) (*Config, error) {
	if err := validatePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// #nosec G304 - Path validated above, this is intentional file inclusion
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when path is the default
// config file and it does not exist. A missing explicit path is an error.
func LoadOrDefault(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
