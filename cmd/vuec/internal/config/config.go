package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/recera/vuec/pkg/compiler/converter"
)

// FileName is the project configuration file looked up by Load.
const FileName = "vuec.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Log formats.
const (
	LogAuto     = "auto"
	LogJSON     = "json"
	LogTerminal = "terminal"
)

// Config represents the vuec.yaml configuration
type Config struct {
	// Input is the document or directory compiled when no path is given.
	Input string `yaml:"input,omitempty"`

	// Directives lists the builtin directive converters to enable.
	Directives []string `yaml:"directives,omitempty"`

	Passes *PassesConfig `yaml:"passes,omitempty"`
	Output *OutputConfig `yaml:"output,omitempty"`
	Cache  *CacheConfig  `yaml:"cache,omitempty"`
	Log    *LogConfig    `yaml:"log,omitempty"`
}

// PassesConfig selects the optional transform passes.
type PassesConfig struct {
	// MergeText merges adjacent text nodes. A nil value means enabled.
	MergeText *bool `yaml:"mergeText,omitempty"`

	// Trace logs every transform hook at debug level.
	Trace bool `yaml:"trace,omitempty"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	// Format is "text" or "json".
	Format string `yaml:"format,omitempty"`
}

// CacheConfig controls the on-disk result cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir,omitempty"`
	MaxEntries int    `yaml:"maxEntries,omitempty"`
}

// LogConfig controls the clue logger.
type LogConfig struct {
	Debug bool `yaml:"debug,omitempty"`

	// Format is "auto", "json" or "terminal". Auto picks terminal output
	// when stderr is a TTY.
	Format string `yaml:"format,omitempty"`
}

// Load loads configuration from vuec.yaml in projectPath
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	// Return default config if no file exists
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from an explicit path.
func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &config, nil
}

// Save saves configuration to vuec.yaml in projectPath
func Save(config *Config, projectPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), data, 0o644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	mergeText := true
	return &Config{
		Input:      ".",
		Directives: converter.DefaultRegistry().Names(),
		Passes: &PassesConfig{
			MergeText: &mergeText,
		},
		Output: &OutputConfig{
			Format: FormatText,
		},
		Cache: &CacheConfig{
			Enabled:    true,
			MaxEntries: 256,
		},
		Log: &LogConfig{
			Format: LogAuto,
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Input == "" {
		config.Input = defaults.Input
	}
	if config.Directives == nil {
		config.Directives = defaults.Directives
	}

	if config.Passes == nil {
		config.Passes = defaults.Passes
	} else if config.Passes.MergeText == nil {
		config.Passes.MergeText = defaults.Passes.MergeText
	}

	if config.Output == nil {
		config.Output = defaults.Output
	} else if config.Output.Format == "" {
		config.Output.Format = defaults.Output.Format
	}

	// A cache section without maxEntries keeps the default limit; an
	// absent section keeps the cache enabled.
	if config.Cache == nil {
		config.Cache = defaults.Cache
	} else if config.Cache.MaxEntries == 0 {
		config.Cache.MaxEntries = defaults.Cache.MaxEntries
	}

	if config.Log == nil {
		config.Log = defaults.Log
	} else if config.Log.Format == "" {
		config.Log.Format = defaults.Log.Format
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	known := converter.DefaultRegistry()
	for _, d := range c.Directives {
		if _, ok := known.Lookup(d); !ok {
			errs = append(errs, fmt.Errorf("unknown directive %q", d))
		}
	}
	if c.Output != nil {
		switch c.Output.Format {
		case FormatText, FormatJSON:
		default:
			errs = append(errs, fmt.Errorf("unknown output format %q", c.Output.Format))
		}
	}
	if c.Cache != nil && c.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("cache.maxEntries must not be negative, got %d", c.Cache.MaxEntries))
	}
	if c.Log != nil {
		switch c.Log.Format {
		case LogAuto, LogJSON, LogTerminal:
		default:
			errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
		}
	}
	return errors.Join(errs...)
}

// MergeText reports whether the text merging pass is enabled.
func (c *Config) MergeText() bool {
	if c.Passes == nil || c.Passes.MergeText == nil {
		return true
	}
	return *c.Passes.MergeText
}
