// Package config loads settings for the godice command and for hosts that
// embed the engine.
//
// Settings come from three layers, later layers winning:
//  1. built-in defaults
//  2. an optional TOML or YAML file, picked by extension
//  3. GODICE_* environment variables
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/godice/pkg/ext/extdnd5e"
)

// Format represents the configuration file format.
type Format int

const (
	// FormatTOML represents TOML format (default)
	FormatTOML Format = iota

	// FormatYAML represents YAML format
	FormatYAML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// Config holds the settings.
type Config struct {
	// Seed makes rolls reproducible. Zero means a fresh random seed.
	Seed uint64 `toml:"seed" yaml:"seed" env:"GODICE_SEED"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level" env:"GODICE_LOG_LEVEL"`
	// LogFormat is text or json.
	LogFormat string `toml:"log_format" yaml:"log_format" env:"GODICE_LOG_FORMAT"`
	// CacheSize is the number of parsed notations kept. Zero disables the cache.
	CacheSize int `toml:"cache_size" yaml:"cache_size" env:"GODICE_CACHE_SIZE"`
	// EffectsFile replaces the wild magic surge table.
	EffectsFile string `toml:"effects_file" yaml:"effects_file" env:"GODICE_EFFECTS_FILE"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		CacheSize: 256,
	}
}

// Load reads defaults, then the file at path when path is not empty,
// then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := decode(content, format, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func decode(content []byte, format Format, target any) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(content, target)
	default:
		_, err := toml.Decode(string(content), target)
		return err
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: expected text or json", c.LogFormat)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache size %d", c.CacheSize)
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Logger builds a logger writing to w with the configured level and format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoadEffects reads a surge table from a TOML or YAML file holding an
// "effects" list.
func LoadEffects(path string) ([]string, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read effects: %w", err)
	}
	if format == FormatYAML {
		return extdnd5e.ParseEffects(content)
	}
	var table extdnd5e.EffectTable
	if err := decode(content, format, &table); err != nil {
		return nil, fmt.Errorf("parse effects %s: %w", path, err)
	}
	if len(table.Effects) == 0 {
		return nil, fmt.Errorf("parse effects %s: table is empty", path)
	}
	return table.Effects, nil
}
