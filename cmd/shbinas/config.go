package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
)

// ConfigFileName is looked up in the working directory when no --config
// flag is given.
const ConfigFileName = "shbinas.toml"

// Config holds the assembler CLI settings.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Assembler AssemblerConfig `toml:"assembler"`
}

// LogConfig selects the diagnostics logger.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
	Color  string `toml:"color"`  // auto, always or never
}

// AssemblerConfig holds assembly limits.
type AssemblerConfig struct {
	MaxErrors int `toml:"max_errors"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
			Color:  "auto",
		},
	}
}

// LoadConfig reads a TOML config file over the defaults. Unknown keys are
// rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveConfig loads path, or ConfigFileName from the working directory
// when path is empty. A missing default file yields DefaultConfig.
func ResolveConfig(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	cfg, err := LoadConfig(ConfigFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// Validate checks enumerated fields and limits.
func (c *Config) Validate() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	switch c.Log.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("log.color: unknown mode %q", c.Log.Color)
	}
	if c.Assembler.MaxErrors < 0 {
		return fmt.Errorf("assembler.max_errors: must not be negative, got %d", c.Assembler.MaxErrors)
	}
	return nil
}
