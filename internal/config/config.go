package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/textscreen/internal/video/core"
)

// Backend names.
const (
	BackendTcell = "tcell"
	BackendANSI  = "ansi"
	BackendNull  = "null"
)

// Geometry limits.
const (
	MaxWidth  = 4096
	MaxHeight = 4096
)

// Config is the complete server configuration.
type Config struct {
	Display  DisplayConfig     `toml:"display"`
	Log      LogConfig         `toml:"log"`
	Backends []string          `toml:"backends"`
	ANSI     ANSIConfig        `toml:"ansi"`
	Palette  map[string]string `toml:"palette,omitempty"`
}

// DisplayConfig holds the initial screen geometry.
type DisplayConfig struct {
	Width     int  `toml:"width"`
	Height    int  `toml:"height"`
	MouseFlip bool `toml:"mouse_flip"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"` // empty means stderr
}

// ANSIConfig configures the ANSI stream backend.
type ANSIConfig struct {
	Output string `toml:"output,omitempty"` // device path; empty means stdout
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:     100,
			Height:    30,
			MouseFlip: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Backends: []string{BackendTcell},
	}
}

// Load builds the configuration from the defaults, the file at path (if
// any) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := NewEnvLoader(EnvPrefix).Apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field string, value any, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
	}

	if c.Display.Width <= 0 || c.Display.Width > MaxWidth {
		bad("display.width", c.Display.Width, "must be between 1 and %d", MaxWidth)
	}
	if c.Display.Height <= 0 || c.Display.Height > MaxHeight {
		bad("display.height", c.Display.Height, "must be between 1 and %d", MaxHeight)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		bad("log.level", c.Log.Level, "must be debug, info, warn, or error")
	}

	if len(c.Backends) == 0 {
		bad("backends", c.Backends, "at least one backend is required")
	}
	seen := make(map[string]bool)
	for _, b := range c.Backends {
		switch b {
		case BackendTcell, BackendANSI, BackendNull:
		default:
			bad("backends", b, "unknown backend")
			continue
		}
		if seen[b] {
			bad("backends", b, "listed twice")
		}
		seen[b] = true
	}
	if seen[BackendTcell] && seen[BackendANSI] && c.ANSI.Output == "" {
		bad("ansi.output", c.ANSI.Output, "must name a device when tcell owns the terminal")
	}

	if len(c.Palette) > 0 {
		p := core.DefaultPalette()
		if err := p.Override(c.Palette); err != nil {
			bad("palette", c.Palette, "%v", err)
		}
	}

	return errors.Join(errs...)
}

// ColorPalette returns the default palette with the configured overrides.
func (c *Config) ColorPalette() (core.Palette, error) {
	p := core.DefaultPalette()
	if err := p.Override(c.Palette); err != nil {
		return p, err
	}
	return p, nil
}

// TOML encodes the configuration.
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}
