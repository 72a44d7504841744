// Package config loads the demo application settings from TOML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	World   WorldConfig   `toml:"world"`
	Effects EffectsConfig `toml:"effects"`
	Logging LoggingConfig `toml:"logging"`
	Render  RenderConfig  `toml:"render"`
}

type WindowConfig struct {
	Width    float32       `toml:"width"`
	Height   float32       `toml:"height"`
	TickRate time.Duration `toml:"tick_rate"`
}

type WorldConfig struct {
	InitialCapacity int `toml:"initial_capacity"`
}

type EffectsConfig struct {
	MaxConcurrent int64 `toml:"max_concurrent"` // effects running at once
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RenderConfig struct {
	Output string `toml:"output"` // PNG written after the last frame, empty to skip
	Frames int    `toml:"frames"`
}

// Load reads path and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse overlays a TOML document on the defaults.
func Parse(doc string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(doc, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:    800,
			Height:   600,
			TickRate: 16 * time.Millisecond,
		},
		World: WorldConfig{
			InitialCapacity: 1024,
		},
		Effects: EffectsConfig{
			MaxConcurrent: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Render: RenderConfig{
			Frames: 3,
		},
	}
}

func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size %gx%g must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.TickRate <= 0 {
		return fmt.Errorf("config: window.tick_rate must be positive, got %s", c.Window.TickRate)
	}
	if c.Effects.MaxConcurrent <= 0 {
		return fmt.Errorf("config: effects.max_concurrent must be positive, got %d", c.Effects.MaxConcurrent)
	}
	if c.World.InitialCapacity < 0 {
		return fmt.Errorf("config: world.initial_capacity must not be negative")
	}
	return nil
}
