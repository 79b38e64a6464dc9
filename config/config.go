// Package config loads slark settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Playback PlaybackConfig `yaml:"playback"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Instance InstanceConfig `yaml:"instance"`
}

// LoggingConfig selects level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// PlaybackConfig tunes decoding and the render clock.
type PlaybackConfig struct {
	QueueSize    int           `yaml:"queue_size"`
	Premultiply  bool          `yaml:"premultiply"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// CanvasConfig sizes the output surface.
type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"` // #rrggbb or #rrggbbaa
}

// InstanceConfig locates the single-instance socket.
type InstanceConfig struct {
	Socket string `yaml:"socket"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "warn", Format: "text"},
		Playback: PlaybackConfig{
			QueueSize:    4,
			TickInterval: 16 * time.Millisecond,
		},
		Canvas: CanvasConfig{
			Width:      800,
			Height:     600,
			Background: "#000000",
		},
		Instance: InstanceConfig{
			Socket: filepath.Join(os.TempDir(), "slark.sock"),
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalid, err)
	}
	switch c.Logging.Format {
	case "", "json", "text", "console":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalid, c.Logging.Format)
	}
	if c.Playback.QueueSize < 0 {
		return fmt.Errorf("%w: playback.queue_size must not be negative", ErrInvalid)
	}
	if c.Playback.TickInterval <= 0 {
		return fmt.Errorf("%w: playback.tick_interval must be positive", ErrInvalid)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalid, c.Canvas.Width, c.Canvas.Height)
	}
	if !hexColor.MatchString(c.Canvas.Background) {
		return fmt.Errorf("%w: canvas.background %q", ErrInvalid, c.Canvas.Background)
	}
	if c.Instance.Socket == "" {
		return fmt.Errorf("%w: instance.socket is empty", ErrInvalid)
	}
	return nil
}
