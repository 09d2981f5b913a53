// Package config loads runtime settings from RT_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Scene           string `envconfig:"RT_SCENE" default:"final"`
	Width           int    `envconfig:"RT_WIDTH" default:"0"`     // 0 keeps the scene's width
	SamplesPerPixel int    `envconfig:"RT_SPP" default:"0"`       // 0 keeps the scene's value
	MaxDepth        int    `envconfig:"RT_MAX_DEPTH" default:"0"` // 0 keeps the scene's value
	Workers         int    `envconfig:"RT_WORKERS" default:"0"`   // 0 uses every CPU
	Frames          int    `envconfig:"RT_FRAMES" default:"16"`
	Output          string `envconfig:"RT_OUTPUT" default:"output"`
	EarthTexture    string `envconfig:"RT_EARTH_TEXTURE" default:""`
	MeshPath        string `envconfig:"RT_MESH_PATH" default:""`
	Addr            string `envconfig:"RT_ADDR" default:":8080"`
	AllowedOrigins  string `envconfig:"RT_ALLOWED_ORIGINS" default:"localhost:*,127.0.0.1:*"`
	StaticDir       string `envconfig:"RT_STATIC_DIR" default:"web/static"`
	LogLevel        string `envconfig:"RT_LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects negative counts and unknown log levels
func (c *Config) Validate() error {
	for name, v := range map[string]int{
		"RT_WIDTH":     c.Width,
		"RT_SPP":       c.SamplesPerPixel,
		"RT_MAX_DEPTH": c.MaxDepth,
		"RT_WORKERS":   c.Workers,
		"RT_FRAMES":    c.Frames,
	} {
		if v < 0 {
			return fmt.Errorf("config: %s must not be negative, got %d", name, v)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: RT_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Origins splits AllowedOrigins into websocket origin patterns
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
