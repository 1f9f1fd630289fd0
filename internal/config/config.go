// Package config loads the MarkupBoard settings file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"MarkupBoard/internal/state"
)

// Config is the whole settings file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Display  DisplayConfig  `toml:"display"`
	Export   ExportConfig   `toml:"export"`
	Viewer   ViewerConfig   `toml:"viewer"`
	Log      LogConfig      `toml:"log"`
}

// DefaultsConfig is the toolbar state at startup.
type DefaultsConfig struct {
	Tool      string  `toml:"tool"`
	Color     string  `toml:"color"`
	FontSize  float64 `toml:"font_size"`
	LineWidth float64 `toml:"line_width"`
	Opacity   float64 `toml:"opacity"`
}

// DisplayConfig sizes the annotation surface.
type DisplayConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	// Font is a TTF/OTF file for text annotations; empty uses Go Regular.
	Font string `toml:"font"`
}

// ExportConfig controls where and how exports are written.
type ExportConfig struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format"`
}

// ViewerConfig is the read-only LAN preview.
type ViewerConfig struct {
	Enabled   bool   `toml:"enabled"`
	Port      int    `toml:"port"`
	Advertise bool   `toml:"advertise"`
	Instance  string `toml:"instance"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	Production bool   `toml:"production"`
}

// Dir is the per-user settings directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".markupboard"
	}
	return filepath.Join(home, ".markupboard")
}

// Path is the default settings file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	s := state.DefaultSettings()
	return &Config{
		Defaults: DefaultsConfig{
			Tool:      string(s.Tool),
			Color:     s.Color,
			FontSize:  s.FontSize,
			LineWidth: s.LineWidth,
			Opacity:   s.Opacity,
		},
		Display: DisplayConfig{Width: 960, Height: 600},
		Export:  ExportConfig{Dir: ".", Format: "png"},
		Viewer: ViewerConfig{
			Enabled:   false,
			Port:      8765,
			Advertise: true,
			Instance:  "MarkupBoard",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(Dir(), "markupboard.log"),
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults; an
// empty path reads Path().
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode TOML: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Settings converts the startup toolbar state, clamped to the toolbar
// ranges.
func (c *Config) Settings() state.Settings {
	tool, err := state.ParseTool(c.Defaults.Tool)
	if err != nil {
		tool = state.DefaultSettings().Tool
	}
	return state.Settings{
		Tool:      tool,
		Color:     c.Defaults.Color,
		FontSize:  c.Defaults.FontSize,
		LineWidth: c.Defaults.LineWidth,
		Opacity:   c.Defaults.Opacity,
	}.Normalize()
}

// RememberSettings stores s as the toolbar state of the next start.
func (c *Config) RememberSettings(s state.Settings) {
	c.Defaults = DefaultsConfig{
		Tool:      string(s.Tool),
		Color:     s.Color,
		FontSize:  s.FontSize,
		LineWidth: s.LineWidth,
		Opacity:   s.Opacity,
	}
}
