// Package config handles loading and saving orbweave configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/orbweave/config.yaml
//   - State:   ~/.local/state/orbweave/ (settled-layout cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/orbweave/pkg/forces"
	"github.com/vanderheijden86/orbweave/pkg/layout"
)

// ExportConfig holds defaults for headless exports.
type ExportConfig struct {
	Formats []string `yaml:"formats,omitempty"` // svg, png, html
	OutDir  string   `yaml:"out_dir,omitempty"`
	Width   int      `yaml:"width,omitempty"`
	Height  int      `yaml:"height,omitempty"`
}

// WatchConfig controls document watch mode.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"` // fallback when fsnotify is unavailable
}

// UIConfig holds terminal UI preference settings.
type UIConfig struct {
	ShowValues  bool `yaml:"show_values,omitempty"`  // render subtree totals on bubbles
	ShowLegend  bool `yaml:"show_legend,omitempty"`  // category/level legend pane
	CompactKeys bool `yaml:"compact_keys,omitempty"` // single-line help bar
}

// Config is the top-level configuration for orbweave.
type Config struct {
	Layout layout.Config       `yaml:"layout,omitempty"`
	Spring forces.SpringConfig `yaml:"spring,omitempty"`
	Run    forces.RunConfig    `yaml:"run,omitempty"`
	Export ExportConfig        `yaml:"export,omitempty"`
	Watch  WatchConfig         `yaml:"watch,omitempty"`
	UI     UIConfig            `yaml:"ui,omitempty"`

	// CacheLayouts persists settled positions keyed by document digest, so
	// reopening an unchanged document starts from its last settled layout.
	CacheLayouts *bool `yaml:"cache_layouts,omitempty"`
}

// DefaultConfig returns a Config with the reference constants.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Spring: forces.DefaultSpringConfig(),
		Run:    forces.DefaultRunConfig(),
		Export: ExportConfig{
			Formats: []string{"svg"},
			Width:   1200,
			Height:  900,
		},
		Watch: WatchConfig{
			Debounce:     200 * time.Millisecond,
			PollInterval: time.Second,
		},
		UI: UIConfig{
			ShowValues: true,
			ShowLegend: true,
		},
	}
}

// CacheEnabled reports whether settled layouts should be persisted. Defaults
// to on when the config file never mentions it.
func (c Config) CacheEnabled() bool {
	if c.CacheLayouts == nil {
		return true
	}
	return *c.CacheLayouts
}

// ConfigDir returns the XDG config directory for orbweave.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "orbweave")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "orbweave")
}

// StateDir returns the XDG state directory for orbweave.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "orbweave")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "orbweave")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Export.OutDir = expandHome(cfg.Export.OutDir)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
