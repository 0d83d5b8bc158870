package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/orbweave/pkg/config"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Layout.RingRadius != config.DefaultConfig().Layout.RingRadius {
		t.Errorf("Expected default ring radius, got %v", cfg.Layout.RingRadius)
	}
	if !cfg.CacheEnabled() {
		t.Error("Expected layout cache enabled by default")
	}
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
layout:
  ring_radius: 300
spring:
  repulsion: 1200
run:
  deadline: 2s
export:
  formats: [svg, png]
cache_layouts: false
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Layout.RingRadius != 300 {
		t.Errorf("Expected ring_radius 300, got %v", cfg.Layout.RingRadius)
	}
	if cfg.Spring.Repulsion != 1200 {
		t.Errorf("Expected repulsion 1200, got %v", cfg.Spring.Repulsion)
	}
	if cfg.Run.Deadline != 2*time.Second {
		t.Errorf("Expected deadline 2s, got %v", cfg.Run.Deadline)
	}
	if len(cfg.Export.Formats) != 2 {
		t.Errorf("Expected two export formats, got %v", cfg.Export.Formats)
	}
	if cfg.CacheEnabled() {
		t.Error("Expected layout cache disabled")
	}

	// Untouched sections keep their defaults.
	if cfg.Spring.Damping != config.DefaultConfig().Spring.Damping {
		t.Errorf("Damping changed unexpectedly: %v", cfg.Spring.Damping)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "config.yaml")

	cfg := config.DefaultConfig()
	cfg.Layout.SiblingStep = 0.5
	cfg.Export.OutDir = "/tmp/out"
	off := false
	cfg.CacheLayouts = &off

	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Layout.SiblingStep != 0.5 {
		t.Errorf("Expected sibling_step 0.5, got %v", loaded.Layout.SiblingStep)
	}
	if loaded.Export.OutDir != "/tmp/out" {
		t.Errorf("Expected out_dir /tmp/out, got %q", loaded.Export.OutDir)
	}
	if loaded.CacheEnabled() {
		t.Error("Expected cache disabled after round trip")
	}
}

func TestConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")
	if got := config.ConfigDir(); got != "/custom/xdg/orbweave" {
		t.Errorf("Expected /custom/xdg/orbweave, got %q", got)
	}
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	if got := config.StateDir(); got != "/custom/state/orbweave" {
		t.Errorf("Expected /custom/state/orbweave, got %q", got)
	}
}
