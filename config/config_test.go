package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("unexpected default window size: %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Renderer.ShadowEnabled {
		t.Error("shadows should be enabled by default")
	}
	if cfg.Renderer.ShadowResolution != 2048 {
		t.Errorf("expected shadow resolution 2048, got %d", cfg.Renderer.ShadowResolution)
	}
	if cfg.Renderer.ToneMode != "reinhard" {
		t.Errorf("expected tone mode reinhard, got %q", cfg.Renderer.ToneMode)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file should not error: %v", err)
	}
	if cfg.Renderer.MaxPointLights != 8 {
		t.Errorf("expected default point light budget 8, got %d", cfg.Renderer.MaxPointLights)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ember.yaml")
	content := []byte(`
window:
  width: 1920
  height: 1080
renderer:
  shadow_enabled: false
  tone_mode: none
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("file values not applied: %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Renderer.ShadowEnabled {
		t.Error("shadow_enabled: false was not applied")
	}
	if cfg.Renderer.ToneMode != "none" {
		t.Errorf("expected tone mode none, got %q", cfg.Renderer.ToneMode)
	}
	// Untouched sections keep their defaults.
	if cfg.Renderer.ShadowResolution != 2048 {
		t.Errorf("expected default shadow resolution, got %d", cfg.Renderer.ShadowResolution)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ember.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "ember.yaml")

	cfg := Default()
	cfg.Renderer.ShadowResolution = 1024
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Renderer.ShadowResolution != 1024 {
		t.Errorf("round trip lost shadow resolution: %d", loaded.Renderer.ShadowResolution)
	}
}
