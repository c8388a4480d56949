package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"render-bridge/bridge"
	"render-bridge/core"
	"render-bridge/log"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.PrimaryWindow == nil || cfg.PrimaryWindow.WindowConfig() != core.DefaultWindowConfig() {
		t.Errorf("PrimaryWindow: expected default window, got %+v", cfg.PrimaryWindow)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.PassRate != bridge.DefaultPassRate {
		t.Errorf("PassRate: expected %d, got %d", bridge.DefaultPassRate, cfg.PassRate)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
log_level: debug
log_levels:
  vulkan: warning
  bridge: debug
exit_condition: primary_closed
pass_rate: 30
vulkan:
  validation: true
  device: radeon
primary_window:
  title: Main
  header_bar: over_content
windows:
  - width: 320
    height: 240
    title: Side
    fullscreen: true
scene: cameras.glb
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.LogLevel != log.Debug {
		t.Errorf("LogLevel: expected debug, got %v", cfg.LogLevel)
	}
	if len(cfg.LogLevels) != 2 || cfg.LogLevels["vulkan"] != log.Warning || cfg.LogLevels["bridge"] != log.Debug {
		t.Errorf("LogLevels: expected vulkan=warning bridge=debug, got %v", cfg.LogLevels)
	}
	if cfg.ExitCondition != bridge.ExitOnPrimaryClosed {
		t.Errorf("ExitCondition: expected primary_closed, got %v", cfg.ExitCondition)
	}
	if cfg.PassRate != 30 {
		t.Errorf("PassRate: expected 30, got %d", cfg.PassRate)
	}
	if !cfg.Vulkan.Validation || cfg.Vulkan.Device != "radeon" {
		t.Errorf("Vulkan: expected validation on radeon, got %+v", cfg.Vulkan)
	}

	primary, others := cfg.AllWindows()
	if primary == nil {
		t.Fatalf("AllWindows: expected a primary window")
	}
	if primary.Title != "Main" || primary.Width != 1280 || !primary.Resizable {
		t.Errorf("primary: expected defaults with title Main, got %+v", primary)
	}
	if primary.HeaderBar != core.HeaderBarOverContent {
		t.Errorf("primary: expected over_content header bar, got %v", primary.HeaderBar)
	}
	if len(others) != 1 {
		t.Fatalf("windows: expected 1, got %d", len(others))
	}
	if others[0].Width != 320 || others[0].Title != "Side" || !others[0].Fullscreen || !others[0].Resizable {
		t.Errorf("windows[0]: got %+v", others[0])
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"zero rate", "pass_rate: 0", "pass_rate"},
		{"huge rate", "pass_rate: 5000", "pass_rate"},
		{"no windows", "primary_window: null", "windows"},
		{"primary exit without primary", "primary_window: null\nwindows: [{title: a}]\nexit_condition: primary_closed", "exit_condition"},
		{"zero size", "windows: [{width: 0}]", "windows[0]"},
		{"scene format", "scene: cameras.obj", "scene"},
		{"empty log module", "log_levels: {\"\": debug}", "log_levels"},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.data))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
			continue
		}
		if verr.Path != tt.path {
			t.Errorf("%s: expected path %q, got %q", tt.name, tt.path, verr.Path)
		}
	}

	for _, data := range []string{
		"unknown_key: 1",
		"exit_condition: sometimes",
		"log_level: loud",
		"primary_window: {header_bar: tabs}",
		"primary_window:\n  width: 640\n  hieght: 480\n",
		"windows:\n  - title: side\n    fulscreen: true\n",
		"log_levels:\n  vulkan: loud\n",
	} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("Parse(%q): expected error", data)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	if err := os.WriteFile(path, []byte("scene: scenes/cams.gltf\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "scenes", "cams.gltf"); cfg.Scene != want {
		t.Errorf("Scene: expected %q, got %q", want, cfg.Scene)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("Load: expected error for missing file")
	}
	if cfg, err := Load(""); err != nil || cfg.PrimaryWindow == nil {
		t.Errorf("Load(\"\"): expected defaults, got %+v, %v", cfg, err)
	}
}
