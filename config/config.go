// Package config loads the YAML settings of the bridge binary.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"render-bridge/bridge"
	"render-bridge/core"
	"render-bridge/log"
)

const MaxPassRate = 1000

// Config is the settings file. LogLevels overrides LogLevel for single logger
// modules such as "bridge" or "vulkan".
type Config struct {
	LogLevel      log.Level            `yaml:"log_level"`
	LogLevels     map[string]log.Level `yaml:"log_levels"`
	ExitCondition bridge.ExitCondition `yaml:"exit_condition"`
	PassRate      int                  `yaml:"pass_rate"`
	PresentRate   int                  `yaml:"present_rate"`
	Vulkan        Vulkan               `yaml:"vulkan"`
	PrimaryWindow *Window              `yaml:"primary_window"`
	Windows       []Window             `yaml:"windows"`
	Scene         string               `yaml:"scene"`
}

type Vulkan struct {
	Validation bool `yaml:"validation"`
	// Device is a case-insensitive substring of the preferred GPU name.
	Device string `yaml:"device"`
}

// Window is a window entry. Fields left out of the file keep the values of
// core.DefaultWindowConfig.
type Window core.WindowConfig

func (w *Window) UnmarshalYAML(value *yaml.Node) error {
	// Node.Decode does not honour KnownFields, so the entry goes through a
	// strict decoder of its own.
	data, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	type plain Window
	out := plain(core.DefaultWindowConfig())
	if err := decodeStrict(data, &out); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*w = Window(out)
	return nil
}

func (w Window) WindowConfig() core.WindowConfig {
	return core.WindowConfig(w)
}

// ValidationError points at the offending YAML key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func Default() *Config {
	primary := Window(core.DefaultWindowConfig())
	return &Config{
		LogLevel:      log.Notice,
		ExitCondition: bridge.ExitOnAllClosed,
		PassRate:      bridge.DefaultPassRate,
		PresentRate:   120,
		PrimaryWindow: &primary,
	}
}

// Load reads and validates the file at path. An empty path yields Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Scene != "" && !filepath.IsAbs(cfg.Scene) {
		cfg.Scene = filepath.Join(filepath.Dir(path), cfg.Scene)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.PassRate <= 0 || c.PassRate > MaxPassRate {
		return &ValidationError{Path: "pass_rate", Err: fmt.Errorf("pass_rate must be between 1 and %d", MaxPassRate)}
	}
	if c.PresentRate < 0 || c.PresentRate > MaxPassRate {
		return &ValidationError{Path: "present_rate", Err: fmt.Errorf("present_rate must be between 0 and %d", MaxPassRate)}
	}
	if c.PrimaryWindow == nil && len(c.Windows) == 0 {
		return &ValidationError{Path: "windows", Err: errors.New("at least one window is required")}
	}
	if c.PrimaryWindow == nil && c.ExitCondition == bridge.ExitOnPrimaryClosed {
		return &ValidationError{Path: "exit_condition", Err: errors.New("primary_closed requires primary_window")}
	}
	if c.PrimaryWindow != nil {
		if err := validateWindow("primary_window", *c.PrimaryWindow); err != nil {
			return err
		}
	}
	for i, w := range c.Windows {
		if err := validateWindow(fmt.Sprintf("windows[%d]", i), w); err != nil {
			return err
		}
	}
	for module := range c.LogLevels {
		if strings.TrimSpace(module) == "" {
			return &ValidationError{Path: "log_levels", Err: errors.New("empty module name")}
		}
	}
	if c.Scene != "" {
		switch strings.ToLower(filepath.Ext(c.Scene)) {
		case ".gltf", ".glb":
		default:
			return &ValidationError{Path: "scene", Err: fmt.Errorf("unsupported scene format %q", filepath.Ext(c.Scene))}
		}
	}
	return nil
}

func validateWindow(path string, w Window) error {
	if w.Width == 0 || w.Height == 0 {
		return &ValidationError{Path: path, Err: fmt.Errorf("window size must be positive, got %dx%d", w.Width, w.Height)}
	}
	return nil
}

// AllWindows returns the primary window config, if any, followed by the others.
func (c *Config) AllWindows() (primary *core.WindowConfig, others []core.WindowConfig) {
	if c.PrimaryWindow != nil {
		p := c.PrimaryWindow.WindowConfig()
		primary = &p
	}
	for _, w := range c.Windows {
		others = append(others, w.WindowConfig())
	}
	return primary, others
}
