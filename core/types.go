package core

import (
	"fmt"
	"strings"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// Lerp linearly interpolates between c and o. The result is always opaque.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: 1,
	}
}

// HeaderBar selects how the window decoration is drawn relative to the content.
type HeaderBar int

const (
	HeaderBarFull HeaderBar = iota
	HeaderBarOverContent
	HeaderBarNone
)

func (h HeaderBar) String() string {
	switch h {
	case HeaderBarFull:
		return "full"
	case HeaderBarOverContent:
		return "over_content"
	case HeaderBarNone:
		return "none"
	default:
		return fmt.Sprintf("HeaderBar(%d)", int(h))
	}
}

func (h HeaderBar) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HeaderBar) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "full":
		*h = HeaderBarFull
	case "over_content", "overcontent":
		*h = HeaderBarOverContent
	case "none":
		*h = HeaderBarNone
	default:
		return fmt.Errorf("unknown header bar style %q", string(text))
	}
	return nil
}

// Decorated reports whether the toolkit should draw its own title bar.
func (h HeaderBar) Decorated() bool {
	return h == HeaderBarFull
}

type WindowConfig struct {
	Width      uint32    `yaml:"width"`
	Height     uint32    `yaml:"height"`
	Title      string    `yaml:"title"`
	Resizable  bool      `yaml:"resizable"`
	Maximized  bool      `yaml:"maximized"`
	Fullscreen bool      `yaml:"fullscreen"`
	HeaderBar  HeaderBar `yaml:"header_bar"`
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:      1280,
		Height:     720,
		Title:      "App",
		Resizable:  true,
		Maximized:  false,
		Fullscreen: false,
		HeaderBar:  HeaderBarFull,
	}
}
