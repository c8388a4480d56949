package scene

import (
	"fmt"
	"time"

	"render-bridge/core"
	"render-bridge/target"
)

// TargetKind says where a camera renders to.
type TargetKind int

const (
	// TargetPrimaryWindow follows whichever window is marked primary.
	TargetPrimaryWindow TargetKind = iota
	// TargetTexture renders to a specific texture target.
	TargetTexture
)

type RenderTarget struct {
	Kind   TargetKind
	Handle target.Handle
}

func PrimaryWindow() RenderTarget {
	return RenderTarget{Kind: TargetPrimaryWindow}
}

func Texture(h target.Handle) RenderTarget {
	return RenderTarget{Kind: TargetTexture, Handle: h}
}

func (t RenderTarget) String() string {
	if t.Kind == TargetPrimaryWindow {
		return "primary-window"
	}
	return t.Handle.String()
}

// Camera represents a view into the scene and the target it renders into
type Camera struct {
	Name       string
	Target     RenderTarget
	ClearColor core.Color

	Position [3]float32
	Rotation [4]float32 // x, y, z, w
	YFov     float32
	ZNear    float32

	// Palette animates ClearColor when set. Time is the normalised position
	// in the cycle, 0..1.
	Palette *Palette
	Time    float32
}

func NewCamera(name string, t RenderTarget) *Camera {
	return &Camera{
		Name:       name,
		Target:     t,
		ClearColor: core.ColorBlack,
		Rotation:   [4]float32{0, 0, 0, 1},
		YFov:       0.8,
		ZNear:      0.1,
	}
}

// Advance moves the palette cycle forward by dt and refreshes ClearColor.
func (c *Camera) Advance(dt time.Duration) {
	if c.Palette == nil {
		return
	}
	c.Time = c.Palette.Step(c.Time, dt)
	c.ClearColor = c.Palette.At(c.Time)
}

func (c *Camera) String() string {
	return fmt.Sprintf("camera %q -> %v", c.Name, c.Target)
}
