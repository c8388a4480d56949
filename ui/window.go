package ui

import (
	"fmt"
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"

	"render-bridge/core"
	"render-bridge/frame"
	"render-bridge/opengl"
	"render-bridge/surface"
)

// Window is a toolkit window created from an open request. It reports its size
// and scale through the request's shared state and shows the latest frame
// taken from the request's slot.
type Window struct {
	handle   *glfw.Window
	config   core.WindowConfig
	commands <-chan core.Command
	state    *core.SharedState
	frames   *frame.Slot

	texture   *opengl.Texture
	clear     core.Color
	presented uint64
	destroyed bool

	// windowed geometry restored when leaving fullscreen
	windowedX, windowedY int
	windowedW, windowedH int
}

func newWindow(req core.OpenRequest) (*Window, error) {
	cfg := req.Config

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(cfg.Resizable))
	glfw.WindowHint(glfw.Decorated, boolToInt(cfg.HeaderBar.Decorated()))
	glfw.WindowHint(glfw.Maximized, boolToInt(cfg.Maximized))
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	monitor := (*glfw.Monitor)(nil)
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, monitor, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window %q: %w", cfg.Title, err)
	}

	w := &Window{
		handle:    handle,
		config:    cfg,
		commands:  req.Commands,
		state:     req.State,
		frames:    req.Frames,
		clear:     core.ColorBlack,
		windowedW: int(cfg.Width),
		windowedH: int(cfg.Height),
	}

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		x, _ := handle.GetContentScale()
		w.report(width, height, x)
	})
	handle.SetContentScaleCallback(func(_ *glfw.Window, x, _ float32) {
		width, height := handle.GetFramebufferSize()
		w.report(width, height, x)
	})
	handle.SetCloseCallback(func(_ *glfw.Window) {
		w.state.MarkClosed()
	})

	width, height := handle.GetFramebufferSize()
	x, _ := handle.GetContentScale()
	w.report(width, height, x)

	handle.MakeContextCurrent()
	glfw.SwapInterval(0)
	return w, nil
}

// scaleFactor rounds a fractional content scale to the integer factor used
// for render targets.
func scaleFactor(contentScale float32) int32 {
	return int32(math.Max(1, math.Round(float64(contentScale))))
}

// report publishes the framebuffer as a logical size and integer scale. The
// window size in screen coordinates is not used: on X11 it is already in
// pixels, on Wayland it is not.
func (w *Window) report(fbWidth, fbHeight int, contentScale float32) {
	scale := scaleFactor(contentScale)
	width, height := logicalSize(fbWidth, fbHeight, scale)
	w.state.ReportSize(width, height)
	w.state.ReportScale(scale)
}

// logicalSize divides a framebuffer size by scale, rounding up so that the
// render target covers the whole framebuffer.
func logicalSize(fbWidth, fbHeight int, scale int32) (int32, int32) {
	if scale < 1 {
		scale = 1
	}
	s := int(scale)
	return int32((fbWidth + s - 1) / s), int32((fbHeight + s - 1) / s)
}

func (w *Window) Title() string {
	return w.config.Title
}

func (w *Window) closed() bool {
	return w.state.IsClosed()
}

// drain applies the queued commands without blocking and returns how many ran.
func drain(commands <-chan core.Command, c core.WindowControls) int {
	n := 0
	for {
		select {
		case cmd := <-commands:
			cmd.Apply(c)
			n++
		default:
			return n
		}
	}
}

func (w *Window) Maximize() {
	w.handle.Maximize()
}

func (w *Window) Restore() {
	w.handle.Restore()
}

func (w *Window) SetFullscreen(fullscreen bool) {
	if fullscreen == (w.handle.GetMonitor() != nil) {
		return
	}
	if fullscreen {
		w.windowedX, w.windowedY = w.handle.GetPos()
		w.windowedW, w.windowedH = w.handle.GetSize()
		monitor := glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		w.handle.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
		return
	}
	w.handle.SetMonitor(nil, w.windowedX, w.windowedY, w.windowedW, w.windowedH, 0)
}

func (w *Window) SetTitle(title string) {
	w.handle.SetTitle(title)
	w.config.Title = title
}

// update applies queued commands and presents.
func (w *Window) update() error {
	drain(w.commands, w)
	return w.present()
}

// present imports a newly delivered frame, if any, and draws the current
// texture. Import failures are returned; the window keeps its old texture.
func (w *Window) present() error {
	w.handle.MakeContextCurrent()

	if f, ok := w.frames.Take(); ok {
		if err := w.replace(f); err != nil {
			return fmt.Errorf("window %q: %w", w.config.Title, err)
		}
	}

	width, height := w.handle.GetFramebufferSize()
	if w.texture == nil {
		opengl.Clear(w.clear, int32(width), int32(height))
	} else if err := w.texture.Blit(int32(width), int32(height)); err != nil {
		return fmt.Errorf("window %q: %w", w.config.Title, err)
	}
	w.handle.SwapBuffers()
	w.presented++
	return nil
}

func (w *Window) replace(f *frame.Frame) error {
	d, err := surface.FromFrame(f)
	if err != nil {
		return err
	}
	tex, err := opengl.Import(d)
	if err != nil {
		d.Close()
		return err
	}
	if w.texture != nil {
		w.texture.Delete()
	}
	w.texture = tex
	logger.Debugf("window %q: showing %v", w.config.Title, d)
	return nil
}

// destroy tears down the toolkit window. Frames delivered afterwards are
// released by the slot.
func (w *Window) destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.state.MarkClosed()
	w.frames.Close()

	w.handle.MakeContextCurrent()
	if w.texture != nil {
		w.texture.Delete()
		w.texture = nil
	}
	glfw.DetachCurrentContext()
	w.handle.Destroy()
	logger.Infof("window %q destroyed after %d presents", w.config.Title, w.presented)
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
