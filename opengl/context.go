// Package opengl imports exported render targets into the UI thread's GL
// context and presents them.
//
// Every function must be called with a current GL context on the thread that
// owns it.
package opengl

import (
	"errors"
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-bridge/core"
	"render-bridge/log"
)

var logger = log.New("opengl")

// Extensions the importer depends on.
const (
	MemoryObjectExtension   = "GL_EXT_memory_object"
	MemoryObjectFdExtension = "GL_EXT_memory_object_fd"
)

var ErrUnsupported = errors.New("opengl: external memory import not supported")

// Init loads the GL entry points for the current context and checks that
// external memory objects can be imported from file descriptors.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	renderer := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Infof("OpenGL %s on %s", version, renderer)

	for _, ext := range []string{MemoryObjectExtension, MemoryObjectFdExtension} {
		if !HasExtension(ext) {
			return fmt.Errorf("%w: missing %s", ErrUnsupported, ext)
		}
	}
	return nil
}

// HasExtension reports whether the current context advertises name.
func HasExtension(name string) bool {
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		if gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))) == name {
			return true
		}
	}
	return false
}

// Clear fills the default framebuffer with c. Used while a window has no
// frame yet.
func Clear(c core.Color, width, height int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, width, height)
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%04x", op, code)
	}
	return nil
}
