package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/sys/unix"

	"render-bridge/surface"
)

// Texture is a GL texture backed by imported dma-buf memory.
type Texture struct {
	ID     uint32
	Width  int32
	Height int32

	memory uint32
	fbo    uint32
	source *surface.Dmabuf
}

// Import creates a texture over the memory described by d. The texture keeps d
// open until Delete. d is not closed when the import fails.
func Import(d *surface.Dmabuf) (*Texture, error) {
	if d.Fourcc != surface.FourccABGR8888 || d.Modifier != surface.ModifierLinear || len(d.Planes) != 1 {
		return nil, fmt.Errorf("%w: %v", surface.ErrFormatRejected, d)
	}

	size := d.AllocationSize
	if size == 0 {
		size = uint64(d.Planes[0].Stride) * uint64(d.Height)
	}

	// GL takes ownership of the descriptor it imports.
	fd, err := unix.Dup(d.FD())
	if err != nil {
		return nil, fmt.Errorf("import %v: dup: %w", d, err)
	}

	t := &Texture{Width: int32(d.Width), Height: int32(d.Height), source: d}

	gl.CreateMemoryObjectsEXT(1, &t.memory)
	gl.ImportMemoryFdEXT(t.memory, size, gl.HANDLE_TYPE_OPAQUE_FD_EXT, int32(fd))
	if err := glError("import memory"); err != nil {
		_ = unix.Close(fd)
		gl.DeleteMemoryObjectsEXT(1, &t.memory)
		return nil, fmt.Errorf("%w: %v", surface.ErrFormatRejected, err)
	}

	gl.GenTextures(1, &t.ID)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_TILING_EXT, gl.OPTIMAL_TILING_EXT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexStorageMem2DEXT(gl.TEXTURE_2D, 1, gl.SRGB8_ALPHA8, t.Width, t.Height, t.memory, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := glError("texture storage"); err != nil {
		t.source = nil
		t.Delete()
		return nil, fmt.Errorf("%w: %v", surface.ErrFormatRejected, err)
	}

	logger.Debugf("imported %v as texture %d", d, t.ID)
	return t, nil
}

// Blit copies the texture into the default framebuffer, scaled to
// width x height and flipped from the exporter's top-left origin.
func (t *Texture) Blit(width, height int32) error {
	if t.fbo == 0 {
		gl.GenFramebuffers(1, &t.fbo)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
		gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.ID, 0)
		if status := gl.CheckFramebufferStatus(gl.READ_FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
			gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
			return fmt.Errorf("texture %d: framebuffer incomplete: 0x%04x", t.ID, status)
		}
	}

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.Viewport(0, 0, width, height)
	gl.BlitFramebuffer(
		0, 0, t.Width, t.Height,
		0, height, width, 0,
		gl.COLOR_BUFFER_BIT, gl.LINEAR,
	)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return glError("blit")
}

// Delete frees the GL objects and closes the source surface.
func (t *Texture) Delete() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
	if t.memory != 0 {
		gl.DeleteMemoryObjectsEXT(1, &t.memory)
		t.memory = 0
	}
	if t.source != nil {
		if err := t.source.Close(); err != nil {
			logger.Warningf("close %v: %v", t.source, err)
		}
		t.source = nil
	}
}
