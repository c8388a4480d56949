// Package frame carries exported render targets from the render loop to the
// UI thread without blocking either side.
package frame

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Size is a physical pixel size.
type Size struct {
	Width  uint32
	Height uint32
}

func (s Size) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}

// EffectiveSize converts a logical size and integer scale factor into the
// physical size of the render target. Zero extents are raised to one and the
// scale is clamped to at least one. ok is false while any input is still
// unreported (negative).
func EffectiveSize(width, height, scale int32) (Size, bool) {
	if width < 0 || height < 0 || scale < 0 {
		return Size{}, false
	}
	width = max(width, 1)
	height = max(height, 1)
	scale = max(scale, 1)
	return Size{
		Width:  uint32(width) * uint32(scale),
		Height: uint32(height) * uint32(scale),
	}, true
}

// View is a shared reference to a GPU texture. Every Clone must be paired with
// exactly one Release; the texture is destroyed on the last Release.
type View interface {
	Clone() View
	Release()
}

// Memory describes the exported backing allocation of a render target.
type Memory struct {
	FD             int
	AllocationSize uint64
}

// Frame is one exported render target: a view of the texture and the file
// descriptor of its memory. A Frame owns the descriptor until TakeFD is called.
type Frame struct {
	view View
	size Size

	mu       sync.Mutex
	fd       int
	allocSz  uint64
	released bool
}

// New wraps a view and its exported memory. The frame takes ownership of both.
func New(view View, size Size, mem Memory) *Frame {
	return &Frame{
		view:    view,
		size:    size,
		fd:      mem.FD,
		allocSz: mem.AllocationSize,
	}
}

func (f *Frame) Size() Size {
	return f.size
}

func (f *Frame) AllocationSize() uint64 {
	return f.allocSz
}

// FD returns the descriptor without transferring ownership, or -1 once it has
// been taken or the frame released.
func (f *Frame) FD() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fd
}

// TakeFD transfers ownership of the descriptor to the caller. Subsequent calls
// return -1.
func (f *Frame) TakeFD() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd := f.fd
	f.fd = -1
	return fd
}

// Release closes the descriptor if it is still owned and drops the view
// reference. It is safe to call more than once.
func (f *Frame) Release() {
	f.mu.Lock()
	if f.released {
		f.mu.Unlock()
		return
	}
	f.released = true
	fd := f.fd
	f.fd = -1
	f.mu.Unlock()

	if fd >= 0 {
		_ = unix.Close(fd)
	}
	if f.view != nil {
		f.view.Release()
	}
}
