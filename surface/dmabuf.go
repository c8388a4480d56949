// Package surface describes an exported render target in the form a
// compositor imports it: a single-plane linear dma-buf.
package surface

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sys/unix"

	"render-bridge/frame"
)

const (
	// FourccABGR8888 is DRM_FORMAT_ABGR8888 ('AB24'): R, G, B, A bytes in
	// memory order, matching VK_FORMAT_R8G8B8A8_*.
	FourccABGR8888 uint32 = 'A' | 'B'<<8 | '2'<<16 | '4'<<24

	// ModifierLinear is DRM_FORMAT_MOD_LINEAR.
	ModifierLinear uint64 = 0

	BytesPerPixel = 4
)

var (
	ErrZeroSize       = errors.New("surface: zero size")
	ErrBadHandle      = errors.New("surface: invalid file descriptor")
	ErrFormatRejected = errors.New("surface: format rejected by compositor")
)

type Plane struct {
	FD     int
	Offset uint32
	Stride uint32
}

// Dmabuf owns the plane descriptor until Close.
type Dmabuf struct {
	Width          uint32
	Height         uint32
	Fourcc         uint32
	Modifier       uint64
	Planes         []Plane
	AllocationSize uint64

	once  sync.Once
	frame *frame.Frame
}

// Build describes the memory behind fd as a linear RGBA surface of the given
// size. On success the returned Dmabuf owns fd; on failure the caller still
// does.
func Build(size frame.Size, fd int, allocationSize uint64) (*Dmabuf, error) {
	if size.IsZero() {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroSize, size.Width, size.Height)
	}
	if fd < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadHandle, fd)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); err != nil {
		return nil, fmt.Errorf("%w: %d: %v", ErrBadHandle, fd, err)
	}

	stride := uint64(size.Width) * BytesPerPixel
	if stride > math.MaxUint32 {
		return nil, fmt.Errorf("surface: stride overflow for width %d", size.Width)
	}
	if allocationSize > 0 && allocationSize < stride*uint64(size.Height) {
		return nil, fmt.Errorf("surface: allocation of %d bytes is too small for %dx%d",
			allocationSize, size.Width, size.Height)
	}

	return &Dmabuf{
		Width:          size.Width,
		Height:         size.Height,
		Fourcc:         FourccABGR8888,
		Modifier:       ModifierLinear,
		Planes:         []Plane{{FD: fd, Offset: 0, Stride: uint32(stride)}},
		AllocationSize: allocationSize,
	}, nil
}

// FromFrame takes the descriptor out of f and builds a surface around it. The
// surface keeps f alive until Close so the texture outlives the import. f is
// released if building fails.
func FromFrame(f *frame.Frame) (*Dmabuf, error) {
	fd := f.TakeFD()
	d, err := Build(f.Size(), fd, f.AllocationSize())
	if err != nil {
		if fd >= 0 {
			_ = unix.Close(fd)
		}
		f.Release()
		return nil, err
	}
	d.frame = f
	return d, nil
}

// FD returns the descriptor of the single plane.
func (d *Dmabuf) FD() int {
	return d.Planes[0].FD
}

// Close closes the plane descriptor and releases the source frame, once.
func (d *Dmabuf) Close() error {
	var err error
	d.once.Do(func() {
		for i := range d.Planes {
			if d.Planes[i].FD >= 0 {
				if cerr := unix.Close(d.Planes[i].FD); cerr != nil && err == nil {
					err = cerr
				}
				d.Planes[i].FD = -1
			}
		}
		if d.frame != nil {
			d.frame.Release()
			d.frame = nil
		}
	})
	return err
}

func (d *Dmabuf) String() string {
	return fmt.Sprintf("dmabuf %dx%d %s mod=%#x stride=%d", d.Width, d.Height,
		FourccString(d.Fourcc), d.Modifier, d.Planes[0].Stride)
}

// FourccString renders a DRM fourcc code as its four characters.
func FourccString(code uint32) string {
	return string([]byte{byte(code), byte(code >> 8), byte(code >> 16), byte(code >> 24)})
}
