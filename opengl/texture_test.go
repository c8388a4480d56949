package opengl

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"

	"render-bridge/frame"
	"render-bridge/surface"
)

func pipeFD(t *testing.T) int {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() { _ = unix.Close(fds[1]) })
	return fds[0]
}

func isOpen(fd int) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == nil
}

// The format checks run before any GL call, so no context is needed.
func TestImportRejectsFormat(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *surface.Dmabuf)
	}{
		{"xrgb fourcc", func(d *surface.Dmabuf) { d.Fourcc = 'X' | 'R'<<8 | '2'<<16 | '4'<<24 }},
		{"tiled modifier", func(d *surface.Dmabuf) { d.Modifier = 1 }},
		{"invalid modifier", func(d *surface.Dmabuf) { d.Modifier = 0x00ffffffffffffff }},
		{"two planes", func(d *surface.Dmabuf) { d.Planes = append(d.Planes, surface.Plane{FD: -1, Stride: d.Planes[0].Stride}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := pipeFD(t)
			d, err := surface.Build(frame.Size{Width: 64, Height: 32}, fd, 64*32*4)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			defer d.Close()
			tt.modify(d)

			tex, err := Import(d)
			if !errors.Is(err, surface.ErrFormatRejected) {
				t.Errorf("Import: expected ErrFormatRejected, got %v", err)
			}
			if tex != nil {
				t.Errorf("Import: expected no texture, got %d", tex.ID)
			}
			if !isOpen(fd) {
				t.Errorf("fd %d: expected open after a rejected import", fd)
			}
		})
	}
}
