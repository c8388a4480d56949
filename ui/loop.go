// Package ui runs the toolkit side of the bridge: it creates windows on
// request, reports their size and scale, applies commands and shows the frames
// it receives.
package ui

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"render-bridge/core"
	"render-bridge/log"
	"render-bridge/opengl"
)

var logger = log.New("ui")

func init() {
	runtime.LockOSThread()
}

// DefaultPresentRate is the number of UI iterations per second.
const DefaultPresentRate = 120

// Loop owns every toolkit window. Run must be called on the main goroutine.
type Loop struct {
	opens   chan core.OpenRequest
	done    chan struct{}
	rate    int
	windows []presenter
	glReady bool
}

func NewLoop(presentRate int) *Loop {
	if presentRate <= 0 {
		presentRate = DefaultPresentRate
	}
	return &Loop{
		opens: make(chan core.OpenRequest, 1),
		done:  make(chan struct{}),
		rate:  presentRate,
	}
}

// Opens is the channel the render side sends open requests on.
func (l *Loop) Opens() chan<- core.OpenRequest {
	return l.opens
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes events until ctx is cancelled. A failure to create a window or
// to import a frame stops the loop with an error.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer close(l.done)

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfw.Terminate()
	defer l.destroyAll()

	timeout := time.Second.Seconds() / float64(l.rate)
	logger.Noticef("UI loop started at %d presents/s", l.rate)

	for {
		if ctx.Err() != nil {
			logger.Infof("UI loop stopped with %d windows open", len(l.windows))
			return nil
		}

		glfw.WaitEventsTimeout(timeout)

		if err := l.accept(); err != nil {
			return err
		}

		if err := l.cycle(); err != nil {
			return err
		}
	}
}

// presenter is the part of a window the loop drives each iteration.
type presenter interface {
	closed() bool
	update() error
	destroy()
}

// cycle destroys closed windows and updates the rest. A window whose update
// fails is destroyed and dropped before the error is returned.
func (l *Loop) cycle() error {
	kept := make([]presenter, 0, len(l.windows))
	for i, w := range l.windows {
		if w.closed() {
			w.destroy()
			continue
		}
		if err := w.update(); err != nil {
			w.destroy()
			l.windows = append(kept, l.windows[i+1:]...)
			return err
		}
		kept = append(kept, w)
	}
	l.windows = kept
	return nil
}

func (l *Loop) accept() error {
	for {
		select {
		case req := <-l.opens:
			w, err := newWindow(req)
			if err != nil {
				req.State.MarkClosed()
				req.Frames.Close()
				return err
			}
			if !l.glReady {
				if err := opengl.Init(); err != nil {
					w.destroy()
					return errors.Join(ErrNoImport, err)
				}
				l.glReady = true
			}
			l.windows = append(l.windows, w)
			logger.Infof("window %q created", w.Title())
		default:
			return nil
		}
	}
}

func (l *Loop) destroyAll() {
	for _, w := range l.windows {
		w.destroy()
	}
	l.windows = nil
}

// ErrNoImport is returned when the UI's GL context cannot import exported
// render targets.
var ErrNoImport = errors.New("ui: cannot import render targets")
