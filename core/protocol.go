package core

import (
	"sync/atomic"

	"render-bridge/frame"
)

// Unreported is stored in the size and scale fields until the UI thread has
// reported a real value.
const Unreported = -1

// SharedState is the per-window state published by the UI thread and polled by
// the render loop. Every field has exactly one writer:
//
//	Width, Height, Scale  written by the UI thread, read by the render loop
//	Closed                written by the UI thread, read by the render loop
type SharedState struct {
	Width  atomic.Int32
	Height atomic.Int32
	Scale  atomic.Int32
	Closed atomic.Bool
}

func NewSharedState() *SharedState {
	s := &SharedState{}
	s.Width.Store(Unreported)
	s.Height.Store(Unreported)
	s.Scale.Store(Unreported)
	return s
}

func (s *SharedState) ReportSize(width, height int32) {
	s.Width.Store(width)
	s.Height.Store(height)
}

func (s *SharedState) ReportScale(scale int32) {
	s.Scale.Store(scale)
}

func (s *SharedState) MarkClosed() {
	s.Closed.Store(true)
}

func (s *SharedState) IsClosed() bool {
	return s.Closed.Load()
}

// Load returns the last reported logical size and integer scale factor.
func (s *SharedState) Load() (width, height, scale int32) {
	return s.Width.Load(), s.Height.Load(), s.Scale.Load()
}

// WindowControls is the toolkit side of a window that commands act upon.
type WindowControls interface {
	Maximize()
	Restore()
	SetFullscreen(fullscreen bool)
	SetTitle(title string)
}

// Command is a best-effort request from the render side to the UI thread.
type Command interface {
	Apply(w WindowControls)
}

type SetMaximized bool

func (c SetMaximized) Apply(w WindowControls) {
	if c {
		w.Maximize()
	} else {
		w.Restore()
	}
}

type SetFullscreen bool

func (c SetFullscreen) Apply(w WindowControls) {
	w.SetFullscreen(bool(c))
}

type SetTitle string

func (c SetTitle) Apply(w WindowControls) {
	w.SetTitle(string(c))
}

// OpenRequest asks the UI thread to create a window. The UI keeps State
// up to date and drains Frames; the render side keeps the other ends.
type OpenRequest struct {
	Config   WindowConfig
	Commands <-chan Command
	State    *SharedState
	Frames   *frame.Slot
}
