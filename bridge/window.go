package bridge

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"render-bridge/core"
	"render-bridge/frame"
	"render-bridge/target"
)

// CommandQueueSize bounds the per-window command channel.
const CommandQueueSize = 16

// WindowID identifies a bridged window for its whole lifetime.
type WindowID = uuid.UUID

// State is the lifecycle of a bridged window as seen by the render loop.
type State int32

const (
	// Uninitialized: the UI has not reported a size and scale yet.
	Uninitialized State = iota
	// Sized: a size was reported but no target has been exported for it.
	Sized
	// Exporting: a render target is being created for the new size.
	Exporting
	// Ready: a render target exists and frames are being relayed.
	Ready
	// Closed: the UI closed the window; terminal.
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Sized:
		return "sized"
	case Exporting:
		return "exporting"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Window is the render side of a window owned by the UI thread.
//
// Writers:
//
//	shared            UI thread (size, scale, closed)
//	next (slot A)     render loop: Poll stores, Extract takes, Reconcile puts back
//	out (slot B)      render loop stores in Send, UI thread takes
//	lastSize, handle  render loop only, guarded by App.mu
type Window struct {
	id       WindowID
	app      *App
	config   core.WindowConfig
	shared   *core.SharedState
	commands chan core.Command
	next     *frame.Slot
	out      *frame.Slot

	handle   target.Handle
	lastSize frame.Size

	state   atomic.Int32
	exports atomic.Uint64
	dropped atomic.Uint64
}

func (w *Window) ID() WindowID {
	return w.id
}

func (w *Window) Config() core.WindowConfig {
	return w.config
}

func (w *Window) State() State {
	return State(w.state.Load())
}

func (w *Window) setState(s State) {
	w.state.Store(int32(s))
}

// Target is the texture target this window's frames are rendered into.
func (w *Window) Target() target.Handle {
	return w.handle
}

// Size returns the pixel size of the last export attempt.
func (w *Window) Size() frame.Size {
	w.app.mu.Lock()
	defer w.app.mu.Unlock()
	return w.lastSize
}

// Exports counts successful render target exports.
func (w *Window) Exports() uint64 {
	return w.exports.Load()
}

// DroppedCommands counts commands discarded because the queue was full.
func (w *Window) DroppedCommands() uint64 {
	return w.dropped.Load()
}

func (w *Window) IsPrimary() bool {
	w.app.mu.Lock()
	defer w.app.mu.Unlock()
	return w.app.primary == w.id
}

// send never blocks. Commands to a closed window or a full queue are dropped.
func (w *Window) send(cmd core.Command) bool {
	if w.State() == Closed {
		return false
	}
	select {
	case w.commands <- cmd:
		return true
	default:
		w.dropped.Add(1)
		logger.Debugf("window %s: command queue full, dropping %T", w.id, cmd)
		return false
	}
}

func (w *Window) SetMaximized(maximized bool) {
	w.send(core.SetMaximized(maximized))
}

func (w *Window) Maximize() {
	w.SetMaximized(true)
}

func (w *Window) Unmaximize() {
	w.SetMaximized(false)
}

func (w *Window) SetFullscreen(fullscreen bool) {
	w.send(core.SetFullscreen(fullscreen))
}

func (w *Window) Fullscreen() {
	w.SetFullscreen(true)
}

func (w *Window) Unfullscreen() {
	w.SetFullscreen(false)
}

func (w *Window) SetTitle(title string) {
	w.send(core.SetTitle(title))
}
