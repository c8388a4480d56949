package bridge

import "errors"

var (
	// ErrUILoopGone is returned when a window is opened after the UI loop
	// stopped accepting requests. The process cannot continue without it.
	ErrUILoopGone = errors.New("bridge: UI loop is not running")

	ErrWindowNotFound = errors.New("bridge: window not found")
	ErrNoRenderer     = errors.New("bridge: exporter and renderer are required")
)
