package bridge

import (
	"render-bridge/core"
	"render-bridge/frame"
	"render-bridge/target"
)

// Exporter creates a render target of the given size and exports its memory.
type Exporter interface {
	Export(size frame.Size) (frame.View, frame.Memory, error)
}

// Job is one camera pass. View is a reference owned by the job for the
// duration of Render.
type Job struct {
	Target target.Handle
	View   frame.View
	Clear  core.Color
	Camera string
}

// Renderer executes one render phase and reports the targets that failed. A
// target absent from the result rendered successfully.
type Renderer interface {
	Render(jobs []Job) map[target.Handle]error
}
