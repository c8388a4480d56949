package bridge

import (
	"sync"
	"sync/atomic"
	"testing"

	"render-bridge/core"
	"render-bridge/frame"
	"render-bridge/target"
)

type fakeView struct {
	refs     *atomic.Int32
	size     frame.Size
	released atomic.Bool
}

func (v *fakeView) Clone() frame.View {
	v.refs.Add(1)
	return &fakeView{refs: v.refs, size: v.size}
}

func (v *fakeView) Release() {
	if v.released.CompareAndSwap(false, true) {
		v.refs.Add(-1)
	}
}

type fakeExporter struct {
	mu    sync.Mutex
	sizes []frame.Size
	refs  []*atomic.Int32
	fail  error
}

func (e *fakeExporter) Export(size frame.Size) (frame.View, frame.Memory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fail != nil {
		return nil, frame.Memory{}, e.fail
	}
	e.sizes = append(e.sizes, size)
	refs := new(atomic.Int32)
	refs.Store(1)
	e.refs = append(e.refs, refs)
	return &fakeView{refs: refs, size: size}, frame.Memory{
		FD:             -1,
		AllocationSize: uint64(size.Width) * uint64(size.Height) * 4,
	}, nil
}

func (e *fakeExporter) setFail(err error) {
	e.mu.Lock()
	e.fail = err
	e.mu.Unlock()
}

func (e *fakeExporter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sizes)
}

// liveRefs sums the outstanding references over every export.
func (e *fakeExporter) liveRefs() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	var n int32
	for _, r := range e.refs {
		n += r.Load()
	}
	return n
}

type fakeRenderer struct {
	mu     sync.Mutex
	passes [][]Job
	fail   map[target.Handle]error
}

func (r *fakeRenderer) Render(jobs []Job) map[target.Handle]error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.passes = append(r.passes, append([]Job(nil), jobs...))
	if len(r.fail) == 0 {
		return nil
	}
	failed := make(map[target.Handle]error, len(r.fail))
	for h, err := range r.fail {
		failed[h] = err
	}
	return failed
}

func (r *fakeRenderer) setFail(h target.Handle, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, h)
		return
	}
	if r.fail == nil {
		r.fail = make(map[target.Handle]error)
	}
	r.fail[h] = err
}

func (r *fakeRenderer) lastPass() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.passes) == 0 {
		return nil
	}
	return r.passes[len(r.passes)-1]
}

// fakeUI accepts open requests the way the UI loop does.
type fakeUI struct {
	opens chan core.OpenRequest
	done  chan struct{}
	stop  chan struct{}
	wg    sync.WaitGroup

	mu   sync.Mutex
	reqs []core.OpenRequest
}

func startUI(t *testing.T) *fakeUI {
	t.Helper()
	ui := &fakeUI{
		opens: make(chan core.OpenRequest, 1),
		done:  make(chan struct{}),
		stop:  make(chan struct{}),
	}
	ui.wg.Add(1)
	go func() {
		defer ui.wg.Done()
		for {
			select {
			case req := <-ui.opens:
				ui.mu.Lock()
				ui.reqs = append(ui.reqs, req)
				ui.mu.Unlock()
			case <-ui.stop:
				return
			}
		}
	}()
	t.Cleanup(ui.halt)
	return ui
}

func (ui *fakeUI) halt() {
	select {
	case <-ui.stop:
	default:
		close(ui.stop)
		ui.wg.Wait()
	}
}

// exit stops accepting requests and signals that the UI loop is gone.
func (ui *fakeUI) exit() {
	ui.halt()
	select {
	case <-ui.done:
	default:
		close(ui.done)
	}
}

func (ui *fakeUI) requests() []core.OpenRequest {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return append([]core.OpenRequest(nil), ui.reqs...)
}

type harness struct {
	app      *App
	exporter *fakeExporter
	renderer *fakeRenderer
	ui       *fakeUI
}

func newHarness(t *testing.T, exit ExitCondition) *harness {
	t.Helper()
	h := &harness{
		exporter: &fakeExporter{},
		renderer: &fakeRenderer{},
		ui:       startUI(t),
	}
	app, err := NewApp(Options{
		Exporter:      h.exporter,
		Renderer:      h.renderer,
		Opens:         h.ui.opens,
		UIDone:        h.ui.done,
		ExitCondition: exit,
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	h.app = app
	return h
}

func (h *harness) open(t *testing.T, title string) *Window {
	t.Helper()
	cfg := core.DefaultWindowConfig()
	cfg.Title = title
	w, err := h.app.OpenWindow(cfg)
	if err != nil {
		t.Fatalf("OpenWindow: %v", err)
	}
	return w
}
