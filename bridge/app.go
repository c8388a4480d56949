// Package bridge relays exported render targets from the render loop to
// windows owned by the UI thread.
//
// One render pass runs these phases in order:
//
//	Poll       close removed windows, export targets for new sizes into slot A
//	Extract    move pending frames out of slot A into per-window carriers
//	Render     draw every camera into its target
//	Send       hand carried frames whose target rendered to slot B
//	Reconcile  put frames that were not sent back into slot A
package bridge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"render-bridge/core"
	"render-bridge/frame"
	"render-bridge/log"
	"render-bridge/scene"
	"render-bridge/target"
)

var logger = log.New("bridge")

type Options struct {
	Exporter Exporter
	Renderer Renderer

	// Opens delivers open requests to the UI loop. UIDone is closed when the
	// UI loop has stopped.
	Opens  chan<- core.OpenRequest
	UIDone <-chan struct{}

	ExitCondition ExitCondition

	// Registry is created when nil.
	Registry *target.Registry
}

type App struct {
	exporter Exporter
	renderer Renderer
	registry *target.Registry
	opens    chan<- core.OpenRequest
	uiDone   <-chan struct{}
	exit     ExitCondition

	mu            sync.Mutex
	windows       map[WindowID]*Window
	carriers      map[WindowID]*frame.Carrier
	cameras       []*scene.Camera
	primary       WindowID
	primaryClosed bool
}

func NewApp(opts Options) (*App, error) {
	if opts.Exporter == nil || opts.Renderer == nil {
		return nil, ErrNoRenderer
	}
	registry := opts.Registry
	if registry == nil {
		registry = target.NewRegistry()
	}
	return &App{
		exporter: opts.Exporter,
		renderer: opts.Renderer,
		registry: registry,
		opens:    opts.Opens,
		uiDone:   opts.UIDone,
		exit:     opts.ExitCondition,
		windows:  make(map[WindowID]*Window),
		carriers: make(map[WindowID]*frame.Carrier),
	}, nil
}

func (a *App) Registry() *target.Registry {
	return a.registry
}

// OpenWindow reserves a texture target for a new window and asks the UI loop
// to create it. It blocks until the request is accepted and fails with
// ErrUILoopGone if the UI loop has stopped.
func (a *App) OpenWindow(cfg core.WindowConfig) (*Window, error) {
	handle, err := a.registry.Reserve()
	if err != nil {
		return nil, fmt.Errorf("open window %q: %w", cfg.Title, err)
	}

	w := &Window{
		id:       uuid.New(),
		app:      a,
		config:   cfg,
		shared:   core.NewSharedState(),
		commands: make(chan core.Command, CommandQueueSize),
		next:     frame.NewSlot(),
		out:      frame.NewSlot(),
		handle:   handle,
	}

	req := core.OpenRequest{
		Config:   cfg,
		Commands: w.commands,
		State:    w.shared,
		Frames:   w.out,
	}

	if err := a.deliver(req); err != nil {
		a.registry.Remove(handle)
		return nil, err
	}

	a.mu.Lock()
	a.windows[w.id] = w
	a.mu.Unlock()

	logger.Infof("opened window %s %q (%dx%d) -> %v", w.id, cfg.Title, cfg.Width, cfg.Height, handle)
	return w, nil
}

func (a *App) deliver(req core.OpenRequest) error {
	select {
	case <-a.uiDone:
		return ErrUILoopGone
	default:
	}

	select {
	case a.opens <- req:
		return nil
	case <-a.uiDone:
		return ErrUILoopGone
	}
}

// OpenPrimaryWindow opens a window and marks it primary.
func (a *App) OpenPrimaryWindow(cfg core.WindowConfig) (*Window, error) {
	w, err := a.OpenWindow(cfg)
	if err != nil {
		return nil, err
	}
	if err := a.SetPrimary(w.id); err != nil {
		return nil, err
	}
	return w, nil
}

// SetPrimary marks id as the primary window. Cameras targeting the primary
// window render into its texture from the next pass on.
func (a *App) SetPrimary(id WindowID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, ok := a.windows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWindowNotFound, id)
	}
	a.primary = id
	a.primaryClosed = false

	for _, cam := range a.cameras {
		if cam.Target.Kind == scene.TargetPrimaryWindow {
			logger.Infof("%v retargeted to %v", cam, w.handle)
		}
	}
	return nil
}

// Primary returns the primary window, if one is set.
func (a *App) Primary() (*Window, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.windows[a.primary]
	return w, ok
}

func (a *App) AddCamera(cam *scene.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cameras = append(a.cameras, cam)
	if h, ok := a.resolveLocked(cam); ok {
		logger.Infof("%v renders into %v", cam, h)
	}
}

func (a *App) Cameras() []*scene.Camera {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*scene.Camera(nil), a.cameras...)
}

func (a *App) resolveLocked(cam *scene.Camera) (target.Handle, bool) {
	switch cam.Target.Kind {
	case scene.TargetPrimaryWindow:
		w, ok := a.windows[a.primary]
		if !ok {
			return 0, false
		}
		return w.handle, true
	default:
		return cam.Target.Handle, cam.Target.Handle != 0
	}
}

func (a *App) Window(id WindowID) (*Window, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.windows[id]
	return w, ok
}

func (a *App) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.windows)
}

// Poll removes closed windows and exports a new render target for every
// window whose pixel size changed. Export failures keep the previous target
// and are not retried until the size changes again.
func (a *App) Poll() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for id, w := range a.windows {
		if w.shared.IsClosed() {
			a.removeLocked(w)
			continue
		}

		width, height, scale := w.shared.Load()
		size, ok := frame.EffectiveSize(width, height, scale)
		if !ok || size == w.lastSize {
			continue
		}

		prev := w.State()
		if prev == Uninitialized {
			w.setState(Sized)
		}
		w.lastSize = size
		logger.Debugf("window %s: resize to %dx%d (scale %d)", id, size.Width, size.Height, scale)

		if err := a.exportLocked(w, size); err != nil {
			logger.Errorf("window %s: %v", id, err)
			errs = append(errs, fmt.Errorf("window %s: %w", id, err))
			if prev == Ready {
				w.setState(Ready)
			} else {
				w.setState(Sized)
			}
			continue
		}
		w.setState(Ready)
	}
	return errors.Join(errs...)
}

func (a *App) exportLocked(w *Window, size frame.Size) error {
	w.setState(Exporting)

	view, mem, err := a.exporter.Export(size)
	if err != nil {
		return err
	}

	f := frame.New(view.Clone(), size, mem)
	if err := a.registry.Insert(w.handle, view); err != nil {
		f.Release()
		return err
	}
	w.next.Store(f)
	w.exports.Add(1)
	return nil
}

func (a *App) removeLocked(w *Window) {
	delete(a.windows, w.id)
	if c, ok := a.carriers[w.id]; ok {
		c.Drop()
		delete(a.carriers, w.id)
	}
	a.registry.Remove(w.handle)
	w.next.Close()
	w.setState(Closed)

	if a.primary == w.id {
		a.primary = uuid.Nil
		a.primaryClosed = true
	}
	logger.Infof("window %s closed", w.id)
}

// Extract moves the pending frame of each window into a carrier.
func (a *App) Extract() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, w := range a.windows {
		c := a.carriers[id]
		if c == nil {
			c = &frame.Carrier{}
		}
		if c.Load(w.next) {
			a.carriers[id] = c
		}
	}
}

// Jobs builds one job per camera with an exported target. Every job holds a
// view reference; ReleaseJobs drops them.
func (a *App) Jobs() []Job {
	a.mu.Lock()
	defer a.mu.Unlock()

	jobs := make([]Job, 0, len(a.cameras))
	for _, cam := range a.cameras {
		h, ok := a.resolveLocked(cam)
		if !ok {
			continue
		}
		view, ok := a.registry.Acquire(h)
		if !ok {
			continue
		}
		jobs = append(jobs, Job{
			Target: h,
			View:   view,
			Clear:  cam.ClearColor,
			Camera: cam.Name,
		})
	}
	return jobs
}

func ReleaseJobs(jobs []Job) {
	for _, job := range jobs {
		job.View.Release()
	}
}

// Send hands every carried frame whose target did not fail to the UI side.
func (a *App) Send(failed map[target.Handle]error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, c := range a.carriers {
		w, ok := a.windows[id]
		if !ok {
			c.Drop()
			delete(a.carriers, id)
			continue
		}
		if _, bad := failed[w.handle]; bad {
			continue
		}
		c.SendTo(w.out)
	}
}

// Reconcile puts frames that were carried but not sent back into slot A
// unless a newer frame is already waiting there. It never creates frames.
func (a *App) Reconcile() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, c := range a.carriers {
		if w, ok := a.windows[id]; ok {
			c.PutBack(w.next)
		} else {
			c.Drop()
		}
		delete(a.carriers, id)
	}
}

// Advance moves every camera's animation forward by dt.
func (a *App) Advance(dt time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, cam := range a.cameras {
		cam.Advance(dt)
	}
}

// Pass runs one render pass. Export and render failures are returned joined;
// they do not stop later phases.
func (a *App) Pass(dt time.Duration) error {
	pollErr := a.Poll()
	a.Advance(dt)
	a.Extract()

	jobs := a.Jobs()
	failed := a.renderer.Render(jobs)
	ReleaseJobs(jobs)

	a.Send(failed)
	a.Reconcile()

	var renderErrs []error
	for h, err := range failed {
		renderErrs = append(renderErrs, fmt.Errorf("render %v: %w", h, err))
	}
	return errors.Join(pollErr, errors.Join(renderErrs...))
}

// ShouldExit evaluates the exit condition against the current windows.
func (a *App) ShouldExit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.exit {
	case ExitOnAllClosed:
		return len(a.windows) == 0
	case ExitOnPrimaryClosed:
		return a.primaryClosed
	default:
		return false
	}
}

// Close drops all render-side state. Frames already in slot B stay with the
// UI side.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, c := range a.carriers {
		c.Drop()
		delete(a.carriers, id)
	}
	for id, w := range a.windows {
		w.next.Close()
		w.setState(Closed)
		delete(a.windows, id)
	}
	a.registry.Close()
	a.cameras = nil
}
