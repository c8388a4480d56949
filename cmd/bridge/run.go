package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"render-bridge/bridge"
	"render-bridge/config"
	"render-bridge/log"
	"render-bridge/scene"
	"render-bridge/ui"
	"render-bridge/vulkan"
)

// Run opens the configured windows and runs the render loop on a worker
// goroutine while the UI loop owns the main thread.
func Run(ctx *cli.Context) error {
	flagged := setupLogging(ctx)

	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return err
	}
	if !flagged {
		log.SetLevel(cfg.LogLevel)
		for module, level := range cfg.LogLevels {
			log.SetModuleLevel(module, level)
		}
	}

	var cameras []*scene.Camera
	if cfg.Scene != "" {
		if cameras, err = scene.LoadCameras(cfg.Scene); err != nil {
			return err
		}
	}

	gpu, err := openGPU(cfg.Vulkan)
	if err != nil {
		return err
	}
	defer gpu.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	uiCtx, stopUI := context.WithCancel(sigCtx)
	defer stopUI()

	uiLoop := ui.NewLoop(cfg.PresentRate)
	app, err := bridge.NewApp(bridge.Options{
		Exporter:      gpu.exporter,
		Renderer:      gpu.renderer,
		Opens:         uiLoop.Opens(),
		UIDone:        uiLoop.Done(),
		ExitCondition: cfg.ExitCondition,
	})
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		defer stopUI()
		defer app.Close()

		if err := openWindows(app, cfg, cameras); err != nil {
			return err
		}
		logger.Noticef("relaying %d window(s) with %d camera(s)", app.Len(), len(app.Cameras()))
		return bridge.NewLoop(app, cfg.PassRate).Run(sigCtx)
	})

	uiErr := uiLoop.Run(uiCtx)
	renderErr := g.Wait()
	if uiErr != nil {
		return uiErr
	}
	if errors.Is(renderErr, bridge.ErrUILoopGone) && sigCtx.Err() != nil {
		return nil
	}
	return renderErr
}

// openWindows opens every configured window and attaches the cameras. Without
// scene cameras each window gets an animated clear-colour camera.
func openWindows(app *bridge.App, cfg *config.Config, cameras []*scene.Camera) error {
	primaryCfg, others := cfg.AllWindows()

	var windows []*bridge.Window
	if primaryCfg != nil {
		w, err := app.OpenPrimaryWindow(*primaryCfg)
		if err != nil {
			return err
		}
		windows = append(windows, w)
	}
	for _, wc := range others {
		w, err := app.OpenWindow(wc)
		if err != nil {
			return err
		}
		windows = append(windows, w)
	}

	if len(cameras) > 0 {
		for i, cam := range cameras {
			if primaryCfg == nil {
				cam.Target = scene.Texture(windows[i%len(windows)].Target())
			}
			app.AddCamera(cam)
		}
		return nil
	}

	for i, w := range windows {
		cam := scene.NewCamera(fmt.Sprintf("%s/clear", w.Config().Title), scene.Texture(w.Target()))
		cam.Palette = scene.DayNight()
		cam.Time = float32(i) / float32(len(windows))
		app.AddCamera(cam)
	}
	return nil
}

type gpu struct {
	instance *vulkan.Instance
	device   *vulkan.Device
	exporter *vulkan.Exporter
	renderer *vulkan.Renderer
}

func openGPU(cfg config.Vulkan) (*gpu, error) {
	g := &gpu{}
	ok := false
	defer func() {
		if !ok {
			g.Close()
		}
	}()

	var err error

	icfg := vulkan.DefaultInstanceConfig()
	icfg.EnableValidation = cfg.Validation
	if g.instance, err = vulkan.NewInstance(icfg); err != nil {
		return nil, err
	}

	device, err := vulkan.PickPhysicalDevice(g.instance, cfg.Device)
	if err != nil {
		return nil, err
	}
	if err = device.CreateLogicalDevice(); err != nil {
		return nil, err
	}
	g.device = device
	logger.Noticef("using %s GPU %q", device.Type(), device.Name())

	if g.exporter, err = vulkan.NewExporter(g.device); err != nil {
		return nil, err
	}
	if g.renderer, err = vulkan.NewRenderer(g.exporter); err != nil {
		return nil, err
	}
	ok = true
	return g, nil
}

func (g *gpu) Close() {
	if g.device != nil {
		g.device.WaitIdle()
	}
	if g.renderer != nil {
		g.renderer.Destroy()
	}
	if g.exporter != nil {
		g.exporter.Destroy()
	}
	if g.device != nil {
		g.device.Destroy()
	}
	if g.instance != nil {
		g.instance.Destroy()
	}
}
