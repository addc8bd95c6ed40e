package main

import (
	"context"
	"runtime"
	"time"

	"image-workbench/internal/config"
	"image-workbench/internal/controllers"
	"image-workbench/internal/logger"
	"image-workbench/internal/metrics"
	"image-workbench/internal/opencv/memory"
	"image-workbench/internal/opencv/safe"
	"image-workbench/internal/services"
	"image-workbench/internal/session"
	"image-workbench/internal/shutdown"
	"image-workbench/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

// Application wires the editor: session and services underneath, the
// controller and view on top.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller *controllers.MainController
	view       *views.MainView
	session    *session.Session

	memoryManager *memory.Manager
	recorder      *metrics.Recorder
	shutdown      *shutdown.Manager
}

func NewApplication(cfg config.Config, log logger.Logger) (*Application, error) {
	fyneApp := app.NewWithID(AppID)
	fyneApp.Settings().SetTheme(views.NewWorkbenchTheme())

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.CenterOnScreen()
	window.SetMaster()

	memManager := memory.NewManager(log)
	safe.SetDefaultTracker(memManager)

	recorder := metrics.NewRecorder()
	recorder.TrackActiveMats(func() int64 { return memManager.GetStats().ActiveMats })

	imageService := services.NewImageService(cfg.Output.JPEGQuality, cfg.Output.DefaultFormat, log)
	processingService := services.NewProcessingService(log)

	sess := session.New(cfg.History.Capacity, processingService, imageService, log)
	sess.SetObserver(recorder)

	controller := controllers.NewMainController(sess, imageService, memManager, log)
	view := views.NewMainView(window, cfg.Defaults)
	controller.SetMainView(view)
	view.SetQuitHandler(fyneApp.Quit)

	shutdownManager := shutdown.NewManager(log)
	if cfg.Metrics.Addr != "" {
		server, err := recorder.Serve(cfg.Metrics.Addr, log)
		if err != nil {
			return nil, err
		}
		shutdownManager.Register("metrics server", shutdown.Func(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Warning("Main", "metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
			}
		}))
	}
	shutdownManager.Register("memory manager", memManager)
	shutdownManager.Register("session", sess)
	shutdownManager.Register("controller", controller)

	log.Info("Main", "application initialized", map[string]interface{}{
		"version":          version,
		"go_version":       runtime.Version(),
		"history_capacity": cfg.History.Capacity,
		"metrics_addr":     cfg.Metrics.Addr,
	})

	return &Application{
		fyneApp:       fyneApp,
		window:        window,
		logger:        log,
		controller:    controller,
		view:          view,
		session:       sess,
		memoryManager: memManager,
		recorder:      recorder,
		shutdown:      shutdownManager,
	}, nil
}

// Run shows the window and blocks until the app quits or a signal arrives.
func (a *Application) Run() {
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.window.Show()
	a.fyneApp.Run()

	a.shutdown.Shutdown()
	a.logger.Info("Main", "application terminated", nil)
}
