// Package app wires configuration, the processing pipeline and the selected
// run mode.
package app

import (
	"fmt"

	"ellipse-detector/internal/config"
	"ellipse-detector/internal/debug/timing"
	"ellipse-detector/internal/gui"
	"ellipse-detector/internal/highgui"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/opencv/memory"
	"ellipse-detector/internal/pipeline"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

const (
	AppName    = "Ellipse Detector"
	AppID      = "com.imageprocessing.ellipse-detector"
	AppVersion = "1.0.0"

	componentApp = "Application"

	// Space below the mosaic for the parameter panel and status bar.
	controlsHeight = 360
)

type Application struct {
	cfg         config.Config
	log         *logger.ZerologAdapter
	memory      *memory.Manager
	timer       *timing.Tracker
	coordinator *pipeline.Coordinator
	session     *Session
	lifecycle   *Lifecycle
}

func NewApplication(cfg config.Config) (*Application, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logger.NewRotatingLogger(level, cfg.LogFile)

	mem := memory.NewManager(log)
	timer := timing.NewTracker()
	coordinator := pipeline.NewCoordinator(mem, log, timer, cfg.Width, cfg.Height)

	lifecycle := NewLifecycle(log, timer, mem)
	lifecycle.Register("logger", log)
	lifecycle.Register("memory manager", mem)
	lifecycle.Register("coordinator", coordinator)

	application := &Application{
		cfg:         cfg,
		log:         log,
		memory:      mem,
		timer:       timer,
		coordinator: coordinator,
		session:     NewSession(coordinator, log, cfg),
		lifecycle:   lifecycle,
	}

	log.Info(componentApp, "starting application", map[string]interface{}{
		"version":  AppVersion,
		"mode":     cfg.Mode,
		"strategy": cfg.Strategy,
		"image":    cfg.Image,
		"size":     fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
	})

	if err := application.session.Open(cfg.Strategy, cfg.Params); err != nil {
		log.Error(componentApp, err, map[string]interface{}{"image": cfg.Image})
		lifecycle.Shutdown()
		return nil, err
	}
	return application, nil
}

// Run executes the configured mode and shuts everything down afterwards.
func (a *Application) Run() error {
	defer a.lifecycle.Shutdown()

	switch a.cfg.Mode {
	case config.ModeBatch:
		a.lifecycle.Listen(nil)
		return a.runBatch()
	case config.ModeHighGUI:
		a.lifecycle.Listen(nil)
		title := AppName + " - " + a.session.Strategy().Name
		return highgui.NewTuner(a.session, a.log, title).Run(a.lifecycle.Context())
	default:
		return a.runInteractive()
	}
}

func (a *Application) runBatch() error {
	det, err := a.session.Process(a.lifecycle.Context())
	if err != nil {
		return err
	}

	written, err := a.session.Save()
	if err != nil {
		return err
	}

	a.log.Info(componentApp, "batch run complete", map[string]interface{}{
		"run_id":   a.session.RunID(),
		"contours": det.Contours,
		"accepted": det.Accepted(),
		"found":    det.Found(),
		"files":    len(written),
		"output":   a.cfg.Output,
	})
	return nil
}

func (a *Application) runInteractive() error {
	fyneApp := fyneapp.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(float32(a.cfg.WindowWidth), float32(a.cfg.WindowHeight)))
	window.CenterOnScreen()
	window.SetMaster()

	mosaicHeight := a.cfg.WindowHeight - controlsHeight
	if mosaicHeight < 240 {
		mosaicHeight = 240
	}
	manager := gui.NewManager(window, a.session.Strategies(), a.cfg.WindowWidth-20, mosaicHeight)
	controller := gui.NewController(a.lifecycle.Context(), a.session, manager, a.log)
	a.lifecycle.Register("gui controller", controller)

	manager.SetQuitHandler(fyneApp.Quit)
	a.lifecycle.Listen(func() {
		fyne.Do(fyneApp.Quit)
	})

	window.SetContent(manager.GetMainContainer())
	controller.Start()

	a.log.Info(componentApp, "GUI displayed", nil)
	window.ShowAndRun()
	return nil
}
