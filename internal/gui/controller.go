package gui

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"ellipse-detector/internal/detection"
	guisync "ellipse-detector/internal/gui/sync"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/strategy"

	"fyne.io/fyne/v2"
)

const componentGUI = "GUI"

// Backend is the processing session the window drives.
type Backend interface {
	Strategies() []string
	Strategy() strategy.Strategy
	SelectStrategy(name string) error
	Parameters() *models.ParameterSet
	Process(ctx context.Context) (detection.Result, error)
	MosaicImage() (image.Image, error)
	Save() ([]string, error)
}

// Controller connects widget events to the backend. All backend calls run on
// one worker goroutine; widget updates go back through fyne.Do.
type Controller struct {
	ctx     context.Context
	backend Backend
	manager *Manager
	log     logger.Logger
	worker  *guisync.Coordinator
	started bool
}

func NewController(ctx context.Context, backend Backend, manager *Manager, log logger.Logger) *Controller {
	c := &Controller{
		ctx:     ctx,
		backend: backend,
		manager: manager,
		log:     log,
	}
	c.worker = guisync.NewCoordinator(c.process)

	manager.SetParameterChangeHandler(c.HandleParameterChange)
	manager.SetStrategyChangeHandler(c.HandleStrategyChange)
	manager.SetImageSaveHandler(c.HandleSave)
	return c
}

// Start shows the active strategy and runs the first pass. It is called on
// the UI thread.
func (c *Controller) Start() {
	c.showStrategy()
	c.started = true
	go c.worker.Run()
	c.worker.RequestRerun()
}

func (c *Controller) showStrategy() {
	s := c.backend.Strategy()
	params := c.backend.Parameters()

	values := make(map[string]int, len(s.Parameters))
	for _, def := range params.Definitions() {
		values[def.Name], _ = params.Get(def.Name)
	}
	c.manager.ShowStrategy(s.Name, s.Description, params.Definitions(), values)
}

func (c *Controller) HandleParameterChange(name string, raw int) {
	value, err := c.backend.Parameters().Set(name, raw)
	if err != nil {
		c.log.Warning(componentGUI, "parameter rejected", map[string]interface{}{
			"parameter": name,
			"value":     raw,
			"error":     err.Error(),
		})
		return
	}
	c.manager.ShowParameterValue(name, value)
	c.worker.RequestRerun()
}

func (c *Controller) HandleStrategyChange(name string) {
	c.worker.Submit(func() {
		err := c.backend.SelectStrategy(name)
		fyne.Do(func() {
			if err != nil {
				c.log.Error(componentGUI, err, map[string]interface{}{"strategy": name})
				c.manager.UpdateStatus("Strategy change failed: " + err.Error())
				c.showStrategy()
				return
			}
			c.showStrategy()
			c.manager.UpdateStatus("Strategy " + name)
		})
	})
	c.worker.RequestRerun()
}

func (c *Controller) HandleSave() {
	c.worker.Submit(func() {
		written, err := c.backend.Save()
		fyne.Do(func() {
			if err != nil {
				c.manager.UpdateStatus("Save failed: " + err.Error())
				return
			}
			dir := ""
			if len(written) > 0 {
				dir = filepath.Dir(written[0])
			}
			c.manager.UpdateStatus(fmt.Sprintf("Saved %d files to %s", len(written), dir))
		})
	})
}

// process runs on the worker. A failed pass keeps the previous mosaic.
func (c *Controller) process() {
	det, err := c.backend.Process(c.ctx)
	if err != nil {
		fyne.Do(func() {
			c.manager.UpdateStatus("Processing failed: " + err.Error())
		})
		return
	}

	img, err := c.backend.MosaicImage()
	if err != nil {
		c.log.Error(componentGUI, err, nil)
		fyne.Do(func() {
			c.manager.UpdateStatus("Display failed: " + err.Error())
		})
		return
	}

	status := "No shape found"
	if det.Found() {
		status = "Shape found"
	}
	fyne.Do(func() {
		c.manager.SetMosaic(img)
		c.manager.UpdateMetrics(det.Contours, det.Accepted())
		c.manager.UpdateStatus(status)
	})
}

// Shutdown stops the worker after the current pass.
func (c *Controller) Shutdown() {
	if !c.started {
		return
	}
	c.worker.Stop()
}
