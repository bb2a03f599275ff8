package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"

	"ellipse-detector/internal/debug/timing"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/conversion"
	"ellipse-detector/internal/opencv/memory"
	"ellipse-detector/internal/opencv/safe"
	"ellipse-detector/internal/strategy"
)

// Coordinator owns the loaded frame, the active strategy with its live
// parameters and the latest successful result. Passes are serialized.
type Coordinator struct {
	mu         sync.Mutex
	loader     *ImageLoader
	processor  *ImageProcessor
	saver      *ImageSaver
	memory     *memory.Manager
	log        logger.Logger
	size       LoadOptions
	path       string
	frame      *Frame
	frameScale float64
	strategy   strategy.Strategy
	params     *models.ParameterSet
	current    *StageResult
}

// NewCoordinator wires the pipeline stages around one memory manager and
// timing tracker. width and height are the default working resolution.
func NewCoordinator(mem *memory.Manager, log logger.Logger, timer *timing.Tracker, width, height int) *Coordinator {
	return &Coordinator{
		loader:    NewImageLoader(mem, log, timer),
		processor: NewImageProcessor(mem, log, timer),
		saver:     NewImageSaver(log, timer),
		memory:    mem,
		log:       log,
		size:      LoadOptions{Width: width, Height: height},
	}
}

// SetStrategy activates name with default parameters. The frame is reloaded
// when the new strategy uses a different working resolution.
func (c *Coordinator) SetStrategy(name string) error {
	s, err := strategy.Lookup(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.strategy = s
	c.params = s.NewParameterSet()

	// The previous result was built for another stage layout or parameter set.
	c.current.Close()
	c.current = nil

	if c.path != "" && c.frame != nil && c.frameScale != s.Scale {
		if err := c.loadLocked(c.path); err != nil {
			return err
		}
	}

	c.log.Info(componentCoordinator, "strategy selected", map[string]interface{}{
		"strategy": s.Name,
		"params":   len(s.Parameters),
	})
	return nil
}

// LoadImage reads path at the working resolution of the active strategy.
func (c *Coordinator) LoadImage(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.params == nil {
		return fmt.Errorf("no strategy selected")
	}
	return c.loadLocked(path)
}

func (c *Coordinator) loadLocked(path string) error {
	opts := c.size
	opts.Scale = c.strategy.Scale

	frame, err := c.loader.Load(path, opts)
	if err != nil {
		return err
	}

	c.frame.Close()
	c.frame = frame
	c.frameScale = c.strategy.Scale
	c.path = path

	c.current.Close()
	c.current = nil
	return nil
}

func (c *Coordinator) Strategy() strategy.Strategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy
}

func (c *Coordinator) Parameters() *models.ParameterSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Process runs one pass with a fresh parameter snapshot. On failure the
// previous result stays current.
func (c *Coordinator) Process(ctx context.Context) (*StageResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frame == nil {
		return nil, fmt.Errorf("no image loaded")
	}
	if err := c.memory.CheckLimit(); err != nil {
		return nil, err
	}

	result, err := c.processor.Run(ctx, c.frame, c.strategy, c.params.Snapshot())
	if err != nil {
		c.log.Error(componentCoordinator, err, map[string]interface{}{"strategy": c.strategy.Name})
		return nil, err
	}

	c.current.Close()
	c.current = result
	return result, nil
}

// Current returns the latest successful result, or nil.
func (c *Coordinator) Current() *StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Save writes the stages of the current result into dir.
func (c *Coordinator) Save(dir string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.saver.Save(c.current, c.strategy.Files, dir)
}

// MosaicMat renders the 2×2 view of the current result. The caller closes it.
func (c *Coordinator) MosaicMat() (*safe.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mosaicLocked()
}

func (c *Coordinator) mosaicLocked() (*safe.Mat, error) {
	if c.current == nil {
		return nil, fmt.Errorf("nothing processed yet")
	}

	var tiles [4]*safe.Mat
	for i, name := range c.strategy.Mosaic {
		m, ok := c.current.Stage(name)
		if !ok {
			return nil, models.NewStageError(name, "missing for mosaic")
		}
		tiles[i] = m
	}
	return Mosaic(tiles, c.memory)
}

// MosaicImage renders the 2×2 view as a Go image for toolkit display.
func (c *Coordinator) MosaicImage() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mosaic, err := c.mosaicLocked()
	if err != nil {
		return nil, err
	}
	defer mosaic.Close()

	return conversion.MatToImage(mosaic)
}

// Shutdown releases the frame and current result.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current.Close()
	c.current = nil
	c.frame.Close()
	c.frame = nil
}
