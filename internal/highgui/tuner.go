// Package highgui is the OpenCV window mode: one trackbar per parameter,
// polled every frame.
package highgui

import (
	"context"

	"ellipse-detector/internal/detection"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"
	"ellipse-detector/internal/strategy"

	"gocv.io/x/gocv"
)

const (
	componentHighGUI = "HighGUI"

	keyEscape = 27
	keyNone   = -1
)

type Backend interface {
	Strategy() strategy.Strategy
	Parameters() *models.ParameterSet
	Process(ctx context.Context) (detection.Result, error)
	MosaicMat() (*safe.Mat, error)
	Save() ([]string, error)
}

// slider is the part of a trackbar the poll loop uses.
type slider interface {
	GetPos() int
}

// binding pairs a trackbar with its parameter. pos is the last raw position
// seen and value the coerced value it produced.
type binding struct {
	name   string
	slider slider
	pos    int
	value  int
}

type Tuner struct {
	backend Backend
	log     logger.Logger
	title   string
}

func NewTuner(backend Backend, log logger.Logger, title string) *Tuner {
	return &Tuner{backend: backend, log: log, title: title}
}

// Run polls until Esc, a closed window or ctx cancellation.
func (t *Tuner) Run(ctx context.Context) error {
	window := gocv.NewWindow(t.title)
	defer window.Close()

	params := t.backend.Parameters()
	var bindings []*binding
	for _, def := range params.Definitions() {
		tb := window.CreateTrackbar(def.Label, def.Range.Max)
		tb.SetMin(def.Range.Min)
		value, _ := params.Get(def.Name)
		tb.SetPos(value)
		bindings = append(bindings, &binding{name: def.Name, slider: tb, pos: value, value: value})
	}

	t.log.Info(componentHighGUI, "window opened", map[string]interface{}{
		"strategy":  t.backend.Strategy().Name,
		"trackbars": len(bindings),
	})

	dirty := true
	for {
		if ctx.Err() != nil {
			return nil
		}

		if syncParameters(params, bindings) {
			dirty = true
		}
		if dirty {
			t.refresh(ctx, window)
			dirty = false
		}

		switch key := window.WaitKey(1); normalizeKey(key) {
		case keyEscape:
			t.log.Info(componentHighGUI, "escape pressed", nil)
			return nil
		case 's':
			t.save()
		}

		if window.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			return nil
		}
	}
}

// syncParameters copies moved trackbars into params. Trackbars stay where the
// user left them so an odd parameter can still step down through an even
// position. It reports whether any coerced value changed.
func syncParameters(params *models.ParameterSet, bindings []*binding) bool {
	changed := false
	for _, b := range bindings {
		raw := b.slider.GetPos()
		if raw == b.pos {
			continue
		}
		b.pos = raw

		value, err := params.Set(b.name, raw)
		if err != nil {
			continue
		}
		if value != b.value {
			changed = true
			b.value = value
		}
	}
	return changed
}

func normalizeKey(key int) int {
	if key == keyNone {
		return keyNone
	}
	key &= 0xFF
	if key == 'S' {
		return 's'
	}
	return key
}

// refresh processes and shows the mosaic. A failed pass keeps the previous
// image on screen.
func (t *Tuner) refresh(ctx context.Context, window *gocv.Window) {
	if _, err := t.backend.Process(ctx); err != nil {
		return
	}
	mosaic, err := t.backend.MosaicMat()
	if err != nil {
		t.log.Error(componentHighGUI, err, nil)
		return
	}
	defer mosaic.Close()
	window.IMShow(mosaic.GetMat())
}

func (t *Tuner) save() {
	written, err := t.backend.Save()
	if err != nil {
		t.log.Error(componentHighGUI, err, map[string]interface{}{"action": "save"})
		return
	}
	t.log.Info(componentHighGUI, "saved", map[string]interface{}{"files": len(written)})
}
