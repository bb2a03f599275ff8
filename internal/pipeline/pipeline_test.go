//go:build withcv

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"ellipse-detector/internal/debug/timing"
	"ellipse-detector/internal/detection"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/memory"
	"ellipse-detector/internal/opencv/safe"
	"ellipse-detector/internal/strategy"

	"gocv.io/x/gocv"
)

// writeScene draws a dark ellipse and a dark square on a light background.
func writeScene(t *testing.T) string {
	t.Helper()

	scene := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(220, 220, 220, 0), 600, 800, gocv.MatTypeCV8UC3)
	defer scene.Close()

	dark := color.RGBA{R: 30, G: 30, B: 30, A: 255}
	gocv.Ellipse(&scene, image.Pt(300, 300), image.Pt(150, 100), 10, 0, 360, dark, -1)
	gocv.Rectangle(&scene, image.Rect(550, 100, 700, 250), dark, -1)

	path := filepath.Join(t.TempDir(), "scene.png")
	if !gocv.IMWrite(path, scene) {
		t.Fatal("failed to write test scene")
	}
	return path
}

func newTestCoordinator(t *testing.T) (*Coordinator, *memory.Manager) {
	t.Helper()
	mem := memory.NewManager(logger.NewNop())
	c := NewCoordinator(mem, logger.NewNop(), timing.NewTracker(), 640, 480)
	t.Cleanup(c.Shutdown)
	return c, mem
}

func TestLoadErrors(t *testing.T) {
	loader := NewImageLoader(nil, logger.NewNop(), timing.NewTracker())

	missing := filepath.Join(t.TempDir(), "nope.jpg")
	_, err := loader.Load(missing, LoadOptions{Width: 640, Height: 480})
	if err == nil || err.Error() != "image file "+missing+" not found" {
		t.Errorf("missing file error = %v", err)
	}

	garbage := filepath.Join(t.TempDir(), "garbage.jpg")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = loader.Load(garbage, LoadOptions{Width: 640, Height: 480})
	if err == nil || err.Error() != "failed to read image "+garbage {
		t.Errorf("unreadable file error = %v", err)
	}
}

func TestLoadResizesAndScales(t *testing.T) {
	path := writeScene(t)
	loader := NewImageLoader(nil, logger.NewNop(), timing.NewTracker())

	frame, err := loader.Load(path, LoadOptions{Width: 640, Height: 480})
	if err != nil {
		t.Fatal(err)
	}
	defer frame.Close()
	if frame.Width() != 640 || frame.Height() != 480 || frame.Gray.Channels() != 1 {
		t.Errorf("frame %dx%d gray channels %d", frame.Width(), frame.Height(), frame.Gray.Channels())
	}

	half, err := loader.Load(path, LoadOptions{Width: 640, Height: 480, Scale: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	defer half.Close()
	if half.Width() != 400 || half.Height() != 300 {
		t.Errorf("scaled frame %dx%d, want 400x300", half.Width(), half.Height())
	}
}

func TestEveryStrategyProducesItsStages(t *testing.T) {
	path := writeScene(t)

	for _, name := range []string{"otsu-ellipse", "canny-ellipse", "adaptive-ellipse", "canny-shapes", "adaptive-shapes"} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestCoordinator(t)
			if err := c.SetStrategy(name); err != nil {
				t.Fatal(err)
			}
			if err := c.LoadImage(path); err != nil {
				t.Fatal(err)
			}

			result, err := c.Process(context.Background())
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			for _, stage := range c.Strategy().RequiredStages() {
				if _, ok := result.Stage(stage); !ok {
					t.Errorf("stage %s missing", stage)
				}
			}

			mosaic, err := c.MosaicMat()
			if err != nil {
				t.Fatalf("MosaicMat() error = %v", err)
			}
			defer mosaic.Close()
			if mosaic.Cols() != 2*result.Width() || mosaic.Rows() != 2*result.Height() || mosaic.Channels() != 3 {
				t.Errorf("mosaic %dx%dx%d", mosaic.Cols(), mosaic.Rows(), mosaic.Channels())
			}
		})
	}
}

func TestSaveIsDeterministic(t *testing.T) {
	path := writeScene(t)

	run := func(dir string) []string {
		c, _ := newTestCoordinator(t)
		if err := c.SetStrategy("otsu-ellipse"); err != nil {
			t.Fatal(err)
		}
		if err := c.LoadImage(path); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Parameters().Set("pre_blur", 4); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Process(context.Background()); err != nil {
			t.Fatal(err)
		}
		written, err := c.Save(dir)
		if err != nil {
			t.Fatal(err)
		}
		return written
	}

	first := run(filepath.Join(t.TempDir(), "a"))
	second := run(filepath.Join(t.TempDir(), "b", "nested"))

	want := []string{"1_original.jpg", "2_threshold.jpg", "3_morphology.jpg", "4_dilated.jpg", "5_result.jpg"}
	if len(first) != len(want) || len(second) != len(want) {
		t.Fatalf("written %v and %v", first, second)
	}
	for i := range want {
		if filepath.Base(first[i]) != want[i] {
			t.Errorf("file %d = %s, want %s", i, filepath.Base(first[i]), want[i])
		}
		a, err := os.ReadFile(first[i])
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(second[i])
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between identical runs", want[i])
		}
	}
}

func TestSaveValidatesStages(t *testing.T) {
	c, mem := newTestCoordinator(t)
	if err := c.SetStrategy("otsu-ellipse"); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	_, err := c.Save(dir)
	var stageErr *models.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Save() before processing error = %v, want StageError", err)
	}
	if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
		t.Error("output directory created despite validation failure")
	}

	saver := NewImageSaver(logger.NewNop(), timing.NewTracker())
	partial := newResultBuilder("otsu-ellipse", models.Parameters{})
	dilated, err := safe.NewMat(10, 10, gocv.MatTypeCV8UC1, mem, "test")
	if err != nil {
		t.Fatal(err)
	}
	partial.add(models.StageDilated, dilated)
	result := partial.build(detection.Result{}, nil)
	defer result.Close()

	files := []models.StageFile{
		{Stage: models.StageDilated, File: "4_dilated.jpg"},
		{Stage: models.StageOriginal, File: "1_original.jpg"},
	}
	if _, err := saver.Save(result, files, dir); !errors.As(err, &stageErr) || stageErr.Stage != models.StageOriginal {
		t.Errorf("Save() error = %v, want missing original", err)
	}
	if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
		t.Error("partial result wrote files")
	}
}

func TestStrategySwitchDropsPreviousResult(t *testing.T) {
	path := writeScene(t)
	c, _ := newTestCoordinator(t)
	if err := c.SetStrategy("otsu-ellipse"); err != nil {
		t.Fatal(err)
	}
	if err := c.LoadImage(path); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Process(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := c.SetStrategy("canny-ellipse"); err != nil {
		t.Fatal(err)
	}
	if c.Current() != nil {
		t.Error("result of the previous strategy still current")
	}

	dir := filepath.Join(t.TempDir(), "out")
	_, err := c.Save(dir)
	var stageErr *models.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Save() after strategy switch error = %v, want StageError", err)
	}
	if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
		t.Error("stale stages written after strategy switch")
	}
	if _, err := c.MosaicMat(); err == nil {
		t.Error("MosaicMat() rendered a stale result")
	}
}

func TestFailedRunReleasesItsMats(t *testing.T) {
	mem := memory.NewManager(logger.NewNop())
	frame, err := NewImageLoader(mem, logger.NewNop(), timing.NewTracker()).Load(writeScene(t), LoadOptions{Width: 640, Height: 480})
	if err != nil {
		t.Fatal(err)
	}
	defer frame.Close()

	s, err := strategy.Lookup("adaptive-shapes")
	if err != nil {
		t.Fatal(err)
	}
	houghStage := s.HoughStage
	s.HoughStage = "absent"

	before := mem.GetStats().ActiveMats
	processor := NewImageProcessor(mem, logger.NewNop(), timing.NewTracker())
	if _, err := processor.Run(context.Background(), frame, s, s.NewParameterSet().Snapshot()); err == nil {
		t.Fatal("Run() succeeded without its hough stage")
	}
	if after := mem.GetStats().ActiveMats; after != before {
		t.Errorf("active Mats %d after failed pass, want %d: %v", after, before, mem.Outstanding())
	}

	s.HoughStage = houghStage
	result, err := processor.Run(context.Background(), frame, s, s.NewParameterSet().Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := mem.GetStats().ActiveMats, before+int64(len(result.Stages())); got != want {
		t.Errorf("active Mats %d with result open, want %d", got, want)
	}
	result.Close()
	if after := mem.GetStats().ActiveMats; after != before {
		t.Errorf("active Mats %d after closing result, want %d", after, before)
	}
}
