//go:build withcv

package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ellipse-detector/internal/config"
	"ellipse-detector/internal/debug/timing"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/memory"
	"ellipse-detector/internal/pipeline"
	"ellipse-detector/internal/report"

	"gocv.io/x/gocv"
)

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

func testConfig(t *testing.T, imagePath string) config.Config {
	cfg := config.Default()
	cfg.Image = imagePath
	cfg.Output = filepath.Join(t.TempDir(), "results")
	cfg.Mode = config.ModeBatch
	cfg.LogLevel = "error"
	return cfg
}

func newTestSession(t *testing.T, cfg config.Config) *Session {
	t.Helper()
	mem := memory.NewManager(logger.NewNop())
	coord := pipeline.NewCoordinator(mem, logger.NewNop(), timing.NewTracker(), cfg.Width, cfg.Height)
	t.Cleanup(coord.Shutdown)

	s := NewSession(coord, logger.NewNop(), cfg)
	if err := s.Open(cfg.Strategy, cfg.Params); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func saveOnce(t *testing.T, cfg config.Config) []string {
	t.Helper()
	s := newTestSession(t, cfg)
	if _, err := s.Process(context.Background()); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	written, err := s.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return written
}

func TestSessionSaveIsRepeatable(t *testing.T) {
	path := writeScene(t)

	first := testConfig(t, path)
	second := testConfig(t, path)
	a := saveOnce(t, first)
	b := saveOnce(t, second)

	if len(a) != 6 || len(b) != 6 {
		t.Fatalf("written %v and %v, want five stages and a report", a, b)
	}
	if filepath.Base(a[5]) != report.FileName {
		t.Errorf("last file = %s, want %s", filepath.Base(a[5]), report.FileName)
	}
	for i := range a {
		da, err := os.ReadFile(a[i])
		if err != nil {
			t.Fatal(err)
		}
		db, err := os.ReadFile(b[i])
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(da, db) {
			t.Errorf("%s differs between identical runs", filepath.Base(a[i]))
		}
	}
}

func TestSessionSaveWithPlot(t *testing.T) {
	cfg := testConfig(t, writeScene(t))
	cfg.Report = false
	cfg.Plot = true

	written := saveOnce(t, cfg)
	last := written[len(written)-1]
	if filepath.Base(last) != report.PlotName {
		t.Errorf("last file = %s, want %s", last, report.PlotName)
	}
	for _, p := range written {
		if filepath.Base(p) == report.FileName {
			t.Error("report written while disabled")
		}
	}
}

func TestSessionOpenRejectsUnknownOverride(t *testing.T) {
	cfg := testConfig(t, writeScene(t))
	cfg.Params = map[string]int{"canny_low": 10}

	mem := memory.NewManager(logger.NewNop())
	coord := pipeline.NewCoordinator(mem, logger.NewNop(), timing.NewTracker(), cfg.Width, cfg.Height)
	defer coord.Shutdown()

	err := NewSession(coord, logger.NewNop(), cfg).Open("otsu-ellipse", cfg.Params)
	var ve *models.ValidationError
	if !errors.As(err, &ve) || ve.Parameter != "canny_low" {
		t.Errorf("Open() error = %v, want ValidationError for canny_low", err)
	}
}

func TestBatchRunWritesResults(t *testing.T) {
	cfg := testConfig(t, writeScene(t))
	cfg.Strategy = "canny-shapes"

	application, err := NewApplication(cfg)
	if err != nil {
		t.Fatalf("NewApplication() error = %v", err)
	}
	if err := application.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range []string{"1_original.jpg", "2_blurred.jpg", "3_edges.jpg", "4_result.jpg", report.FileName} {
		if _, err := os.Stat(filepath.Join(cfg.Output, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestBatchRunMissingImage(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "absent.jpg"))

	if _, err := NewApplication(cfg); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("NewApplication() error = %v", err)
	}
}
