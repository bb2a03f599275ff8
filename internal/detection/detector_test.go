//go:build withcv

package detection

import (
	"context"
	"image"
	"image/color"
	"testing"

	"ellipse-detector/internal/geometry"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func blankMask(t *testing.T) gocv.Mat {
	t.Helper()
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC1)
}

func adopt(t *testing.T, m gocv.Mat) *safe.Mat {
	t.Helper()
	sm, err := safe.Adopt(m, nil, "test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sm.Close)
	return sm
}

func TestDetectFilledEllipse(t *testing.T) {
	mask := blankMask(t)
	gocv.Ellipse(&mask, image.Pt(320, 240), image.Pt(120, 80), 0, 0, 360, white, -1)
	binary := adopt(t, mask)

	cfg := Config{
		Ellipse: &EllipseSearch{
			Gate: geometry.EllipseGate{
				MinArea:        250,
				MinCompactness: 0.5,
				MinAspect:      0.5,
				AngleTolerance: 181,
			},
			Policy: geometry.LargestArea,
		},
	}

	res, err := Detect(context.Background(), binary, nil, cfg)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if res.Ellipse == nil {
		t.Fatalf("no ellipse accepted; measurements: %+v", res.Measurements)
	}

	e := res.Ellipse.Ellipse
	if d := e.Center.Sub(image.Pt(320, 240)); d.X*d.X+d.Y*d.Y > 4 {
		t.Errorf("center = %v, want near (320,240)", e.Center)
	}
	if ar := e.AspectRatio(); ar < 0.6 || ar > 0.73 {
		t.Errorf("aspect = %v, want about 2/3", ar)
	}
}

func TestDetectSkipsFourPointContours(t *testing.T) {
	mask := blankMask(t)
	gocv.Rectangle(&mask, image.Rect(100, 100, 300, 200), white, -1)
	binary := adopt(t, mask)

	cfg := Config{
		Ellipse: &EllipseSearch{
			Gate:   geometry.EllipseGate{MinArea: 0, AngleTolerance: 181},
			Policy: geometry.FirstMatch,
		},
		Quad: &QuadSearch{Gate: geometry.QuadGate{Epsilon: 0.02}, Policy: geometry.FirstMatch},
	}

	res, err := Detect(context.Background(), binary, nil, cfg)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if res.Ellipse != nil {
		t.Error("rectangle accepted as ellipse")
	}
	if len(res.Measurements) != 1 || res.Measurements[0].Reason != geometry.ReasonTooFewPoints {
		t.Errorf("measurements = %+v, want one too-few-points skip", res.Measurements)
	}
	if len(res.Quad) != 4 {
		t.Errorf("quad = %v, want 4 vertices", res.Quad)
	}
}

func TestDetectEnclosingCircleAndTopN(t *testing.T) {
	mask := blankMask(t)
	gocv.Circle(&mask, image.Pt(200, 200), 60, white, -1)
	gocv.Circle(&mask, image.Pt(500, 300), 10, white, -1)
	binary := adopt(t, mask)

	cfg := Config{
		TopN:      1,
		Enclosing: &geometry.EnclosingCircleGate{MinRadius: 20, MinFillRatio: 0.7, MaxAreaDelta: 1000},
	}

	res, err := Detect(context.Background(), binary, nil, cfg)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if res.Contours != 2 {
		t.Errorf("contours = %d, want 2", res.Contours)
	}
	if res.Enclosing == nil {
		t.Fatal("circle not found")
	}
	if r := res.Enclosing.Radius; r < 58 || r > 62 {
		t.Errorf("radius = %d, want about 60", r)
	}
}

func TestDetectRejectsColorInput(t *testing.T) {
	colour := adopt(t, gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3))
	if _, err := Detect(context.Background(), colour, nil, Config{}); err == nil {
		t.Fatal("expected error for three channel input")
	}
}
