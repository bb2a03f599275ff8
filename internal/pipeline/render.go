package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"ellipse-detector/internal/detection"
	"ellipse-detector/internal/opencv/conversion"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

var (
	colorGreen = color.RGBA{G: 255, A: 255}
	colorBlue  = color.RGBA{B: 255, A: 255}
	colorRed   = color.RGBA{R: 255, A: 255}
)

// DrawStyle sets line widths for the result overlay.
type DrawStyle struct {
	Ellipse int
	Shapes  int
}

var defaultStyle = DrawStyle{Ellipse: 2, Shapes: 2}

// RenderResult copies original and draws the accepted shapes on the copy.
func RenderResult(original *safe.Mat, det detection.Result, style DrawStyle, tracker safe.Tracker) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(original, "render"); err != nil {
		return nil, err
	}

	src := original.GetMat()
	canvas := src.Clone()
	if err := drawResult(&canvas, det, style); err != nil {
		canvas.Close()
		return nil, fmt.Errorf("render: %w", err)
	}

	return safe.Adopt(canvas, tracker, "result")
}

func drawResult(canvas *gocv.Mat, det detection.Result, style DrawStyle) error {
	if det.Ellipse != nil && det.Ellipse.Ellipse != nil {
		e := det.Ellipse.Ellipse
		if err := gocv.Ellipse(canvas, e.Center, image.Pt(int(e.Width/2), int(e.Height/2)), e.Angle, 0, 360, colorGreen, style.Ellipse); err != nil {
			return fmt.Errorf("ellipse: %w", err)
		}
	}

	if len(det.Quad) > 0 {
		if err := drawPolygon(canvas, det.Quad, colorGreen, style.Shapes); err != nil {
			return fmt.Errorf("quadrilateral: %w", err)
		}
	}

	if len(det.CircleContour) > 0 {
		if err := drawPolygon(canvas, det.CircleContour, colorBlue, style.Shapes); err != nil {
			return fmt.Errorf("circle contour: %w", err)
		}
	}

	if det.Round != nil {
		r := det.Round
		if err := gocv.Ellipse(canvas, r.Center, image.Pt(int(r.Width/2), int(r.Height/2)), r.Angle, 0, 360, colorBlue, style.Shapes); err != nil {
			return fmt.Errorf("round ellipse: %w", err)
		}
	}

	for _, c := range det.Hough {
		if err := gocv.Circle(canvas, c.Center, c.Radius, colorRed, style.Shapes); err != nil {
			return fmt.Errorf("hough circle: %w", err)
		}
	}
	return nil
}

func drawPolygon(canvas *gocv.Mat, points []image.Point, c color.RGBA, thickness int) error {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{points})
	defer pv.Close()
	return gocv.DrawContours(canvas, pv, -1, c, thickness)
}

// Mosaic tiles four stages into a 2×2 grid, row by row. Single-channel stages
// are expanded to BGR. Every tile must share the size of the first.
func Mosaic(tiles [4]*safe.Mat, tracker safe.Tracker) (*safe.Mat, error) {
	bgr := make([]*safe.Mat, 0, len(tiles))
	defer func() {
		for _, m := range bgr {
			m.Close()
		}
	}()

	for i, tile := range tiles {
		if err := safe.ValidateMatForOperation(tile, "mosaic"); err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
		if tile.Rows() != tiles[0].Rows() || tile.Cols() != tiles[0].Cols() {
			return nil, fmt.Errorf("tile %d is %dx%d, want %dx%d", i, tile.Cols(), tile.Rows(), tiles[0].Cols(), tiles[0].Rows())
		}

		converted, err := conversion.ConvertToBGR(tile, nil, "mosaic_tile")
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
		bgr = append(bgr, converted)
	}

	top := gocv.NewMat()
	defer top.Close()
	bottom := gocv.NewMat()
	defer bottom.Close()

	if err := gocv.Hconcat(bgr[0].GetMat(), bgr[1].GetMat(), &top); err != nil {
		return nil, fmt.Errorf("mosaic top row: %w", err)
	}
	if err := gocv.Hconcat(bgr[2].GetMat(), bgr[3].GetMat(), &bottom); err != nil {
		return nil, fmt.Errorf("mosaic bottom row: %w", err)
	}

	combined := gocv.NewMat()
	if err := gocv.Vconcat(top, bottom, &combined); err != nil {
		combined.Close()
		return nil, fmt.Errorf("mosaic: %w", err)
	}

	return safe.Adopt(combined, tracker, "mosaic")
}
