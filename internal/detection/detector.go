package detection

import (
	"context"
	"fmt"
	"image"
	"math"

	"ellipse-detector/internal/geometry"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Detect finds contours in binary and evaluates them. houghSource feeds the
// Hough transform and may be nil when cfg has no Hough search.
func Detect(ctx context.Context, binary, houghSource *safe.Mat, cfg Config) (Result, error) {
	if err := safe.ValidateSingleChannel(binary, "contour extraction"); err != nil {
		return Result{}, err
	}

	mode := gocv.RetrievalList
	if cfg.External {
		mode = gocv.RetrievalExternal
	}

	vectors := gocv.FindContours(binary.GetMat(), mode, gocv.ChainApproxSimple)
	defer vectors.Close()

	contours := make([]contour, vectors.Size())
	for i := range contours {
		pv := vectors.At(i)
		contours[i] = contour{geometry.Contour{
			Index:     i,
			Points:    pv.ToPoints(),
			Area:      gocv.ContourArea(pv),
			Perimeter: gocv.ArcLength(pv, true),
		}}
	}

	result := Result{Contours: len(contours)}
	candidates := contours
	if cfg.TopN > 0 {
		candidates = largestFirst(contours, cfg.TopN)
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	if cfg.Ellipse != nil {
		findEllipse(candidates, *cfg.Ellipse, &result)
	}
	if cfg.Quad != nil {
		findQuad(candidates, *cfg.Quad, &result)
	}
	if cfg.Enclosing != nil {
		findEnclosingCircle(candidates, *cfg.Enclosing, &result)
	}
	if cfg.Round != nil {
		findRoundEllipse(candidates, *cfg.Round, &result)
	}

	if cfg.Hough != nil {
		circleFound := result.Enclosing != nil || result.Round != nil
		if !cfg.Hough.FallbackOnly || !circleFound {
			circles, err := houghCircles(houghSource, *cfg.Hough)
			if err != nil {
				return Result{}, err
			}
			result.Hough = circles
		}
	}

	return result, nil
}

func fitEllipse(points []image.Point) (geometry.Ellipse, error) {
	if len(points) < geometry.MinFitPoints {
		return geometry.Ellipse{}, fmt.Errorf("ellipse fit needs %d points, got %d", geometry.MinFitPoints, len(points))
	}

	pv := gocv.NewPointVectorFromPoints(points)
	defer pv.Close()

	rr := gocv.FitEllipse(pv)
	if rr.Width <= 0 || rr.Height <= 0 {
		return geometry.Ellipse{}, fmt.Errorf("degenerate ellipse %dx%d", rr.Width, rr.Height)
	}

	return geometry.Ellipse{
		Center: rr.Center,
		Width:  float64(rr.Width),
		Height: float64(rr.Height),
		Angle:  rr.Angle,
	}, nil
}

func findEllipse(contours []contour, search EllipseSearch, result *Result) {
	selector := geometry.NewSelector(search.Policy)
	for _, c := range contours {
		points := c.Points
		m := search.Gate.Evaluate(c.Contour, func() (geometry.Ellipse, error) {
			return fitEllipse(points)
		})
		result.Measurements = append(result.Measurements, m)
		if selector.Offer(m) {
			break
		}
	}

	if best, ok := selector.Best(); ok {
		result.Ellipse = &best
	}
}

func findQuad(contours []contour, search QuadSearch, result *Result) {
	bestArea := -1.0
	for _, c := range contours {
		pv := gocv.NewPointVectorFromPoints(c.Points)
		approx := gocv.ApproxPolyDP(pv, search.Gate.Epsilon*c.Perimeter, true)
		points := approx.ToPoints()
		approxArea := gocv.ContourArea(approx)
		approx.Close()
		pv.Close()

		if ok, _ := search.Gate.Accept(c.Area, points); !ok {
			continue
		}

		if search.Policy == geometry.FirstMatch {
			result.Quad = points
			return
		}
		if approxArea > bestArea {
			bestArea = approxArea
			result.Quad = points
		}
	}
}

func findEnclosingCircle(contours []contour, gate geometry.EnclosingCircleGate, result *Result) {
	for _, c := range contours {
		pv := gocv.NewPointVectorFromPoints(c.Points)
		x, y, radius := gocv.MinEnclosingCircle(pv)
		pv.Close()

		if !gate.Accept(c.Area, float64(radius)) {
			continue
		}

		result.CircleContour = c.Points
		result.Enclosing = &Circle{
			Center: image.Pt(int(x), int(y)),
			Radius: int(radius),
		}
		return
	}
}

func findRoundEllipse(contours []contour, gate geometry.CircleByEllipseGate, result *Result) {
	best := -1.0
	for _, c := range contours {
		if len(c.Points) < geometry.MinFitPoints || c.Area < gate.MinArea {
			continue
		}
		e, err := fitEllipse(c.Points)
		if err != nil || !gate.Accept(c.Area, e) {
			continue
		}
		if product := e.AxesProduct(); product > best {
			best = product
			found := e
			result.Round = &found
		}
	}
}

func houghCircles(src *safe.Mat, search HoughSearch) ([]Circle, error) {
	if err := safe.ValidateSingleChannel(src, "hough circles"); err != nil {
		return nil, err
	}

	circles := gocv.NewMat()
	defer circles.Close()

	if err := gocv.HoughCirclesWithParams(src.GetMat(), &circles, gocv.HoughGradient,
		search.DP, search.MinDist, search.Param1, search.Param2, search.MinRadius, search.MaxRadius); err != nil {
		return nil, fmt.Errorf("hough circles: %w", err)
	}

	if circles.Empty() {
		return nil, nil
	}

	found := make([]Circle, 0, circles.Cols())
	for i := 0; i < circles.Cols(); i++ {
		v := circles.GetVecfAt(0, i)
		if len(v) < 3 {
			continue
		}
		found = append(found, Circle{
			Center: image.Pt(int(math.RoundToEven(float64(v[0]))), int(math.RoundToEven(float64(v[1])))),
			Radius: int(math.RoundToEven(float64(v[2]))),
		})
	}
	return found, nil
}
