package geometry

import (
	"image"
	"math"
)

// MinFitPoints is the smallest contour the ellipse fit accepts.
const MinFitPoints = 5

// Verdict is the outcome of running a contour through the gates.
type Verdict string

const (
	VerdictAccepted Verdict = "accepted"
	VerdictRejected Verdict = "rejected"
	VerdictSkipped  Verdict = "skipped"
)

// Rejection reasons recorded on measurements.
const (
	ReasonSmallArea      = "area below minimum"
	ReasonTooFewPoints   = "fewer than 5 points"
	ReasonConvex         = "convex contour"
	ReasonZeroPerimeter  = "zero perimeter"
	ReasonNotCompact     = "compactness below minimum"
	ReasonFitFailed      = "ellipse fit failed"
	ReasonAspect         = "aspect ratio below minimum"
	ReasonAngle          = "angle outside tolerance"
	ReasonAreaRatio      = "area ratio below minimum"
	ReasonNotCircular    = "not circular"
	ReasonNotQuad        = "not a quadrilateral"
	ReasonNotConvexQuad  = "quadrilateral not convex"
	ReasonCircleTooSmall = "enclosing circle too small"
)

// Contour is what the gates need to know about one extracted contour.
type Contour struct {
	Index     int
	Points    []image.Point
	Area      float64
	Perimeter float64
}

// Measurement records every value computed for a contour and why it was
// accepted or dropped.
type Measurement struct {
	Index       int      `json:"index"`
	Points      int      `json:"points"`
	Area        float64  `json:"area"`
	Perimeter   float64  `json:"perimeter"`
	Compactness float64  `json:"compactness"`
	Convex      bool     `json:"convex"`
	Ellipse     *Ellipse `json:"ellipse,omitempty"`
	Aspect      float64  `json:"aspect"`
	AreaRatio   float64  `json:"area_ratio"`
	Verdict     Verdict  `json:"verdict"`
	Reason      string   `json:"reason,omitempty"`
}

// Accepted reports whether the contour passed every gate.
func (m Measurement) Accepted() bool {
	return m.Verdict == VerdictAccepted
}

// EllipseGate is the threshold set of the ellipse-fitting strategies.
type EllipseGate struct {
	MinArea        float64
	MinCompactness float64
	MinAspect      float64
	AngleTolerance float64
	SkipConvex     bool
	// MinAreaRatio compares contour area to fitted ellipse area; zero disables.
	MinAreaRatio float64
}

// FitFunc fits an ellipse to the contour being evaluated.
type FitFunc func() (Ellipse, error)

// Evaluate runs one contour through the gates in order. fit is only called
// once the contour is known to have enough points, a positive perimeter and a
// passing compactness.
func (g EllipseGate) Evaluate(c Contour, fit FitFunc) Measurement {
	m := Measurement{
		Index:     c.Index,
		Points:    len(c.Points),
		Area:      c.Area,
		Perimeter: c.Perimeter,
	}

	if c.Area < g.MinArea {
		return m.skip(ReasonSmallArea)
	}
	if len(c.Points) < MinFitPoints {
		return m.skip(ReasonTooFewPoints)
	}

	m.Convex = IsConvex(c.Points)
	if g.SkipConvex && m.Convex {
		return m.skip(ReasonConvex)
	}

	compactness, ok := Compactness(c.Area, c.Perimeter)
	if !ok {
		return m.skip(ReasonZeroPerimeter)
	}
	m.Compactness = compactness
	if compactness < g.MinCompactness {
		return m.reject(ReasonNotCompact)
	}

	e, err := fit()
	if err != nil {
		return m.reject(ReasonFitFailed)
	}
	m.Ellipse = &e
	m.Aspect = e.AspectRatio()
	if ea := e.Area(); ea > 0 {
		m.AreaRatio = c.Area / ea
	}

	if m.Aspect < g.MinAspect {
		return m.reject(ReasonAspect)
	}
	if g.MinAreaRatio > 0 && m.AreaRatio <= g.MinAreaRatio {
		return m.reject(ReasonAreaRatio)
	}
	if math.Abs(e.Angle) >= g.AngleTolerance {
		return m.reject(ReasonAngle)
	}

	m.Verdict = VerdictAccepted
	return m
}

func (m Measurement) skip(reason string) Measurement {
	m.Verdict = VerdictSkipped
	m.Reason = reason
	return m
}

func (m Measurement) reject(reason string) Measurement {
	m.Verdict = VerdictRejected
	m.Reason = reason
	return m
}

// CircleByEllipseGate accepts near-circular fitted ellipses.
type CircleByEllipseGate struct {
	MinArea  float64
	MinRatio float64
	MaxRatio float64
	MaxAngle float64
}

// Accept reports whether the fitted ellipse counts as a circle.
func (g CircleByEllipseGate) Accept(area float64, e Ellipse) bool {
	if area < g.MinArea {
		return false
	}
	major := e.Major()
	if major <= 0 {
		return false
	}
	ratio := e.Minor() / major
	return ratio > g.MinRatio && ratio < g.MaxRatio && e.Angle < g.MaxAngle
}

// EnclosingCircleGate compares a contour with its minimum enclosing circle.
type EnclosingCircleGate struct {
	MinRadius    float64
	MinFillRatio float64
	// MaxAreaDelta bounds |area - circle area|; zero disables.
	MaxAreaDelta float64
}

// Accept reports whether the contour fills its enclosing circle. The radius is
// truncated to whole pixels before the circle area is computed.
func (g EnclosingCircleGate) Accept(area, radius float64) bool {
	r := math.Trunc(radius)
	if r <= g.MinRadius {
		return false
	}
	circleArea := math.Pi * r * r
	if area/circleArea <= g.MinFillRatio {
		return false
	}
	if g.MaxAreaDelta > 0 && math.Abs(area-circleArea) >= g.MaxAreaDelta {
		return false
	}
	return true
}

// QuadGate accepts four-vertex polygon approximations.
type QuadGate struct {
	// Epsilon is the approximation tolerance as a fraction of the perimeter.
	Epsilon       float64
	MinArea       float64
	RequireConvex bool
}

// Accept checks the approximated polygon of a contour with the given area.
func (g QuadGate) Accept(area float64, approx []image.Point) (bool, string) {
	if area < g.MinArea {
		return false, ReasonSmallArea
	}
	if len(approx) != 4 {
		return false, ReasonNotQuad
	}
	if g.RequireConvex && !IsConvex(approx) {
		return false, ReasonNotConvexQuad
	}
	return true, ""
}
