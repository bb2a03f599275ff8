package geometry

import (
	"errors"
	"image"
	"math"
	"testing"
)

func circlePoints(cx, cy, r, n int) []image.Point {
	pts := make([]image.Point, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = image.Pt(cx+int(math.Round(float64(r)*math.Cos(theta))), cy+int(math.Round(float64(r)*math.Sin(theta))))
	}
	return pts
}

// notchedCircle pushes every fourth vertex towards the centre so the contour
// is round but not convex.
func notchedCircle(cx, cy, r, n int) []image.Point {
	pts := circlePoints(cx, cy, r, n)
	for i := 0; i < n; i += 4 {
		pts[i] = image.Pt(cx+(pts[i].X-cx)*9/10, cy+(pts[i].Y-cy)*9/10)
	}
	return pts
}

func TestIsConvex(t *testing.T) {
	tests := []struct {
		name   string
		points []image.Point
		want   bool
	}{
		{"square", []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, true},
		{"square reversed", []image.Point{{0, 10}, {10, 10}, {10, 0}, {0, 0}}, true},
		{"collinear edge", []image.Point{{0, 0}, {5, 0}, {10, 0}, {10, 10}, {0, 10}}, false},
		{"repeated vertex", []image.Point{{0, 0}, {10, 0}, {10, 0}, {10, 10}, {0, 10}}, false},
		{"doubled back", []image.Point{{0, 0}, {10, 0}, {5, 0}, {5, 10}}, false},
		{"triangle", []image.Point{{0, 0}, {10, 0}, {0, 10}}, true},
		{"arrow", []image.Point{{0, 0}, {10, 5}, {0, 10}, {4, 5}}, false},
		{"empty", nil, false},
		{"one point", []image.Point{{3, 4}}, false},
		{"two points", []image.Point{{0, 0}, {1, 1}}, false},
		{"line", []image.Point{{0, 0}, {1, 0}, {2, 0}}, false},
		{"circle", circlePoints(50, 50, 40, 16), true},
		{"dense circle", circlePoints(50, 50, 40, 64), false},
		{"notched circle", notchedCircle(50, 50, 40, 64), false},
		{"pentagram", []image.Point{{0, 10}, {6, -8}, {-10, 3}, {10, 3}, {-6, -8}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConvex(tt.points); got != tt.want {
				t.Errorf("IsConvex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompactness(t *testing.T) {
	r := 40.0
	c, ok := Compactness(math.Pi*r*r, 2*math.Pi*r)
	if !ok {
		t.Fatal("expected compactness for a positive perimeter")
	}
	if math.Abs(c-1) > 1e-9 {
		t.Errorf("circle compactness = %v, want 1", c)
	}

	if _, ok := Compactness(100, 0); ok {
		t.Error("zero perimeter must not produce a compactness")
	}
}

func TestEllipseMetrics(t *testing.T) {
	e := Ellipse{Width: 40, Height: 80, Angle: 10}
	if got := e.AspectRatio(); got != 0.5 {
		t.Errorf("AspectRatio() = %v, want 0.5", got)
	}
	if got := e.Area(); math.Abs(got-math.Pi*800) > 1e-9 {
		t.Errorf("Area() = %v", got)
	}
	if got := (Ellipse{}).AspectRatio(); got != 0 {
		t.Errorf("degenerate AspectRatio() = %v, want 0", got)
	}
}

func copilotGate(aspect float64) EllipseGate {
	return EllipseGate{
		MinArea:        250,
		MinCompactness: 0.7,
		MinAspect:      aspect,
		AngleTolerance: 45,
		SkipConvex:     true,
	}
}

func TestEllipseGateCircleAcceptedForAnyAspect(t *testing.T) {
	pts := notchedCircle(100, 100, 40, 64)
	c := Contour{Points: pts, Area: math.Pi * 40 * 40 * 0.97, Perimeter: 2 * math.Pi * 40}
	fit := func() (Ellipse, error) {
		return Ellipse{Center: image.Pt(100, 100), Width: 80, Height: 80, Angle: 0}, nil
	}

	for _, aspect := range []float64{0, 0.25, 0.5, 0.7, 0.99, 1.0} {
		m := copilotGate(aspect).Evaluate(c, fit)
		if !m.Accepted() {
			t.Errorf("aspect threshold %v: verdict %s (%s)", aspect, m.Verdict, m.Reason)
		}
	}
}

func TestEllipseGateSkipsWithoutFitting(t *testing.T) {
	tests := []struct {
		name    string
		gate    EllipseGate
		contour Contour
		reason  string
	}{
		{
			name:    "small area",
			gate:    copilotGate(0.7),
			contour: Contour{Points: notchedCircle(0, 0, 5, 16), Area: 10, Perimeter: 30},
			reason:  ReasonSmallArea,
		},
		{
			name:    "four points",
			gate:    copilotGate(0.7),
			contour: Contour{Points: []image.Point{{0, 0}, {40, 0}, {20, 5}, {0, 40}}, Area: 400, Perimeter: 120},
			reason:  ReasonTooFewPoints,
		},
		{
			name:    "convex",
			gate:    copilotGate(0.7),
			contour: Contour{Points: circlePoints(50, 50, 40, 16), Area: 5000, Perimeter: 251},
			reason:  ReasonConvex,
		},
		{
			name:    "zero perimeter",
			gate:    copilotGate(0.7),
			contour: Contour{Points: notchedCircle(50, 50, 40, 64), Area: 5000, Perimeter: 0},
			reason:  ReasonZeroPerimeter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			fit := func() (Ellipse, error) {
				calls++
				return Ellipse{Width: 10, Height: 10}, nil
			}
			m := tt.gate.Evaluate(tt.contour, fit)
			if m.Verdict != VerdictSkipped {
				t.Errorf("verdict = %s, want skipped", m.Verdict)
			}
			if m.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", m.Reason, tt.reason)
			}
			if calls != 0 {
				t.Errorf("fit called %d times", calls)
			}
		})
	}
}

func TestEllipseGateRejections(t *testing.T) {
	pts := notchedCircle(100, 100, 40, 64)
	adaptive := EllipseGate{MinArea: 500, MinCompactness: 0.5, MinAspect: 0.75, AngleTolerance: 45, MinAreaRatio: 0.6}

	tests := []struct {
		name      string
		gate      EllipseGate
		perimeter float64
		fitted    Ellipse
		err       error
		reason    string
	}{
		{"flat ellipse", copilotGate(0.7), 260, Ellipse{Width: 20, Height: 80}, nil, ReasonAspect},
		{"rotated", copilotGate(0.7), 260, Ellipse{Width: 78, Height: 80, Angle: 120}, nil, ReasonAngle},
		{"fit error", copilotGate(0.7), 260, Ellipse{}, errors.New("boom"), ReasonFitFailed},
		{"area ratio", adaptive, 260, Ellipse{Width: 120, Height: 120}, nil, ReasonAreaRatio},
		{"not compact", copilotGate(0.7), 600, Ellipse{Width: 80, Height: 80}, nil, ReasonNotCompact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Contour{Points: pts, Area: 4800, Perimeter: tt.perimeter}
			m := tt.gate.Evaluate(c, func() (Ellipse, error) { return tt.fitted, tt.err })
			if m.Verdict != VerdictRejected || m.Reason != tt.reason {
				t.Errorf("got %s (%q), want rejected (%q)", m.Verdict, m.Reason, tt.reason)
			}
		})
	}
}

func TestSelectorPolicies(t *testing.T) {
	candidates := []Measurement{
		{Index: 0, Area: 900, Verdict: VerdictRejected},
		{Index: 1, Area: 500, Verdict: VerdictAccepted},
		{Index: 2, Area: 2000, Verdict: VerdictAccepted},
		{Index: 3, Area: 5000, Verdict: VerdictSkipped},
	}

	first := NewSelector(FirstMatch)
	stoppedAt := -1
	for i, m := range candidates {
		if first.Offer(m) {
			stoppedAt = i
			break
		}
	}
	if stoppedAt != 1 {
		t.Errorf("first policy stopped at %d, want 1", stoppedAt)
	}
	if best, ok := first.Best(); !ok || best.Index != 1 {
		t.Errorf("first policy best = %+v", best)
	}

	largest := NewSelector(LargestArea)
	for _, m := range candidates {
		if largest.Offer(m) {
			t.Fatal("largest policy must scan every contour")
		}
	}
	if best, ok := largest.Best(); !ok || best.Index != 2 {
		t.Errorf("largest policy best = %+v", best)
	}

	if _, ok := NewSelector(LargestArea).Best(); ok {
		t.Error("empty selector reported a winner")
	}
}

func TestCircleGates(t *testing.T) {
	enclosing := EnclosingCircleGate{MinRadius: 20, MinFillRatio: 0.7, MaxAreaDelta: 1000}
	if !enclosing.Accept(math.Pi*30*30-200, 30.6) {
		t.Error("filled circle should pass")
	}
	if enclosing.Accept(math.Pi*15*15, 15) {
		t.Error("radius below minimum should fail")
	}
	if enclosing.Accept(math.Pi*60*60*0.75, 60) {
		t.Error("area delta above maximum should fail")
	}

	byEllipse := CircleByEllipseGate{MinArea: 300, MinRatio: 0.9, MaxRatio: 1.1, MaxAngle: 20}
	if !byEllipse.Accept(1200, Ellipse{Width: 40, Height: 38, Angle: 5}) {
		t.Error("round ellipse should pass")
	}
	if byEllipse.Accept(1200, Ellipse{Width: 40, Height: 30, Angle: 5}) {
		t.Error("oval should fail")
	}
	if byEllipse.Accept(1200, Ellipse{Width: 40, Height: 39, Angle: 90}) {
		t.Error("angle above maximum should fail")
	}
	if byEllipse.Accept(100, Ellipse{Width: 40, Height: 39}) {
		t.Error("small area should fail")
	}
}

func TestQuadGate(t *testing.T) {
	square := []image.Point{{0, 0}, {50, 0}, {50, 50}, {0, 50}}
	bowtie := []image.Point{{0, 0}, {50, 50}, {50, 0}, {0, 50}}

	g := QuadGate{Epsilon: 0.03, MinArea: 1000, RequireConvex: true}
	if ok, _ := g.Accept(2500, square); !ok {
		t.Error("square should pass")
	}
	if ok, reason := g.Accept(2500, bowtie); ok || reason != ReasonNotConvexQuad {
		t.Errorf("bowtie: ok=%v reason=%q", ok, reason)
	}
	if ok, reason := g.Accept(2500, square[:3]); ok || reason != ReasonNotQuad {
		t.Errorf("triangle: ok=%v reason=%q", ok, reason)
	}
	if ok, reason := g.Accept(500, square); ok || reason != ReasonSmallArea {
		t.Errorf("small: ok=%v reason=%q", ok, reason)
	}
}
