// Package geometry holds the contour gates and candidate selection applied to
// measurements returned by the vision library. Nothing here touches pixels.
package geometry

import (
	"image"
	"math"
)

// Ellipse is a fitted ellipse: full axis lengths and rotation in degrees.
type Ellipse struct {
	Center image.Point
	Width  float64
	Height float64
	Angle  float64
}

// Major returns the longer axis length.
func (e Ellipse) Major() float64 {
	return math.Max(e.Width, e.Height)
}

// Minor returns the shorter axis length.
func (e Ellipse) Minor() float64 {
	return math.Min(e.Width, e.Height)
}

// AspectRatio returns minor/major in [0,1]; a degenerate ellipse yields 0.
func (e Ellipse) AspectRatio() float64 {
	major := e.Major()
	if major <= 0 {
		return 0
	}
	return e.Minor() / major
}

// Area returns π·w·h/4.
func (e Ellipse) Area() float64 {
	return math.Pi * e.Width * e.Height / 4
}

// AxesProduct is the ranking key used when several circles qualify.
func (e Ellipse) AxesProduct() float64 {
	return e.Width * e.Height
}

// Compactness returns 4π·area/perimeter². The second result is false when the
// perimeter is not positive, in which case no division is performed.
func Compactness(area, perimeter float64) (float64, bool) {
	if perimeter <= 0 {
		return 0, false
	}
	return 4 * math.Pi * area / (perimeter * perimeter), true
}

// IsConvex reports whether every turn of the closed polygon has the same
// strictly non-zero orientation, as OpenCV's isContourConvex does. Collinear
// vertices, repeated points and fewer than three points are not convex. Only
// turn direction is checked, so a pentagram counts as convex.
func IsConvex(points []image.Point) bool {
	n := len(points)
	if n == 0 {
		return false
	}

	prev := points[(2*n-2)%n]
	cur := points[n-1]
	dx0, dy0 := cur.X-prev.X, cur.Y-prev.Y

	orientation := 0
	for i := 0; i < n; i++ {
		prev, cur = cur, points[i]
		dx, dy := cur.X-prev.X, cur.Y-prev.Y

		dxdy0, dydx0 := dx*dy0, dy*dx0
		switch {
		case dydx0 > dxdy0:
			orientation |= 1
		case dydx0 < dxdy0:
			orientation |= 2
		default:
			orientation |= 3
		}
		if orientation == 3 {
			return false
		}
		dx0, dy0 = dx, dy
	}
	return true
}
