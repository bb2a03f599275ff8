// Package detection extracts contours from a processed image and runs them
// through the geometric gates configured by a strategy.
package detection

import (
	"image"
	"sort"

	"ellipse-detector/internal/geometry"
)

// Circle is a circle in working-image pixels.
type Circle struct {
	Center image.Point `json:"center"`
	Radius int         `json:"radius"`
}

// EllipseSearch configures the primary ellipse search.
type EllipseSearch struct {
	Gate   geometry.EllipseGate
	Policy geometry.Policy
}

// QuadSearch configures the quadrilateral search.
type QuadSearch struct {
	Gate   geometry.QuadGate
	Policy geometry.Policy
}

// HoughSearch configures the Hough circle transform.
type HoughSearch struct {
	DP        float64
	MinDist   float64
	Param1    float64
	Param2    float64
	MinRadius int
	MaxRadius int
	// FallbackOnly runs the transform only when no other circle was found.
	FallbackOnly bool
}

// Config is the full detection setup for one pass. Nil searches are skipped.
type Config struct {
	External bool
	// TopN keeps only the largest contours by area; zero keeps all.
	TopN      int
	Ellipse   *EllipseSearch
	Quad      *QuadSearch
	Enclosing *geometry.EnclosingCircleGate
	Round     *geometry.CircleByEllipseGate
	Hough     *HoughSearch
}

// Result is everything a detection pass found. It holds no native memory.
type Result struct {
	Contours     int                    `json:"contours"`
	Measurements []geometry.Measurement `json:"measurements"`
	Ellipse      *geometry.Measurement  `json:"ellipse,omitempty"`
	Quad         []image.Point          `json:"quad,omitempty"`
	// CircleContour is the contour accepted by the enclosing-circle gate.
	CircleContour []image.Point     `json:"circle_contour,omitempty"`
	Enclosing     *Circle           `json:"enclosing,omitempty"`
	Round         *geometry.Ellipse `json:"round,omitempty"`
	Hough         []Circle          `json:"hough,omitempty"`
}

// Found reports whether any shape was accepted.
func (r Result) Found() bool {
	return r.Ellipse != nil || r.Quad != nil || r.Enclosing != nil || r.Round != nil || len(r.Hough) > 0
}

// Accepted returns the number of accepted shapes.
func (r Result) Accepted() int {
	n := len(r.Hough)
	if r.Ellipse != nil {
		n++
	}
	if r.Quad != nil {
		n++
	}
	if r.Enclosing != nil {
		n++
	}
	if r.Round != nil {
		n++
	}
	return n
}

// contour is a measured contour held in Go memory.
type contour struct {
	geometry.Contour
}

// largestFirst orders contours by area, keeping extraction order on ties.
func largestFirst(contours []contour, topN int) []contour {
	sorted := make([]contour, len(contours))
	copy(sorted, contours)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area > sorted[j].Area
	})
	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}
