package pipeline

import (
	"ellipse-detector/internal/report"
)

// ReportInput describes the result for the report writer.
func (r *StageResult) ReportInput(source string) report.Input {
	det := r.detection
	in := report.Input{
		Source:       source,
		Strategy:     r.strategy,
		Parameters:   r.params.Values(),
		Width:        r.Width(),
		Height:       r.Height(),
		Contours:     det.Contours,
		Measurements: det.Measurements,
	}

	if det.Ellipse != nil && det.Ellipse.Ellipse != nil {
		e := det.Ellipse.Ellipse
		in.Shapes = append(in.Shapes, report.Shape{Kind: "ellipse", Center: e.Center, Width: e.Width, Height: e.Height, Angle: e.Angle})
	}
	if det.Quad != nil {
		in.Shapes = append(in.Shapes, report.Shape{Kind: "quad", Points: det.Quad})
	}
	if det.Enclosing != nil {
		in.Shapes = append(in.Shapes, report.Shape{Kind: "circle", Center: det.Enclosing.Center, Radius: float64(det.Enclosing.Radius)})
	}
	if det.Round != nil {
		e := det.Round
		in.Shapes = append(in.Shapes, report.Shape{Kind: "round", Center: e.Center, Width: e.Width, Height: e.Height, Angle: e.Angle})
	}
	for _, c := range det.Hough {
		in.Shapes = append(in.Shapes, report.Shape{Kind: "hough", Center: c.Center, Radius: float64(c.Radius)})
	}
	return in
}
