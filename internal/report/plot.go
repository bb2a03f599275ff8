package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"ellipse-detector/internal/geometry"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var verdictColors = map[geometry.Verdict]color.RGBA{
	geometry.VerdictAccepted: {G: 160, A: 255},
	geometry.VerdictRejected: {R: 200, A: 255},
}

// Plot draws aspect ratio against compactness for every candidate that
// reached the ellipse fit and saves it as a PNG in dir.
func Plot(dir, title string, ms []geometry.Measurement) (string, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "aspect (minor/major)"
	p.Y.Label.Text = "compactness"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1.1

	for _, verdict := range []geometry.Verdict{geometry.VerdictAccepted, geometry.VerdictRejected} {
		xys := candidatePoints(ms, verdict)
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return "", fmt.Errorf("could not draw %s candidates: %w", verdict, err)
		}
		sc.GlyphStyle.Color = verdictColors[verdict]
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(string(verdict), sc)
	}
	p.Add(plotter.NewGrid())

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create plot directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, PlotName)
	if err := p.Save(15*vg.Centimeter, 15*vg.Centimeter, path); err != nil {
		return "", fmt.Errorf("could not save plot: %w", err)
	}
	return path, nil
}

func candidatePoints(ms []geometry.Measurement, verdict geometry.Verdict) plotter.XYs {
	var xys plotter.XYs
	for _, m := range ms {
		if m.Verdict != verdict || m.Ellipse == nil {
			continue
		}
		xys = append(xys, plotter.XY{X: m.Aspect, Y: m.Compactness})
	}
	return xys
}
