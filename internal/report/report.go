// Package report summarises one detection pass as JSON and an optional
// candidate scatter plot.
package report

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"ellipse-detector/internal/geometry"

	jsoniter "github.com/json-iterator/go"
	"gonum.org/v1/gonum/stat"
)

const (
	FileName = "report.json"
	PlotName = "candidates.png"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Shape is one accepted detection in image coordinates.
type Shape struct {
	Kind   string      `json:"kind"`
	Center image.Point `json:"center"`
	Width  float64     `json:"width,omitempty"`
	Height float64     `json:"height,omitempty"`
	Angle  float64     `json:"angle,omitempty"`
	Radius float64     `json:"radius,omitempty"`
	// Points is set for polygonal shapes.
	Points []image.Point `json:"points,omitempty"`
}

// Input is what the caller knows about a finished pass. It carries no
// clock or run-specific values, so equal passes produce equal reports.
type Input struct {
	Source       string
	Strategy     string
	Parameters   map[string]float64
	Width        int
	Height       int
	Contours     int
	Measurements []geometry.Measurement
	Shapes       []Shape
}

type Metric struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

type Summary struct {
	Candidates  int     `json:"candidates"`
	Accepted    int     `json:"accepted"`
	Rejected    int     `json:"rejected"`
	Skipped     int     `json:"skipped"`
	Compactness *Metric `json:"compactness,omitempty"`
	Aspect      *Metric `json:"aspect,omitempty"`
}

type Report struct {
	Source     string                 `json:"source"`
	Strategy   string                 `json:"strategy"`
	Parameters map[string]float64     `json:"parameters"`
	Image      ImageSize              `json:"image"`
	Contours   int                    `json:"contours"`
	Candidates []geometry.Measurement `json:"candidates"`
	Shapes     []Shape                `json:"shapes"`
	Summary    Summary                `json:"summary"`
}

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Build assembles a report from in.
func Build(in Input) Report {
	candidates := in.Measurements
	if candidates == nil {
		candidates = []geometry.Measurement{}
	}
	shapes := in.Shapes
	if shapes == nil {
		shapes = []Shape{}
	}

	return Report{
		Source:     in.Source,
		Strategy:   in.Strategy,
		Parameters: in.Parameters,
		Image:      ImageSize{Width: in.Width, Height: in.Height},
		Contours:   in.Contours,
		Candidates: candidates,
		Shapes:     shapes,
		Summary:    summarize(candidates),
	}
}

func summarize(ms []geometry.Measurement) Summary {
	s := Summary{Candidates: len(ms)}

	var compactness, aspect []float64
	for _, m := range ms {
		switch m.Verdict {
		case geometry.VerdictAccepted:
			s.Accepted++
		case geometry.VerdictRejected:
			s.Rejected++
		case geometry.VerdictSkipped:
			s.Skipped++
		}
		if m.Compactness > 0 {
			compactness = append(compactness, m.Compactness)
		}
		if m.Ellipse != nil {
			aspect = append(aspect, m.Aspect)
		}
	}

	s.Compactness = metric(compactness)
	s.Aspect = metric(aspect)
	return s
}

func metric(values []float64) *Metric {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return &Metric{Mean: values[0]}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return &Metric{Mean: mean, StdDev: std}
}

// Write stores r as indented JSON in dir and returns the file path.
func Write(dir string, r Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}
