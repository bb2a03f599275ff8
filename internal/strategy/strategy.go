// Package strategy defines the named preprocessing and detection recipes.
// Each strategy owns its parameter definitions, its processing chain from the
// grayscale image onward and the detection gates it applies.
package strategy

import (
	"fmt"

	"ellipse-detector/internal/detection"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/processing/chain"
)

// Default is used when no strategy is configured.
const Default = "otsu-ellipse"

type Strategy struct {
	Name        string
	Description string
	Parameters  []models.ParameterDefinition
	// Scale resizes the input by a factor instead of to the working size.
	Scale float64
	// Files lists persisted stages in write order.
	Files []models.StageFile
	// Mosaic names the four stages shown in the 2×2 grid, row by row.
	Mosaic [4]string
	// HoughStage is the stage fed to the Hough transform, if any.
	HoughStage string
	// LineWidth is the overlay thickness for quadrilaterals and circles.
	LineWidth int

	steps  func() []chain.ProcessingStep
	detect func(models.Parameters) detection.Config
}

// Chain builds a fresh processing chain starting at the grayscale image.
func (s Strategy) Chain() *chain.ProcessingChain {
	return chain.NewProcessingChain(s.steps())
}

// Detection returns the detection setup for one parameter snapshot.
func (s Strategy) Detection(params models.Parameters) detection.Config {
	return s.detect(params)
}

// NewParameterSet returns a parameter set at the strategy defaults.
func (s Strategy) NewParameterSet() *models.ParameterSet {
	return models.NewParameterSet(s.Name, s.Parameters)
}

// RequiredStages lists every stage that must exist before saving.
func (s Strategy) RequiredStages() []string {
	stages := make([]string, len(s.Files))
	for i, f := range s.Files {
		stages[i] = f.Stage
	}
	return stages
}

var registry = []Strategy{
	otsuEllipse(),
	cannyEllipse(),
	adaptiveEllipse(),
	cannyShapes(),
	adaptiveShapes(),
}

// Lookup returns the strategy registered under name.
func Lookup(name string) (Strategy, error) {
	for _, s := range registry {
		if s.Name == name {
			return s, nil
		}
	}
	return Strategy{}, models.NewValidationError("strategy", name, fmt.Sprintf("unknown strategy, expected one of %v", Names()))
}

// Names lists registered strategies in registration order.
func Names() []string {
	names := make([]string, len(registry))
	for i, s := range registry {
		names[i] = s.Name
	}
	return names
}

// All returns every registered strategy.
func All() []Strategy {
	out := make([]Strategy, len(registry))
	copy(out, registry)
	return out
}
