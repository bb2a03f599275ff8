package strategy

import "ellipse-detector/internal/models"

func odd(name, label string, def, max int) models.ParameterDefinition {
	return models.ParameterDefinition{Name: name, Label: label, Kind: models.KindOdd, Default: def, Range: models.ParameterRange{Max: max}}
}

func count(name, label string, def, max int) models.ParameterDefinition {
	return models.ParameterDefinition{Name: name, Label: label, Kind: models.KindInt, Default: def, Range: models.ParameterRange{Max: max}}
}

func percent(name, label string, def int) models.ParameterDefinition {
	return models.ParameterDefinition{Name: name, Label: label, Kind: models.KindPercent, Default: def, Range: models.ParameterRange{Max: 100}}
}

func floored(def models.ParameterDefinition, floor int) models.ParameterDefinition {
	def.Floor = floor
	return def
}

const (
	paramPreBlur        = "pre_blur"
	paramMorphSize      = "morph_size"
	paramMinArea        = "min_area"
	paramAspectRatio    = "aspect_ratio"
	paramAngleTolerance = "angle_tolerance"
	paramDilateIter     = "dilate_iter"
	paramCannyLow       = "canny_low"
	paramCannyHigh      = "canny_high"
	paramBlockSize      = "block_size"
	paramC              = "c"
	paramMinRadius      = "min_radius"
	paramMinQuadArea    = "min_quad_area"
	paramMinCircleArea  = "min_circle_area"
)
