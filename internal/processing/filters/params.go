package filters

import "ellipse-detector/internal/models"

// intParam reads name from params, falling back to a fixed value when the
// strategy does not expose the parameter.
func intParam(params models.Parameters, name string, fallback int) int {
	if name != "" && params.Has(name) {
		return params.Int(name)
	}
	return fallback
}
