// Package pipeline loads the working image, runs a strategy over it and
// persists the resulting stages.
package pipeline

import (
	"context"
)

const (
	componentLoader      = "ImageLoader"
	componentProcessor   = "ImageProcessor"
	componentSaver       = "ImageSaver"
	componentCoordinator = "Coordinator"
)

type TimingTracker interface {
	StartTiming(operation string) context.Context
	EndTiming(ctx context.Context)
}
