package safe

import (
	"context"

	"gocv.io/x/gocv"
)

type trackerKey struct{}

// WithTracker attaches tracker to ctx so processing steps can register the
// Mats they allocate.
func WithTracker(ctx context.Context, tracker Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, tracker)
}

// TrackerFromContext returns the tracker set by WithTracker, or nil.
func TrackerFromContext(ctx context.Context) Tracker {
	tracker, _ := ctx.Value(trackerKey{}).(Tracker)
	return tracker
}

// AdoptResult wraps the output of a processing step with the tracker in ctx.
func AdoptResult(ctx context.Context, m gocv.Mat, tag string) (*Mat, error) {
	return Adopt(m, TrackerFromContext(ctx), tag)
}
