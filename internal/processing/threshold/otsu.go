// Package threshold binarizes or edge-detects a single-channel image.
package threshold

import (
	"context"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// OtsuThreshold picks the global threshold automatically. Inverse marks dark
// objects as foreground.
type OtsuThreshold struct {
	Inverse bool
}

func NewOtsuThreshold(inverse bool) *OtsuThreshold {
	return &OtsuThreshold{Inverse: inverse}
}

func (o *OtsuThreshold) Name() string {
	return "otsu_threshold"
}

func (o *OtsuThreshold) ShouldExecute(params models.Parameters) bool {
	return true
}

func (o *OtsuThreshold) Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateSingleChannel(input, o.Name()); err != nil {
		return nil, err
	}

	mode := gocv.ThresholdBinary
	if o.Inverse {
		mode = gocv.ThresholdBinaryInv
	}

	dst := gocv.NewMat()
	gocv.Threshold(input.GetMat(), &dst, 0, 255, mode+gocv.ThresholdOtsu)

	return safe.AdoptResult(ctx, dst, o.Name())
}
