package threshold

import (
	"context"
	"fmt"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// AdaptiveThreshold thresholds against a Gaussian-weighted neighbourhood mean
// and produces an inverted binary image.
type AdaptiveThreshold struct {
	BlockParam string
	Block      int
	CParam     string
	C          int
}

func NewAdaptiveThreshold(blockParam string, block int, cParam string, c int) *AdaptiveThreshold {
	return &AdaptiveThreshold{BlockParam: blockParam, Block: block, CParam: cParam, C: c}
}

func (a *AdaptiveThreshold) Name() string {
	return "adaptive_threshold"
}

func (a *AdaptiveThreshold) ShouldExecute(params models.Parameters) bool {
	return true
}

func (a *AdaptiveThreshold) Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateSingleChannel(input, a.Name()); err != nil {
		return nil, err
	}

	block := a.Block
	if a.BlockParam != "" && params.Has(a.BlockParam) {
		block = params.Int(a.BlockParam)
	}
	if block < 3 || block%2 == 0 {
		return nil, fmt.Errorf("adaptive threshold block size %d must be odd and at least 3", block)
	}

	c := a.C
	if a.CParam != "" && params.Has(a.CParam) {
		c = params.Int(a.CParam)
	}

	dst := gocv.NewMat()
	if err := gocv.AdaptiveThreshold(input.GetMat(), &dst, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, block, float32(c)); err != nil {
		dst.Close()
		return nil, fmt.Errorf("adaptive threshold %d: %w", block, err)
	}

	return safe.AdoptResult(ctx, dst, a.Name())
}
