package filters

import (
	"context"
	"fmt"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// BilateralFilter smooths while keeping edges. The diameter is tunable, the
// sigmas are fixed per strategy.
type BilateralFilter struct {
	DiameterParam string
	Diameter      int
	SigmaColor    float64
	SigmaSpace    float64
}

func NewBilateralFilter(diameterParam string, diameter int, sigmaColor, sigmaSpace float64) *BilateralFilter {
	return &BilateralFilter{
		DiameterParam: diameterParam,
		Diameter:      diameter,
		SigmaColor:    sigmaColor,
		SigmaSpace:    sigmaSpace,
	}
}

func (b *BilateralFilter) Name() string {
	return "bilateral_filter"
}

func (b *BilateralFilter) ShouldExecute(params models.Parameters) bool {
	return true
}

func (b *BilateralFilter) Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, b.Name()); err != nil {
		return nil, err
	}

	d := intParam(params, b.DiameterParam, b.Diameter)
	dst := gocv.NewMat()
	if err := gocv.BilateralFilter(input.GetMat(), &dst, d, b.SigmaColor, b.SigmaSpace); err != nil {
		dst.Close()
		return nil, fmt.Errorf("bilateral filter d=%d: %w", d, err)
	}

	return safe.AdoptResult(ctx, dst, b.Name())
}
