package filters

import (
	"context"
	"fmt"
	"image"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// GaussianFilter blurs with a square kernel; sigma is derived from the size.
type GaussianFilter struct {
	KernelParam string
	Kernel      int
}

func NewGaussianFilter(kernelParam string, kernel int) *GaussianFilter {
	return &GaussianFilter{KernelParam: kernelParam, Kernel: kernel}
}

func (g *GaussianFilter) Name() string {
	return "gaussian_blur"
}

func (g *GaussianFilter) ShouldExecute(params models.Parameters) bool {
	return true
}

func (g *GaussianFilter) Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	size := intParam(params, g.KernelParam, g.Kernel)
	if err := safe.ValidateKernelSize(size, g.Name()); err != nil {
		return nil, err
	}
	if err := safe.ValidateMatForOperation(input, g.Name()); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	if err := gocv.GaussianBlur(input.GetMat(), &dst, image.Point{X: size, Y: size}, 0, 0, gocv.BorderDefault); err != nil {
		dst.Close()
		return nil, fmt.Errorf("gaussian blur %d: %w", size, err)
	}

	return safe.AdoptResult(ctx, dst, g.Name())
}
