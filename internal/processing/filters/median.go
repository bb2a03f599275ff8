package filters

import (
	"context"
	"fmt"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type MedianFilter struct {
	KernelParam string
	Kernel      int
}

func NewMedianFilter(kernelParam string, kernel int) *MedianFilter {
	return &MedianFilter{KernelParam: kernelParam, Kernel: kernel}
}

func (m *MedianFilter) Name() string {
	return "median_blur"
}

func (m *MedianFilter) ShouldExecute(params models.Parameters) bool {
	return true
}

func (m *MedianFilter) Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	size := intParam(params, m.KernelParam, m.Kernel)
	if err := safe.ValidateKernelSize(size, m.Name()); err != nil {
		return nil, err
	}
	if err := safe.ValidateMatForOperation(input, m.Name()); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	if err := gocv.MedianBlur(input.GetMat(), &dst, size); err != nil {
		dst.Close()
		return nil, fmt.Errorf("median blur %d: %w", size, err)
	}

	return safe.AdoptResult(ctx, dst, m.Name())
}
