package filters

import (
	"context"
	"fmt"
	"image"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// MorphologyFilter applies one morphological operation with a structuring
// element whose size and iteration count may come from the parameter set.
type MorphologyFilter struct {
	Op         gocv.MorphType
	Shape      gocv.MorphShape
	SizeParam  string
	Size       int
	IterParam  string
	Iterations int
}

func NewMorphologyFilter(op gocv.MorphType, shape gocv.MorphShape, size, iterations int) *MorphologyFilter {
	return &MorphologyFilter{Op: op, Shape: shape, Size: size, Iterations: iterations}
}

// WithSizeParam reads the kernel size from name.
func (m *MorphologyFilter) WithSizeParam(name string) *MorphologyFilter {
	m.SizeParam = name
	return m
}

// WithIterationsParam reads the iteration count from name.
func (m *MorphologyFilter) WithIterationsParam(name string) *MorphologyFilter {
	m.IterParam = name
	return m
}

func (m *MorphologyFilter) Name() string {
	switch m.Op {
	case gocv.MorphOpen:
		return "morph_open"
	case gocv.MorphClose:
		return "morph_close"
	case gocv.MorphDilate:
		return "dilate"
	case gocv.MorphErode:
		return "erode"
	default:
		return "morphology"
	}
}

func (m *MorphologyFilter) ShouldExecute(params models.Parameters) bool {
	return true
}

func (m *MorphologyFilter) iterations(params models.Parameters) int {
	return intParam(params, m.IterParam, m.Iterations)
}

func (m *MorphologyFilter) Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, m.Name()); err != nil {
		return nil, err
	}

	// Zero iterations leave the image untouched, but the stage still exists.
	iterations := m.iterations(params)
	if iterations <= 0 {
		return safe.NewMatFromMat(input.GetMat(), safe.TrackerFromContext(ctx), m.Name())
	}

	size := intParam(params, m.SizeParam, m.Size)
	if size < 1 {
		return nil, fmt.Errorf("%s kernel size %d must be at least 1", m.Name(), size)
	}

	kernel := gocv.GetStructuringElement(m.Shape, image.Point{X: size, Y: size})
	defer kernel.Close()

	dst := gocv.NewMat()
	if err := gocv.MorphologyExWithParams(input.GetMat(), &dst, m.Op, kernel, iterations, gocv.BorderConstant); err != nil {
		dst.Close()
		return nil, fmt.Errorf("%s: %w", m.Name(), err)
	}

	return safe.AdoptResult(ctx, dst, m.Name())
}
