package threshold

import (
	"context"
	"fmt"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// CannyEdges runs hysteresis edge detection with tunable thresholds.
type CannyEdges struct {
	LowParam  string
	Low       int
	HighParam string
	High      int
}

func NewCannyEdges(lowParam string, low int, highParam string, high int) *CannyEdges {
	return &CannyEdges{LowParam: lowParam, Low: low, HighParam: highParam, High: high}
}

func (c *CannyEdges) Name() string {
	return "canny"
}

func (c *CannyEdges) ShouldExecute(params models.Parameters) bool {
	return true
}

func (c *CannyEdges) Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateSingleChannel(input, c.Name()); err != nil {
		return nil, err
	}

	low, high := c.Low, c.High
	if c.LowParam != "" && params.Has(c.LowParam) {
		low = params.Int(c.LowParam)
	}
	if c.HighParam != "" && params.Has(c.HighParam) {
		high = params.Int(c.HighParam)
	}

	dst := gocv.NewMat()
	if err := gocv.Canny(input.GetMat(), &dst, float32(low), float32(high)); err != nil {
		dst.Close()
		return nil, fmt.Errorf("canny %d/%d: %w", low, high, err)
	}

	return safe.AdoptResult(ctx, dst, c.Name())
}
