package filters

import (
	"context"
	"fmt"
	"image"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// CLAHEFilter equalizes local contrast on a single-channel image.
type CLAHEFilter struct {
	ClipLimit float64
	TileSize  int
}

func NewCLAHEFilter(clipLimit float64, tileSize int) *CLAHEFilter {
	return &CLAHEFilter{ClipLimit: clipLimit, TileSize: tileSize}
}

func (c *CLAHEFilter) Name() string {
	return "clahe"
}

func (c *CLAHEFilter) ShouldExecute(params models.Parameters) bool {
	return c.ClipLimit > 0 && c.TileSize > 0
}

func (c *CLAHEFilter) Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateSingleChannel(input, c.Name()); err != nil {
		return nil, err
	}

	clahe := gocv.NewCLAHEWithParams(c.ClipLimit, image.Point{X: c.TileSize, Y: c.TileSize})
	defer clahe.Close()

	dst := gocv.NewMat()
	if err := clahe.Apply(input.GetMat(), &dst); err != nil {
		dst.Close()
		return nil, fmt.Errorf("clahe: %w", err)
	}

	return safe.AdoptResult(ctx, dst, c.Name())
}
