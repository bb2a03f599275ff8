package conversion

import (
	"fmt"
	"image"

	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertToGrayscale converts a colour Mat to a single-channel one. Single
// channel input is cloned.
func ConvertToGrayscale(src *safe.Mat, tracker safe.Tracker, tag string) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 1 {
		return safe.NewMatFromMat(src.GetMat(), tracker, tag)
	}

	dst := gocv.NewMat()
	switch src.Channels() {
	case 3:
		if err := gocv.CvtColor(src.GetMat(), &dst, gocv.ColorBGRToGray); err != nil {
			dst.Close()
			return nil, fmt.Errorf("grayscale conversion: %w", err)
		}
	case 4:
		if err := gocv.CvtColor(src.GetMat(), &dst, gocv.ColorBGRAToGray); err != nil {
			dst.Close()
			return nil, fmt.Errorf("grayscale conversion: %w", err)
		}
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return safe.Adopt(dst, tracker, tag)
}

// ConvertToBGR expands a single-channel Mat to three channels. Colour input
// is cloned.
func ConvertToBGR(src *safe.Mat, tracker safe.Tracker, tag string) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "BGR conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 3 {
		return safe.NewMatFromMat(src.GetMat(), tracker, tag)
	}
	if err := safe.ValidateColorConversion(src, gocv.ColorGrayToBGR); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	if err := gocv.CvtColor(src.GetMat(), &dst, gocv.ColorGrayToBGR); err != nil {
		dst.Close()
		return nil, fmt.Errorf("BGR conversion: %w", err)
	}

	return safe.Adopt(dst, tracker, tag)
}

// Resize scales src to exactly width×height.
func Resize(src *safe.Mat, width, height int, tracker safe.Tracker, tag string) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "resize"); err != nil {
		return nil, err
	}
	if err := safe.ValidateDimensions(width, height, "resize"); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	if err := gocv.Resize(src.GetMat(), &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear); err != nil {
		dst.Close()
		return nil, fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}

	return safe.Adopt(dst, tracker, tag)
}

// Scale resizes src by factor on both axes.
func Scale(src *safe.Mat, factor float64, tracker safe.Tracker, tag string) (*safe.Mat, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("invalid scale factor %v", factor)
	}
	if err := safe.ValidateMatForOperation(src, "scale"); err != nil {
		return nil, err
	}

	// OpenCV rounds each axis itself when dsize is zero.
	dst := gocv.NewMat()
	if err := gocv.Resize(src.GetMat(), &dst, image.Point{}, factor, factor, gocv.InterpolationLinear); err != nil {
		dst.Close()
		return nil, fmt.Errorf("scale by %v: %w", factor, err)
	}

	return safe.Adopt(dst, tracker, tag)
}

// MatToImage converts an 8-bit Mat to a Go image.
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	switch src.Channels() {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	mat := src.GetMat()
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("Mat to image conversion: %w", err)
	}
	return img, nil
}
