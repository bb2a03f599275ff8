package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/opencv/conversion"
	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// LoadOptions selects the working resolution. A positive Scale wins over the
// fixed Width and Height.
type LoadOptions struct {
	Width  int
	Height int
	Scale  float64
}

// Frame is the loaded working image in colour and grayscale.
type Frame struct {
	Path         string
	SourceWidth  int
	SourceHeight int
	Original     *safe.Mat
	Gray         *safe.Mat
}

func (f *Frame) Width() int {
	return f.Original.Cols()
}

func (f *Frame) Height() int {
	return f.Original.Rows()
}

func (f *Frame) Close() {
	if f == nil {
		return
	}
	f.Original.Close()
	f.Gray.Close()
}

type ImageLoader struct {
	tracker safe.Tracker
	log     logger.Logger
	timer   TimingTracker
}

func NewImageLoader(tracker safe.Tracker, log logger.Logger, timer TimingTracker) *ImageLoader {
	return &ImageLoader{tracker: tracker, log: log, timer: timer}
}

// Load reads path, resizes it to the working resolution and derives the
// grayscale image.
func (l *ImageLoader) Load(path string, opts LoadOptions) (*Frame, error) {
	ctx := l.timer.StartTiming("load")
	defer l.timer.EndTiming(ctx)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("image file %s not found", path)
		}
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to read image %s", path)
	}

	source, err := safe.Adopt(mat, l.tracker, "source")
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	defer source.Close()

	var original *safe.Mat
	if opts.Scale > 0 {
		original, err = conversion.Scale(source, opts.Scale, l.tracker, "original")
	} else {
		original, err = conversion.Resize(source, opts.Width, opts.Height, l.tracker, "original")
	}
	if err != nil {
		return nil, fmt.Errorf("resize %s: %w", path, err)
	}

	gray, err := conversion.ConvertToGrayscale(original, l.tracker, "gray")
	if err != nil {
		original.Close()
		return nil, fmt.Errorf("grayscale %s: %w", path, err)
	}

	frame := &Frame{
		Path:         path,
		SourceWidth:  source.Cols(),
		SourceHeight: source.Rows(),
		Original:     original,
		Gray:         gray,
	}

	l.log.Info(componentLoader, "image loaded", map[string]interface{}{
		"path":          path,
		"source_width":  frame.SourceWidth,
		"source_height": frame.SourceHeight,
		"width":         frame.Width(),
		"height":        frame.Height(),
	})

	return frame, nil
}
