package pipeline

import (
	"context"
	"fmt"

	"ellipse-detector/internal/debug/timing"
	"ellipse-detector/internal/detection"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/memory"
	"ellipse-detector/internal/opencv/safe"
	"ellipse-detector/internal/strategy"
)

type ImageProcessor struct {
	tracker safe.Tracker
	log     logger.Logger
	timer   *timing.Tracker
}

func NewImageProcessor(tracker safe.Tracker, log logger.Logger, timer *timing.Tracker) *ImageProcessor {
	return &ImageProcessor{tracker: tracker, log: log, timer: timer}
}

// Run executes one full pass of s over frame with a fixed parameter snapshot.
// The returned result owns copies of every stage; frame is left untouched.
func (p *ImageProcessor) Run(ctx context.Context, frame *Frame, s strategy.Strategy, params models.Parameters) (*StageResult, error) {
	if frame == nil {
		return nil, fmt.Errorf("no image loaded")
	}
	if params.Strategy() != s.Name {
		return nil, fmt.Errorf("parameters belong to %q, not %q", params.Strategy(), s.Name)
	}

	pass := p.timer.Child()
	builder := newResultBuilder(s.Name, params)

	// Every Mat of the pass is tracked; the ones the result owns are kept.
	scope := memory.NewScope()
	defer scope.Release()

	for _, stage := range []struct {
		name string
		src  *safe.Mat
	}{
		{models.StageOriginal, frame.Original},
		{models.StageGray, frame.Gray},
	} {
		clone, err := safe.NewMatFromMat(stage.src.GetMat(), p.tracker, stage.name)
		if err != nil {
			return nil, fmt.Errorf("copy %s stage: %w", stage.name, err)
		}
		builder.add(stage.name, scope.Track(clone))
	}

	trace, err := s.Chain().WithTimer(pass).Execute(safe.WithTracker(ctx, p.tracker), frame.Gray, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}

	captured := make(map[*safe.Mat]bool, len(trace.Outputs))
	for _, out := range trace.Outputs {
		builder.add(out.Stage, scope.Track(out.Mat))
		captured[out.Mat] = true
	}

	contourSource := frame.Gray
	if trace.Final != nil {
		contourSource = trace.Final
		if !captured[trace.Final] {
			scope.Track(trace.Final)
		}
	}

	var houghSource *safe.Mat
	if s.HoughStage != "" {
		m, ok := builder.result.Stage(s.HoughStage)
		if !ok {
			return nil, models.NewStageError(s.HoughStage, "missing for hough transform")
		}
		houghSource = m
	}

	var det detection.Result
	err = pass.Time("detect", func() error {
		var derr error
		det, derr = detection.Detect(ctx, contourSource, houghSource, s.Detection(params))
		return derr
	})
	if err != nil {
		return nil, fmt.Errorf("%s detection: %w", s.Name, err)
	}

	style := defaultStyle
	if s.LineWidth > 0 {
		style.Shapes = s.LineWidth
	}

	var rendered *safe.Mat
	err = pass.Time("render", func() error {
		var rerr error
		rendered, rerr = RenderResult(frame.Original, det, style, p.tracker)
		return rerr
	})
	if err != nil {
		return nil, fmt.Errorf("%s render: %w", s.Name, err)
	}
	builder.add(models.StageResult, scope.Track(rendered))

	result := builder.build(det, pass.Latest())
	for _, m := range result.stages {
		scope.Keep(m)
	}

	fields := map[string]interface{}{
		"strategy":  s.Name,
		"contours":  det.Contours,
		"measured":  len(det.Measurements),
		"accepted":  det.Accepted(),
		"stages":    len(result.Stages()),
		"detect_ms": result.timings["detect"].Milliseconds(),
	}
	if det.Ellipse != nil && det.Ellipse.Ellipse != nil {
		fields["ellipse_center"] = det.Ellipse.Ellipse.Center.String()
		fields["ellipse_aspect"] = det.Ellipse.Aspect
	}
	p.log.Debug(componentProcessor, "pass completed", fields)

	return result, nil
}
