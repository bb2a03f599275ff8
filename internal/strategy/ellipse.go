package strategy

import (
	"ellipse-detector/internal/detection"
	"ellipse-detector/internal/geometry"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/processing/chain"
	"ellipse-detector/internal/processing/filters"
	"ellipse-detector/internal/processing/threshold"

	"gocv.io/x/gocv"
)

func ellipseGate(params models.Parameters, minCompactness float64, skipConvex bool, minAreaRatio float64) geometry.EllipseGate {
	return geometry.EllipseGate{
		MinArea:        float64(params.Int(paramMinArea)),
		MinCompactness: minCompactness,
		MinAspect:      params.Float(paramAspectRatio),
		AngleTolerance: float64(params.Int(paramAngleTolerance)),
		SkipConvex:     skipConvex,
		MinAreaRatio:   minAreaRatio,
	}
}

var fiveStageFiles = []models.StageFile{
	{Stage: models.StageOriginal, File: "1_original.jpg"},
	{Stage: models.StageBinary, File: "2_threshold.jpg"},
	{Stage: models.StageMorph, File: "3_morphology.jpg"},
	{Stage: models.StageDilated, File: "4_dilated.jpg"},
	{Stage: models.StageResult, File: "5_result.jpg"},
}

var standardMosaic = [4]string{models.StageOriginal, models.StageBinary, models.StageMorph, models.StageResult}

func otsuEllipse() Strategy {
	return Strategy{
		Name:        "otsu-ellipse",
		Description: "CLAHE, Gaussian blur, inverted Otsu threshold, closing and dilation; first matching ellipse",
		Parameters: []models.ParameterDefinition{
			odd(paramPreBlur, "Pre Blur", 5, 15),
			floored(count(paramMorphSize, "Morph Size", 7, 20), 1),
			count(paramMinArea, "Min Area", 250, 1000),
			percent(paramAspectRatio, "Aspect Ratio", 70),
			count(paramAngleTolerance, "Angle Tol.", 45, 90),
			count(paramDilateIter, "Dilate Iter", 2, 5),
		},
		Files:  fiveStageFiles,
		Mosaic: standardMosaic,
		steps: func() []chain.ProcessingStep {
			return []chain.ProcessingStep{
				filters.NewCLAHEFilter(2.0, 8),
				chain.Capture(models.StageBlurred, filters.NewGaussianFilter(paramPreBlur, 5)),
				chain.Capture(models.StageBinary, threshold.NewOtsuThreshold(true)),
				chain.Capture(models.StageMorph, filters.NewMorphologyFilter(gocv.MorphClose, gocv.MorphEllipse, 7, 2).
					WithSizeParam(paramMorphSize)),
				chain.Capture(models.StageDilated, filters.NewMorphologyFilter(gocv.MorphDilate, gocv.MorphEllipse, 7, 2).
					WithSizeParam(paramMorphSize).WithIterationsParam(paramDilateIter)),
			}
		},
		detect: func(p models.Parameters) detection.Config {
			return detection.Config{
				Ellipse: &detection.EllipseSearch{Gate: ellipseGate(p, 0.7, true, 0), Policy: geometry.FirstMatch},
			}
		},
	}
}

func cannyEllipse() Strategy {
	return Strategy{
		Name:        "canny-ellipse",
		Description: "CLAHE, Gaussian blur, Canny edges, dilation and closing; first matching ellipse",
		Parameters: []models.ParameterDefinition{
			odd(paramPreBlur, "Pre Blur", 5, 15),
			floored(count(paramMorphSize, "Morph Size", 5, 20), 1),
			count(paramMinArea, "Min Area", 250, 1000),
			percent(paramAspectRatio, "Aspect Ratio", 70),
			count(paramAngleTolerance, "Angle Tol.", 45, 90),
			count(paramDilateIter, "Dilate Iter", 1, 5),
			count(paramCannyLow, "Canny Low", 50, 300),
			count(paramCannyHigh, "Canny High", 150, 300),
		},
		Files: []models.StageFile{
			{Stage: models.StageOriginal, File: "1_original.jpg"},
			{Stage: models.StageBinary, File: "2_edges.jpg"},
			{Stage: models.StageMorph, File: "3_morphology.jpg"},
			{Stage: models.StageResult, File: "4_result.jpg"},
		},
		Mosaic: standardMosaic,
		steps: func() []chain.ProcessingStep {
			return []chain.ProcessingStep{
				filters.NewCLAHEFilter(2.0, 8),
				chain.Capture(models.StageBlurred, filters.NewGaussianFilter(paramPreBlur, 5)),
				chain.Capture(models.StageBinary, threshold.NewCannyEdges(paramCannyLow, 50, paramCannyHigh, 150)),
				chain.Capture(models.StageDilated, filters.NewMorphologyFilter(gocv.MorphDilate, gocv.MorphRect, 3, 1).
					WithIterationsParam(paramDilateIter)),
				chain.Capture(models.StageMorph, filters.NewMorphologyFilter(gocv.MorphClose, gocv.MorphEllipse, 5, 2).
					WithSizeParam(paramMorphSize)),
			}
		},
		detect: func(p models.Parameters) detection.Config {
			return detection.Config{
				Ellipse: &detection.EllipseSearch{Gate: ellipseGate(p, 0.7, true, 0), Policy: geometry.FirstMatch},
			}
		},
	}
}

func adaptiveEllipse() Strategy {
	return Strategy{
		Name:        "adaptive-ellipse",
		Description: "half-scale bilateral filter, adaptive threshold, opening and closing; largest matching ellipse",
		Parameters: []models.ParameterDefinition{
			floored(odd(paramBlockSize, "Block Size", 21, 100), 3),
			count(paramC, "C Constant", 15, 50),
			floored(count(paramMorphSize, "Morph Size", 5, 20), 1),
			count(paramMinArea, "Min Area", 500, 5000),
			percent(paramAspectRatio, "Aspect Ratio", 75),
			count(paramAngleTolerance, "Angle Tol.", 45, 90),
			count(paramDilateIter, "Dilate Iter", 2, 10),
			odd(paramPreBlur, "Pre Blur", 9, 15),
		},
		Scale:  0.5,
		Files:  fiveStageFiles,
		Mosaic: standardMosaic,
		steps: func() []chain.ProcessingStep {
			return []chain.ProcessingStep{
				chain.Capture(models.StageBlurred, filters.NewBilateralFilter(paramPreBlur, 9, 75, 75)),
				chain.Capture(models.StageBinary, threshold.NewAdaptiveThreshold(paramBlockSize, 21, paramC, 15)),
				chain.Capture(models.StageMorph, filters.NewMorphologyFilter(gocv.MorphOpen, gocv.MorphEllipse, 5, 1).
					WithSizeParam(paramMorphSize)),
				chain.Capture(models.StageDilated, filters.NewMorphologyFilter(gocv.MorphClose, gocv.MorphEllipse, 5, 2).
					WithSizeParam(paramMorphSize).WithIterationsParam(paramDilateIter)),
			}
		},
		detect: func(p models.Parameters) detection.Config {
			return detection.Config{
				Ellipse: &detection.EllipseSearch{Gate: ellipseGate(p, 0.5, false, 0.6), Policy: geometry.LargestArea},
			}
		},
	}
}
