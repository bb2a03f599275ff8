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

func cannyShapes() Strategy {
	return Strategy{
		Name:        "canny-shapes",
		Description: "Gaussian blur and Canny edges over the ten largest contours; quadrilateral, enclosing circle and Hough circles",
		Parameters: []models.ParameterDefinition{
			odd(paramPreBlur, "Pre Blur", 9, 15),
			count(paramCannyLow, "Canny Low", 30, 300),
			count(paramCannyHigh, "Canny High", 150, 300),
			count(paramMinRadius, "Min Radius", 20, 200),
		},
		Files: []models.StageFile{
			{Stage: models.StageOriginal, File: "1_original.jpg"},
			{Stage: models.StageBlurred, File: "2_blurred.jpg"},
			{Stage: models.StageBinary, File: "3_edges.jpg"},
			{Stage: models.StageResult, File: "4_result.jpg"},
		},
		Mosaic:     [4]string{models.StageOriginal, models.StageBinary, models.StageBlurred, models.StageResult},
		HoughStage: models.StageBlurred,
		LineWidth:  2,
		steps: func() []chain.ProcessingStep {
			return []chain.ProcessingStep{
				chain.Capture(models.StageBlurred, filters.NewGaussianFilter(paramPreBlur, 9)),
				chain.Capture(models.StageBinary, threshold.NewCannyEdges(paramCannyLow, 30, paramCannyHigh, 150)),
			}
		},
		detect: func(p models.Parameters) detection.Config {
			return detection.Config{
				TopN: 10,
				Quad: &detection.QuadSearch{Gate: geometry.QuadGate{Epsilon: 0.02}, Policy: geometry.FirstMatch},
				Enclosing: &geometry.EnclosingCircleGate{
					MinRadius:    float64(p.Int(paramMinRadius)),
					MinFillRatio: 0.7,
					MaxAreaDelta: 1000,
				},
				Hough: &detection.HoughSearch{
					DP: 1, MinDist: 50, Param1: 50, Param2: 30,
					MinRadius: 20, MaxRadius: 200,
				},
			}
		},
	}
}

func adaptiveShapes() Strategy {
	return Strategy{
		Name:        "adaptive-shapes",
		Description: "median blur, adaptive threshold, closing and opening; convex quadrilateral and round ellipse with Hough fallback",
		Parameters: []models.ParameterDefinition{
			odd(paramPreBlur, "Pre Blur", 7, 15),
			floored(odd(paramBlockSize, "Block Size", 21, 100), 3),
			count(paramC, "C Constant", 5, 50),
			count(paramMinQuadArea, "Min Quad Area", 1000, 5000),
			count(paramMinCircleArea, "Min Circle Area", 300, 5000),
		},
		Files: []models.StageFile{
			{Stage: models.StageOriginal, File: "1_original.jpg"},
			{Stage: models.StageBlurred, File: "2_blurred.jpg"},
			{Stage: models.StageBinary, File: "3_threshold.jpg"},
			{Stage: models.StageMorph, File: "4_morphology.jpg"},
			{Stage: models.StageResult, File: "5_result.jpg"},
		},
		Mosaic:     standardMosaic,
		HoughStage: models.StageMorph,
		LineWidth:  3,
		steps: func() []chain.ProcessingStep {
			return []chain.ProcessingStep{
				chain.Capture(models.StageBlurred, filters.NewMedianFilter(paramPreBlur, 7)),
				chain.Capture(models.StageBinary, threshold.NewAdaptiveThreshold(paramBlockSize, 21, paramC, 5)),
				filters.NewMorphologyFilter(gocv.MorphClose, gocv.MorphRect, 3, 2),
				chain.Capture(models.StageMorph, filters.NewMorphologyFilter(gocv.MorphOpen, gocv.MorphRect, 3, 1)),
			}
		},
		detect: func(p models.Parameters) detection.Config {
			return detection.Config{
				External: true,
				Quad: &detection.QuadSearch{
					Gate: geometry.QuadGate{
						Epsilon:       0.03,
						MinArea:       float64(p.Int(paramMinQuadArea)),
						RequireConvex: true,
					},
					Policy: geometry.LargestArea,
				},
				Round: &geometry.CircleByEllipseGate{
					MinArea:  float64(p.Int(paramMinCircleArea)),
					MinRatio: 0.9,
					MaxRatio: 1.1,
					MaxAngle: 20,
				},
				Hough: &detection.HoughSearch{
					DP: 1.5, MinDist: 100, Param1: 200, Param2: 25,
					MinRadius: 30, MaxRadius: 150,
					FallbackOnly: true,
				},
			}
		},
	}
}
