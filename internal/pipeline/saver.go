package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/models"

	"gocv.io/x/gocv"
)

type ImageSaver struct {
	log   logger.Logger
	timer TimingTracker
}

func NewImageSaver(log logger.Logger, timer TimingTracker) *ImageSaver {
	return &ImageSaver{log: log, timer: timer}
}

// Validate checks that every listed stage exists and is non-empty.
func (s *ImageSaver) Validate(result *StageResult, files []models.StageFile) error {
	if result == nil {
		return models.NewStageError(models.StageOriginal, "not processed yet")
	}
	for _, f := range files {
		if _, ok := result.Stage(f.Stage); !ok {
			return models.NewStageError(f.Stage, "is missing or empty")
		}
	}
	return nil
}

// Save writes the listed stages into dir in order and returns the written
// paths. Nothing is written when validation fails.
func (s *ImageSaver) Save(result *StageResult, files []models.StageFile, dir string) ([]string, error) {
	ctx := s.timer.StartTiming("save")
	defer s.timer.EndTiming(ctx)

	if err := s.Validate(result, files); err != nil {
		s.log.Error(componentSaver, err, map[string]interface{}{"dir": dir})
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		mat, _ := result.Stage(f.Stage)
		path := filepath.Join(dir, f.File)
		if ok := gocv.IMWrite(path, mat.GetMat()); !ok {
			return written, fmt.Errorf("failed to write %s", path)
		}
		written = append(written, path)
	}

	s.log.Info(componentSaver, "stages saved", map[string]interface{}{
		"dir":      dir,
		"files":    len(written),
		"strategy": result.Strategy(),
	})

	return written, nil
}
