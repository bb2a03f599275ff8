package app

import (
	"context"
	"fmt"
	"image"

	"ellipse-detector/internal/config"
	"ellipse-detector/internal/detection"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"
	"ellipse-detector/internal/pipeline"
	"ellipse-detector/internal/report"
	"ellipse-detector/internal/strategy"

	"github.com/google/uuid"
)

const componentSession = "Session"

// Session is one image under tuning. It backs every run mode and adds the
// report files to each save.
type Session struct {
	coord  *pipeline.Coordinator
	log    logger.Logger
	runID  string
	image  string
	output string
	report bool
	plot   bool
}

func NewSession(coord *pipeline.Coordinator, log logger.Logger, cfg config.Config) *Session {
	return &Session{
		coord:  coord,
		log:    log,
		runID:  uuid.NewString(),
		image:  cfg.Image,
		output: cfg.Output,
		report: cfg.Report,
		plot:   cfg.Plot,
	}
}

func (s *Session) RunID() string {
	return s.runID
}

// Open selects the strategy, loads the image and applies parameter
// overrides on top of the strategy defaults.
func (s *Session) Open(strategyName string, overrides map[string]int) error {
	if err := s.coord.SetStrategy(strategyName); err != nil {
		return err
	}
	if err := s.coord.LoadImage(s.image); err != nil {
		return err
	}
	if err := s.coord.Parameters().Apply(overrides); err != nil {
		return err
	}

	s.log.Info(componentSession, "session opened", map[string]interface{}{
		"run_id":    s.runID,
		"image":     s.image,
		"strategy":  strategyName,
		"overrides": len(overrides),
	})
	return nil
}

func (s *Session) Strategies() []string {
	return strategy.Names()
}

func (s *Session) Strategy() strategy.Strategy {
	return s.coord.Strategy()
}

func (s *Session) SelectStrategy(name string) error {
	return s.coord.SetStrategy(name)
}

func (s *Session) Parameters() *models.ParameterSet {
	return s.coord.Parameters()
}

func (s *Session) Process(ctx context.Context) (detection.Result, error) {
	result, err := s.coord.Process(ctx)
	if err != nil {
		return detection.Result{}, err
	}
	return result.Detection(), nil
}

func (s *Session) MosaicImage() (image.Image, error) {
	return s.coord.MosaicImage()
}

func (s *Session) MosaicMat() (*safe.Mat, error) {
	return s.coord.MosaicMat()
}

// Save writes the stage images and, when enabled, the report and plot.
// Saved files depend only on the image and parameters; the run id and
// timings go to the log.
func (s *Session) Save() ([]string, error) {
	written, err := s.coord.Save(s.output)
	if err != nil {
		return written, err
	}

	result := s.coord.Current()
	if result == nil {
		return written, nil
	}
	in := result.ReportInput(s.image)

	if s.report {
		path, err := report.Write(s.output, report.Build(in))
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if s.plot {
		path, err := report.Plot(s.output, fmt.Sprintf("%s candidates", in.Strategy), in.Measurements)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	fields := map[string]interface{}{
		"run_id":   s.runID,
		"strategy": in.Strategy,
		"files":    len(written),
		"accepted": result.Detection().Accepted(),
	}
	for name, d := range result.Timings() {
		fields["ms_"+name] = float64(d.Microseconds()) / 1000
	}
	s.log.Info(componentSession, "results saved", fields)

	return written, nil
}
