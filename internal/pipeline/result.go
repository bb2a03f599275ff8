package pipeline

import (
	"time"

	"ellipse-detector/internal/detection"
	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"
)

// StageResult is the outcome of one processing pass. It is built once by the
// processor and never mutated afterwards; consumers read stages by name.
type StageResult struct {
	strategy  string
	params    models.Parameters
	stages    map[string]*safe.Mat
	order     []string
	detection detection.Result
	timings   map[string]time.Duration
}

func (r *StageResult) Strategy() string {
	return r.strategy
}

func (r *StageResult) Parameters() models.Parameters {
	return r.params
}

func (r *StageResult) Detection() detection.Result {
	return r.detection
}

// Stage returns the named stage image. The Mat is owned by the result.
func (r *StageResult) Stage(name string) (*safe.Mat, bool) {
	m, ok := r.stages[name]
	if !ok || m == nil || !m.IsValid() || m.Empty() {
		return nil, false
	}
	return m, true
}

// Stages lists stage names in production order.
func (r *StageResult) Stages() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Timings returns a copy of the per-step durations of this pass.
func (r *StageResult) Timings() map[string]time.Duration {
	out := make(map[string]time.Duration, len(r.timings))
	for k, v := range r.timings {
		out[k] = v
	}
	return out
}

// Width and Height are the working resolution.
func (r *StageResult) Width() int {
	if m, ok := r.Stage(models.StageOriginal); ok {
		return m.Cols()
	}
	return 0
}

func (r *StageResult) Height() int {
	if m, ok := r.Stage(models.StageOriginal); ok {
		return m.Rows()
	}
	return 0
}

// Close releases every stage Mat.
func (r *StageResult) Close() {
	if r == nil {
		return
	}
	for _, m := range r.stages {
		m.Close()
	}
}

type resultBuilder struct {
	result *StageResult
}

func newResultBuilder(strategy string, params models.Parameters) *resultBuilder {
	return &resultBuilder{result: &StageResult{
		strategy: strategy,
		params:   params,
		stages:   make(map[string]*safe.Mat),
	}}
}

func (b *resultBuilder) add(stage string, m *safe.Mat) {
	if prev, ok := b.result.stages[stage]; ok {
		prev.Close()
	} else {
		b.result.order = append(b.result.order, stage)
	}
	b.result.stages[stage] = m
}

func (b *resultBuilder) build(det detection.Result, timings map[string]time.Duration) *StageResult {
	b.result.detection = det
	b.result.timings = timings
	return b.result
}
