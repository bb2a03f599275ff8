package chain

import (
	"context"
	"fmt"

	"ellipse-detector/internal/models"
	"ellipse-detector/internal/opencv/safe"
)

type ProcessingStep interface {
	Apply(ctx context.Context, input *safe.Mat, params models.Parameters) (*safe.Mat, error)
	Name() string
	ShouldExecute(params models.Parameters) bool
}

// Timer records the duration of each executed step.
type Timer interface {
	StartTiming(operation string) context.Context
	EndTiming(ctx context.Context)
}

// Checkpoint keeps the output of a step as a named stage.
type Checkpoint struct {
	ProcessingStep
	Stage string
}

// Capture wraps step so its output is kept under stage.
func Capture(stage string, step ProcessingStep) Checkpoint {
	return Checkpoint{ProcessingStep: step, Stage: stage}
}

// Output is one captured stage image.
type Output struct {
	Stage string
	Mat   *safe.Mat
}

// Trace is what a chain run leaves behind. Final is the last step's output and
// may also appear in Outputs.
type Trace struct {
	Outputs []Output
	Final   *safe.Mat
}

// Close releases every Mat owned by the trace.
func (t Trace) Close() {
	for _, o := range t.Outputs {
		o.Mat.Close()
	}
	if t.Final != nil {
		t.Final.Close()
	}
}

type ProcessingChain struct {
	steps []ProcessingStep
	timer Timer
}

func NewProcessingChain(steps []ProcessingStep) *ProcessingChain {
	return &ProcessingChain{
		steps: steps,
	}
}

// WithTimer sets the step timer and returns the chain.
func (pc *ProcessingChain) WithTimer(timer Timer) *ProcessingChain {
	pc.timer = timer
	return pc
}

// Execute runs the steps in order starting from input, which is never closed.
// Intermediate results that are not captured are closed once superseded.
func (pc *ProcessingChain) Execute(ctx context.Context, input *safe.Mat, params models.Parameters) (Trace, error) {
	var trace Trace
	current := input
	captured := false

	discard := func() {
		if current != input && !captured {
			current.Close()
		}
	}

	for _, step := range pc.steps {
		select {
		case <-ctx.Done():
			discard()
			trace.Close()
			return Trace{}, ctx.Err()
		default:
		}

		if !step.ShouldExecute(params) {
			continue
		}

		result, err := pc.apply(ctx, step, current, params)
		if err != nil {
			discard()
			trace.Close()
			return Trace{}, fmt.Errorf("step %s failed: %w", step.Name(), err)
		}

		discard()
		current = result
		captured = false

		if cp, ok := step.(Checkpoint); ok && cp.Stage != "" {
			trace.Outputs = append(trace.Outputs, Output{Stage: cp.Stage, Mat: result})
			captured = true
		}
	}

	// Final may alias a captured output; Close on a safe.Mat is idempotent.
	if current != input {
		trace.Final = current
	}

	return trace, nil
}

func (pc *ProcessingChain) apply(ctx context.Context, step ProcessingStep, input *safe.Mat, params models.Parameters) (*safe.Mat, error) {
	if pc.timer == nil {
		return step.Apply(ctx, input, params)
	}

	timingCtx := pc.timer.StartTiming(step.Name())
	defer pc.timer.EndTiming(timingCtx)
	return step.Apply(ctx, input, params)
}
