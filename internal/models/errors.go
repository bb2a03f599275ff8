package models

import "fmt"

// ValidationError represents a parameter or configuration validation error
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
}

// NewValidationError creates a new validation error
func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

// Error returns the error message
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		ve.Parameter, ve.Value, ve.Message)
}

// StageError reports a pipeline stage that is missing or unusable at save time.
type StageError struct {
	Stage  string
	Reason string
}

// NewStageError creates a new stage error
func NewStageError(stage, reason string) *StageError {
	return &StageError{Stage: stage, Reason: reason}
}

// Error returns the error message
func (se *StageError) Error() string {
	return fmt.Sprintf("stage %s %s", se.Stage, se.Reason)
}
