package domain

import (
	"fmt"
	"time"
)

// Diagnostic is a human-readable account of why a prediction is unavailable
type Diagnostic struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes for the different failure scenarios
const (
	ErrArtifactMissing     = "ARTIFACT_MISSING"
	ErrArtifactLoadFailure = "ARTIFACT_LOAD_FAILURE"
	ErrTransformFailure    = "TRANSFORM_FAILURE"
	ErrInferenceFailure    = "INFERENCE_FAILURE"
	ErrPresetNotFound      = "PRESET_NOT_FOUND"
	ErrInvalidInput        = "INVALID_INPUT"
)

// NewDiagnostic creates a new Diagnostic with timestamp
func NewDiagnostic(code, message, details string) *Diagnostic {
	return &Diagnostic{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// String renders the diagnostic for logs and terminals
func (d *Diagnostic) String() string {
	if d.Details == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Details)
}

// DiagnosticError carries a diagnostic code through Go error returns
type DiagnosticError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *DiagnosticError) Unwrap() error {
	return e.Cause
}

// Diagnostic converts the error into a displayable diagnostic
func (e *DiagnosticError) Diagnostic() *Diagnostic {
	details := ""
	if e.Cause != nil {
		details = e.Cause.Error()
	}
	return NewDiagnostic(e.Code, e.Message, details)
}

// NewDiagnosticError creates a new DiagnosticError
func NewDiagnosticError(code, message string, cause error) *DiagnosticError {
	return &DiagnosticError{Code: code, Message: message, Cause: cause}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

func rangeMessage(min, max int) string {
	if max-min == 1 {
		return fmt.Sprintf("must be %d or %d", min, max)
	}
	return fmt.Sprintf("must be between %d and %d", min, max)
}
