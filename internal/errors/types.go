// Package errors provides the structured error type shared by the inventory
// server and the build pipeline.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeBuild      ErrorType = "build"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// PrimeError is a structured error type with context.
type PrimeError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
	Step    string
	Path    string
}

// Error implements the error interface.
func (e *PrimeError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Step != "" {
		parts = append(parts, "step:"+e.Step)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PrimeError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *PrimeError) Is(target error) bool {
	var t *PrimeError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *PrimeError) WithContext(key string, value interface{}) *PrimeError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath adds file location information.
func (e *PrimeError) WithPath(path string) *PrimeError {
	e.Path = path

	return e
}

// WithStep adds build step context.
func (e *PrimeError) WithStep(step string) *PrimeError {
	e.Step = step

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *PrimeError {
	return &PrimeError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewBuildError creates a build error.
func NewBuildError(code, message string, cause error) *PrimeError {
	return &PrimeError{
		Type:    ErrorTypeBuild,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *PrimeError {
	return &PrimeError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *PrimeError {
	return &PrimeError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsBuildError checks if an error is build-related.
func IsBuildError(err error) bool {
	var pe *PrimeError
	if errors.As(err, &pe) {
		return pe.Type == ErrorTypeBuild
	}

	return false
}

// IsIOError checks if an error is an I/O error.
func IsIOError(err error) bool {
	var pe *PrimeError
	if errors.As(err, &pe) {
		return pe.Type == ErrorTypeIO
	}

	return false
}

// StepOf returns the name of the innermost build step recorded on err, if any.
func StepOf(err error) string {
	step := ""
	for err != nil {
		var pe *PrimeError
		if !errors.As(err, &pe) {
			break
		}
		if pe.Step != "" {
			step = pe.Step
		}
		err = pe.Cause
	}

	return step
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error at a level chosen by its type.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var pe *PrimeError
	if !errors.As(err, &pe) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch pe.Type {
	case ErrorTypeBuild:
		h.logger.Error(ctx, err, "Build error occurred",
			"type", pe.Type,
			"code", pe.Code,
			"step", StepOf(err))
	case ErrorTypeValidation:
		h.logger.Warn(ctx, err, "Validation error occurred",
			"type", pe.Type,
			"code", pe.Code)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", pe.Type,
			"code", pe.Code,
			"path", pe.Path)
	}
}

// Common error codes.
const (
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeStepFailed       = "ERR_STEP_FAILED"
	ErrCodeCommandFailed    = "ERR_COMMAND_FAILED"
	ErrCodeTaskNotFound     = "ERR_TASK_NOT_FOUND"
	ErrCodeInventoryLoad    = "ERR_INVENTORY_LOAD"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeImageOptimize    = "ERR_IMAGE_OPTIMIZE"
	ErrCodeInternalError    = "ERR_INTERNAL"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string) *PrimeError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
}

// ErrPathTraversal creates a path traversal error.
func ErrPathTraversal(path string) *PrimeError {
	return NewValidationError(ErrCodePathTraversal, "path traversal attempt: "+path)
}

// ErrTaskNotFound creates an unknown task error.
func ErrTaskNotFound(name string) *PrimeError {
	return NewValidationError(ErrCodeTaskNotFound, "task not found: "+name)
}

// ErrStepFailed creates a build failure error for a named step.
func ErrStepFailed(step string, cause error) *PrimeError {
	return NewBuildError(ErrCodeStepFailed, "step failed", cause).WithStep(step)
}

// ErrCommandFailed creates an error for an external command that did not succeed.
func ErrCommandFailed(commandLine string, exitCode int, cause error) *PrimeError {
	return NewBuildError(
		ErrCodeCommandFailed,
		fmt.Sprintf("command %q exited with code %d", commandLine, exitCode),
		cause,
	).WithContext("command", commandLine).WithContext("exit_code", exitCode)
}

// ErrInventoryLoad creates an inventory load error.
func ErrInventoryLoad(path string, cause error) *PrimeError {
	return NewIOError(ErrCodeInventoryLoad, "failed to load inventory", cause).WithPath(path)
}
