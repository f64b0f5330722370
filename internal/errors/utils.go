package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a PrimeError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *PrimeError {
	if err == nil {
		return nil
	}

	// Keep the location fields of an existing PrimeError.
	var pe *PrimeError
	if errors.As(err, &pe) {
		return &PrimeError{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   pe,
			Context: pe.Context,
			Step:    pe.Step,
			Path:    pe.Path,
		}
	}

	return &PrimeError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error with path context
func WrapIO(err error, code, message, path string) *PrimeError {
	pe := Wrap(err, ErrorTypeIO, code, message)
	if pe != nil {
		pe.Path = path
	}
	return pe
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *PrimeError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// FormatError formats an error for CLI output with its code and context
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var pe *PrimeError
	if !errors.As(err, &pe) {
		return err.Error()
	}

	result := fmt.Sprintf("%s error: %s", pe.Type, pe.Error())
	for k, v := range pe.Context {
		result += fmt.Sprintf("\n  %s: %v", k, v)
	}
	return result
}
