package engine

import (
	"errors"
	"fmt"
)

// ExecutionError reports a failure while an engine runs a plan.
type ExecutionError struct {
	// Code identifies the error category.
	Code ExecutionErrorCode

	// Engine names the engine that failed.
	Engine string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ExecutionErrorCode categorizes execution errors.
type ExecutionErrorCode string

const (
	// ErrCodeInvalidPlan indicates the plan failed validation.
	ErrCodeInvalidPlan ExecutionErrorCode = "INVALID_PLAN"

	// ErrCodeCanceled indicates the context was canceled mid-execution.
	ErrCodeCanceled ExecutionErrorCode = "CANCELED"

	// ErrCodeBackend indicates the storage backend failed.
	ErrCodeBackend ExecutionErrorCode = "BACKEND"
)

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s engine: %s: %v", e.Code, e.Engine, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s engine: %s", e.Code, e.Engine, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsCanceled returns true if execution stopped because its context ended.
// Uses errors.As to handle wrapped errors.
func IsCanceled(err error) bool {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeCanceled
	}
	return false
}

// IsInvalidPlan returns true if the engine rejected the plan itself.
func IsInvalidPlan(err error) bool {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeInvalidPlan
	}
	return false
}

func newInvalidPlan(engine string, err error) *ExecutionError {
	return &ExecutionError{Code: ErrCodeInvalidPlan, Engine: engine, Message: "plan rejected", Err: err}
}

func newCanceled(engine string, err error) *ExecutionError {
	return &ExecutionError{Code: ErrCodeCanceled, Engine: engine, Message: "execution canceled", Err: err}
}

func newBackend(engine, message string, err error) *ExecutionError {
	return &ExecutionError{Code: ErrCodeBackend, Engine: engine, Message: message, Err: err}
}
