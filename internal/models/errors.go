package models

import (
	"errors"
	"fmt"

	"golfpulse/pkg/contracts/domain"
)

// ErrorType classifies errors raised while assembling model records.
type ErrorType string

const (
	// ErrorTypeValidation indicates a bad run request or configuration.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeInput indicates the snapshot holds nothing to build from.
	ErrorTypeInput ErrorType = "input"
	// ErrorTypeGapping indicates the gapping engine rejected a session.
	ErrorTypeGapping ErrorType = "gapping"
	// ErrorTypeBuild indicates a payload could not be assembled.
	ErrorTypeBuild ErrorType = "build"
	// ErrorTypeCancellation indicates the run context was cancelled.
	ErrorTypeCancellation ErrorType = "cancellation"
)

// ModelError describes a failure while assembling one model record.
// Degraded errors mark records that are still emitted, with a degraded
// status and the reason attached, instead of being dropped from the run.
type ModelError struct {
	Type     ErrorType              `json:"type"`
	Model    domain.ModelLetter     `json:"model,omitempty"`
	Scope    domain.ModelScope      `json:"scope,omitempty"`
	Player   string                 `json:"player,omitempty"`
	Message  string                 `json:"message"`
	Cause    error                  `json:"-"`
	Context  map[string]interface{} `json:"context,omitempty"`
	Degraded bool                   `json:"degraded"`
}

// Error implements the error interface
func (e *ModelError) Error() string {
	if e == nil {
		return "unknown model error"
	}
	if e.Model != "" && e.Player != "" {
		return fmt.Sprintf("[%s] %s %s: %s", e.Type, e.Model, e.Player, e.Message)
	}
	if e.Model != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Model, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error
func NewValidationError(message string) *ModelError {
	return &ModelError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInputError creates an error for a snapshot the run cannot work on
func NewInputError(message string, cause error) *ModelError {
	return &ModelError{
		Type:    ErrorTypeInput,
		Message: message,
		Cause:   cause,
	}
}

// NewGappingError wraps a gapping engine failure for one player session.
// Gapping failures degrade the H-series records rather than drop them.
func NewGappingError(model domain.ModelLetter, player string, cause error) *ModelError {
	msg := "gapping failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &ModelError{
		Type:     ErrorTypeGapping,
		Model:    model,
		Scope:    domain.ScopeStudent,
		Player:   player,
		Message:  msg,
		Cause:    cause,
		Degraded: true,
	}
}

// NewBuildError creates an error for a payload that could not be assembled
func NewBuildError(model domain.ModelLetter, scope domain.ModelScope, player, message string, cause error) *ModelError {
	return &ModelError{
		Type:    ErrorTypeBuild,
		Model:   model,
		Scope:   scope,
		Player:  player,
		Message: message,
		Cause:   cause,
	}
}

// NewCancellationError creates a cancellation error
func NewCancellationError(message string) *ModelError {
	return &ModelError{
		Type:    ErrorTypeCancellation,
		Message: message,
	}
}

// IsDegraded checks if an error degrades a record instead of dropping it
func IsDegraded(err error) bool {
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		return modelErr.Degraded
	}
	return false
}

// GetErrorType returns the error type of an error
func GetErrorType(err error) ErrorType {
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		return modelErr.Type
	}
	return ErrorTypeBuild
}

// WrapError wraps an error with model assembly context
func WrapError(err error, model domain.ModelLetter, player, message string) *ModelError {
	if err == nil {
		return nil
	}

	// If it's already a ModelError, enhance it
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		if modelErr.Model == "" {
			modelErr.Model = model
		}
		if modelErr.Player == "" {
			modelErr.Player = player
		}
		if message != "" {
			modelErr.Message = fmt.Sprintf("%s: %s", message, modelErr.Message)
		}
		return modelErr
	}

	// Otherwise, wrap it as a build error
	return &ModelError{
		Type:    ErrorTypeBuild,
		Model:   model,
		Player:  player,
		Message: message,
		Cause:   err,
	}
}

// ErrorList collects the errors of one assembly run
type ErrorList struct {
	Errors []*ModelError `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("multiple errors: %d errors occurred", len(e.Errors))
}

// Add appends an error to the list
func (e *ErrorList) Add(err *ModelError) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// GetByModel returns all errors for a specific model letter
func (e *ErrorList) GetByModel(model domain.ModelLetter) []*ModelError {
	var result []*ModelError
	for _, err := range e.Errors {
		if err.Model == model {
			result = append(result, err)
		}
	}
	return result
}

// GetByPlayer returns all errors for a specific player
func (e *ErrorList) GetByPlayer(player string) []*ModelError {
	var result []*ModelError
	for _, err := range e.Errors {
		if err.Player == player {
			result = append(result, err)
		}
	}
	return result
}

// Common model assembly errors
var (
	// ErrNoPlayers indicates a session date no player resolves to
	ErrNoPlayers = errors.New("no players have shots on the requested date")

	// ErrNoSessionDates indicates an empty snapshot was handed to a run
	ErrNoSessionDates = errors.New("snapshot holds no session dates")

	// ErrNilSnapshot indicates a run without a Base snapshot
	ErrNilSnapshot = errors.New("base snapshot is nil")
)
