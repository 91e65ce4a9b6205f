package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Callers branch with errors.Is; the user-facing
// copy for each class lives in the constants package.
var (
	// Acquisition
	ErrAcquisitionCancelled = errors.New("acquisition cancelled")
	ErrAcquisitionBusy      = errors.New("acquisition already in flight")

	// Extraction. Both collapse to the same remediation message; the
	// distinction exists only for diagnostics.
	ErrLowConfidence = errors.New("no usable text recognized")
	ErrEngineFailure = errors.New("recognition engine failure")

	// Normalization
	ErrCodeTooShort = errors.New("code too short")

	// Confirmation
	ErrEmptyCode      = errors.New("empty code")
	ErrVerifyInFlight = errors.New("verification already in flight")

	// Verification. Transport covers connectivity and non-2xx responses;
	// UnknownStatus is a well-formed response this client cannot interpret.
	ErrTransport     = errors.New("transport failure")
	ErrUnknownStatus = errors.New("unknown verification status")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
