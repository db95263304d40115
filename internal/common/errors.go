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

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported file type")
)

// Error codes carried by AppError for collaborator failures. The pipeline maps
// these onto per-document outcomes.
const (
	CodeInfer      = "INFER_ERROR"      // schema inference failed (fatal to the run)
	CodePreprocess = "PREPROCESS_ERROR" // document loading failed
	CodeExtract    = "EXTRACT_ERROR"    // LLM extraction call failed
	CodeConfig     = "CONFIG_ERROR"
	CodeDatabase   = "DB_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

