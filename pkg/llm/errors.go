package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes AI extraction failures.
type ErrorType string

const (
	ErrorTypeEndpoint ErrorType = "endpoint" // unreachable or 5xx
	ErrorTypeAuth     ErrorType = "auth"     // bad or missing API key
	ErrorTypeModel    ErrorType = "model"    // unknown model
	ErrorTypeParse    ErrorType = "parse"    // response was not usable JSON
	ErrorTypeTimeout  ErrorType = "timeout"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error is a typed AI client error carrying retryability.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the interface pkg/retry probes for.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a typed AI error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{Type: errType, Message: message, Retryable: retryable, Cause: cause}
}

// classifyAPIError maps a transport error onto a typed Error. Rate
// limits and server errors are retryable; auth and model errors are not.
func classifyAPIError(err error) *Error {
	message := err.Error()
	switch {
	case strings.Contains(message, "401"), strings.Contains(message, "403"):
		return NewError(ErrorTypeAuth, "authentication failed", false, err)
	case strings.Contains(message, "404"), strings.Contains(strings.ToLower(message), "model"):
		return NewError(ErrorTypeModel, "model not available", false, err)
	case strings.Contains(message, "429"):
		return NewError(ErrorTypeUnknown, "rate limited", true, err)
	case strings.Contains(message, "500"), strings.Contains(message, "502"),
		strings.Contains(message, "503"), strings.Contains(message, "504"):
		return NewError(ErrorTypeEndpoint, "server error", true, err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrorTypeTimeout, "request timed out", true, err)
	default:
		return NewError(ErrorTypeUnknown, "request failed", true, err)
	}
}
