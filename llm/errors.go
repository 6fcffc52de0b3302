package llm

import (
	"errors"
	"fmt"
)

// ErrorType classifies an LLMError.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeProvider
	ErrorTypeRequest
	ErrorTypeResponse
	ErrorTypeAPI
	ErrorTypeRateLimit
	ErrorTypeAuthentication
	ErrorTypeInvalidInput
)

// LLMError is the error type returned by this package.
type LLMError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.TypeString(), e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

func (e *LLMError) TypeString() string {
	return e.Type.String()
}

var errorTypeNames = [...]string{
	ErrorTypeUnknown:        "UnknownError",
	ErrorTypeProvider:       "ProviderError",
	ErrorTypeRequest:        "RequestError",
	ErrorTypeResponse:       "ResponseError",
	ErrorTypeAPI:            "APIError",
	ErrorTypeRateLimit:      "RateLimitError",
	ErrorTypeAuthentication: "AuthenticationError",
	ErrorTypeInvalidInput:   "InvalidInputError",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return errorTypeNames[ErrorTypeUnknown]
	}
	return errorTypeNames[t]
}

// Retryable reports whether another attempt could succeed.
func (e *LLMError) Retryable() bool {
	switch e.Type {
	case ErrorTypeAuthentication, ErrorTypeInvalidInput:
		return false
	case ErrorTypeAPI:
		// Client errors other than throttling will not fix themselves.
		return e.StatusCode == 0 || e.StatusCode >= 500
	default:
		return true
	}
}

func NewLLMError(errType ErrorType, message string, err error) *LLMError {
	return &LLMError{Type: errType, Message: message, Err: err}
}

// IsErrorType reports whether err wraps an LLMError of the given type.
func IsErrorType(err error, errType ErrorType) bool {
	var llmErr *LLMError
	return errors.As(err, &llmErr) && llmErr.Type == errType
}
