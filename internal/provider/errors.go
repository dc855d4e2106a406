package provider

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for common provider failures.
var (
	ErrContextLengthExceeded = errors.New("context length exceeded")
	ErrContentBlocked        = errors.New("content blocked by safety filters")
	ErrRateLimit             = errors.New("rate limit exceeded")
	ErrAuthentication        = errors.New("authentication failed")
	ErrNetwork               = errors.New("network error")
	ErrServiceUnavailable    = errors.New("service unavailable")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrMalformedResponse     = errors.New("malformed response")
	ErrMissingAPIKey         = errors.New("API key is required")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodePermission     ErrorCode = "permission_denied"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeTimeout        ErrorCode = "timeout"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeMalformed      ErrorCode = "malformed_response"
)

// ProviderError wraps errors with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Underlying error
	Retryable  bool
	RetryAfter *time.Duration
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// Is lets errors.Is match a ProviderError against the sentinel for its code.
func (e *ProviderError) Is(target error) bool {
	switch e.Code {
	case ErrorCodeContextLength:
		return target == ErrContextLengthExceeded
	case ErrorCodeContentBlocked:
		return target == ErrContentBlocked
	case ErrorCodeRateLimit:
		return target == ErrRateLimit
	case ErrorCodeAuth, ErrorCodePermission:
		return target == ErrAuthentication
	case ErrorCodeNetwork, ErrorCodeTimeout:
		return target == ErrNetwork
	case ErrorCodeUnavailable:
		return target == ErrServiceUnavailable
	case ErrorCodeInvalidRequest:
		return target == ErrInvalidRequest
	case ErrorCodeMalformed:
		return target == ErrMalformedResponse
	}
	return false
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// ErrorFromStatus maps an HTTP status code to a ProviderError.
// Both transport adapters share this table.
func ErrorFromStatus(status int, message string, underlying error) *ProviderError {
	pe := &ProviderError{
		Message:    message,
		StatusCode: status,
		Underlying: underlying,
	}
	switch {
	case status == http.StatusUnauthorized:
		pe.Code = ErrorCodeAuth
	case status == http.StatusForbidden:
		pe.Code = ErrorCodePermission
	case status == http.StatusTooManyRequests:
		pe.Code = ErrorCodeRateLimit
		pe.Retryable = true
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		pe.Code = ErrorCodeTimeout
		pe.Retryable = true
	case status == http.StatusRequestEntityTooLarge:
		pe.Code = ErrorCodeContextLength
	case status >= 500:
		pe.Code = ErrorCodeUnavailable
		pe.Retryable = true
	case status >= 400:
		pe.Code = ErrorCodeInvalidRequest
	default:
		pe.Code = ErrorCodeNetwork
		pe.Retryable = true
	}
	if pe.Message == "" {
		pe.Message = http.StatusText(status)
	}
	return pe
}

// NetworkError wraps a failure that happened before any HTTP status was received.
func NetworkError(err error) *ProviderError {
	return &ProviderError{
		Code:       ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}

// MalformedError reports a reply that could not be turned into a Response.
func MalformedError(message string) *ProviderError {
	return &ProviderError{
		Code:    ErrorCodeMalformed,
		Message: message,
	}
}
