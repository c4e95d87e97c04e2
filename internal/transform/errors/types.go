// Package errors defines the error taxonomy for the transformation service
// client. It classifies failures into the recoverable authorization class
// (access denied, invalid credential grant), throttling, and terminal
// service errors, so callers can apply the single refresh-and-retry policy
// without depending on exception hierarchies.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType categorizes transformation client failures.
// Types determine whether a failure is recoverable through a credential
// refresh, worth a throttling backoff, or terminal for the poll loop.
type ErrorType string

const (
	// ErrorTypeAccessDenied indicates the service rejected the request's
	// credentials (recoverable once via token refresh).
	ErrorTypeAccessDenied ErrorType = "access_denied"

	// ErrorTypeInvalidGrant indicates the credential grant used to mint
	// the token is no longer valid (recoverable once via token refresh).
	ErrorTypeInvalidGrant ErrorType = "invalid_grant"

	// ErrorTypeThrottling indicates the service is shedding load.
	ErrorTypeThrottling ErrorType = "throttling"

	// ErrorTypeTimeout indicates request timeout or deadline exceeded.
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeNetwork indicates network connectivity issues.
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeService indicates a server-side failure from the
	// transformation service.
	ErrorTypeService ErrorType = "service"

	// ErrorTypeValidation indicates input validation failed (terminal).
	ErrorTypeValidation ErrorType = "validation_failed"

	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Common transformation client errors.
var (
	// ErrJobNotFound indicates the service has no record of the job.
	ErrJobNotFound = errors.New("transformation job not found")

	// ErrPlanUnavailable indicates the plan was requested before the
	// service produced one.
	ErrPlanUnavailable = errors.New("transformation plan unavailable")

	// ErrTokenRefreshFailed indicates the credential refresh capability
	// itself failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrRetryAfterRefreshFailed indicates the query retried after a
	// successful token refresh still failed; the failure is terminal.
	ErrRetryAfterRefreshFailed = errors.New("request failed after token refresh")
)

// AccessDeniedError reports that the service rejected the request's
// credentials. One token refresh followed by a single retry is the only
// sanctioned recovery.
type AccessDeniedError struct {
	Operation string `json:"operation"` // Client operation that was denied
	Message   string `json:"message"`
}

// Error returns the formatted access-denied message with operation context.
func (e *AccessDeniedError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("access denied during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("access denied: %s", e.Message)
}

// InvalidGrantError reports that the credential grant backing the current
// token is no longer valid, typically because the token expired or was
// revoked between polls.
type InvalidGrantError struct {
	Message string `json:"message"`
}

// Error returns the formatted invalid-grant message.
func (e *InvalidGrantError) Error() string {
	return fmt.Sprintf("invalid credential grant: %s", e.Message)
}

// ThrottlingError reports that the service is shedding load and includes
// the service's retry guidance when available.
type ThrottlingError struct {
	Operation  string `json:"operation"`
	RetryAfter int    `json:"retry_after"` // Seconds to wait before retry
}

// Error returns the formatted throttling message with retry guidance.
func (e *ThrottlingError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("throttled during %s, retry after %d seconds", e.Operation, e.RetryAfter)
	}
	return fmt.Sprintf("throttled during %s", e.Operation)
}

// GetRetryAfter returns the service's recommended wait before retrying.
func (e *ThrottlingError) GetRetryAfter() time.Duration {
	if e.RetryAfter > 0 {
		return time.Duration(e.RetryAfter) * time.Second
	}
	return 0
}

// ServiceError captures structured error responses from the transformation
// service, including HTTP status codes and service error codes.
type ServiceError struct {
	Operation  string    `json:"operation"`
	StatusCode int       `json:"status_code"`
	Code       string    `json:"code"` // Service error code, e.g. "AccessDeniedException"
	Message    string    `json:"message"`
	Type       ErrorType `json:"type"`
}

// Error returns the formatted service error with status code context.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("transformation service error during %s (status %d): %s", e.Operation, e.StatusCode, e.Message)
}

// IsRecoverableAuth reports whether the error belongs to the authorization
// class recoverable via a single token refresh.
func (e *ServiceError) IsRecoverableAuth() bool {
	return e.Type == ErrorTypeAccessDenied || e.Type == ErrorTypeInvalidGrant
}

// TransformError provides classified error context for tracking operations.
// It mirrors the structure surfaced to workflows: classification, message,
// service error code, recoverability, and structured details.
type TransformError struct {
	Type        ErrorType      `json:"type"`        // Error classification
	Message     string         `json:"message"`     // Human-readable message
	Code        string         `json:"code"`        // Service-specific error code
	Recoverable bool           `json:"recoverable"` // Whether a token refresh may recover it
	Details     map[string]any `json:"details"`     // Additional context
	Cause       error          `json:"-"`           // Underlying error
}

// Error returns the formatted error string with type and code context.
func (e *TransformError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *TransformError) Unwrap() error { return e.Cause }

// ShouldRetry reports whether a fresh attempt of the whole operation may
// succeed. The authorization class is excluded: it already consumed its
// single refresh-and-retry inside the poll loop.
func (e *TransformError) ShouldRetry() bool {
	switch e.Type {
	case ErrorTypeThrottling, ErrorTypeTimeout, ErrorTypeNetwork, ErrorTypeService:
		return true
	default:
		return false
	}
}

// IsRecoverableAuthError reports whether the error belongs to the
// authorization class (access denied or invalid credential grant) that the
// poll loop recovers from with exactly one token refresh and retry.
func IsRecoverableAuthError(err error) bool {
	if err == nil {
		return false
	}

	var accessErr *AccessDeniedError
	if errors.As(err, &accessErr) {
		return true
	}

	var grantErr *InvalidGrantError
	if errors.As(err, &grantErr) {
		return true
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.IsRecoverableAuth()
	}

	var tErr *TransformError
	if errors.As(err, &tErr) {
		return tErr.Type == ErrorTypeAccessDenied || tErr.Type == ErrorTypeInvalidGrant
	}

	return false
}

// StatusCodeErrorType maps an HTTP status code and service error code to an
// ErrorType. The service reports the authorization class both as 403s and
// as OAuth-style invalid_grant payloads on 400s.
func StatusCodeErrorType(statusCode int, code string) ErrorType {
	switch {
	case statusCode == http.StatusForbidden || code == "AccessDeniedException":
		return ErrorTypeAccessDenied
	case code == "invalid_grant" || code == "InvalidGrantException":
		return ErrorTypeInvalidGrant
	case statusCode == http.StatusTooManyRequests || code == "ThrottlingException":
		return ErrorTypeThrottling
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return ErrorTypeTimeout
	case statusCode >= 500:
		return ErrorTypeService
	case statusCode == http.StatusBadRequest:
		return ErrorTypeValidation
	default:
		return ErrorTypeUnknown
	}
}
