package errors

import (
	"context"
	"errors"
	"strings"
)

// ClassifyTransformError transforms client operation errors into a
// TransformError with recovery guidance. Examines error types, sentinel
// errors, and message patterns to determine classification.
func ClassifyTransformError(err error) *TransformError {
	if err == nil {
		return nil
	}

	if tErr := classifyTypedErrors(err); tErr != nil {
		return tErr
	}

	if tErr := classifySentinelErrors(err); tErr != nil {
		return tErr
	}

	return classifyStringPatternErrors(err)
}

// classifyTypedErrors handles strongly-typed error classification.
func classifyTypedErrors(err error) *TransformError {
	var tErr *TransformError
	if errors.As(err, &tErr) {
		return tErr
	}

	var accessErr *AccessDeniedError
	if errors.As(err, &accessErr) {
		return &TransformError{
			Type:        ErrorTypeAccessDenied,
			Message:     accessErr.Message,
			Code:        "ACCESS_DENIED",
			Recoverable: true,
			Details:     map[string]any{"operation": accessErr.Operation},
			Cause:       err,
		}
	}

	var grantErr *InvalidGrantError
	if errors.As(err, &grantErr) {
		return &TransformError{
			Type:        ErrorTypeInvalidGrant,
			Message:     grantErr.Message,
			Code:        "INVALID_GRANT",
			Recoverable: true,
			Cause:       err,
		}
	}

	var throttleErr *ThrottlingError
	if errors.As(err, &throttleErr) {
		return &TransformError{
			Type:        ErrorTypeThrottling,
			Message:     throttleErr.Error(),
			Code:        "THROTTLING",
			Recoverable: false,
			Details: map[string]any{
				"operation":   throttleErr.Operation,
				"retry_after": throttleErr.RetryAfter,
			},
			Cause: err,
		}
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return &TransformError{
			Type:        svcErr.Type,
			Message:     svcErr.Message,
			Code:        svcErr.Code,
			Recoverable: svcErr.IsRecoverableAuth(),
			Details: map[string]any{
				"operation":   svcErr.Operation,
				"status_code": svcErr.StatusCode,
			},
			Cause: err,
		}
	}

	return nil
}

// classifySentinelErrors handles sentinel error classification using errors.Is.
func classifySentinelErrors(err error) *TransformError {
	switch {
	case errors.Is(err, ErrJobNotFound):
		return &TransformError{
			Type:        ErrorTypeValidation,
			Message:     err.Error(),
			Code:        "JOB_NOT_FOUND",
			Recoverable: false,
			Cause:       err,
		}
	case errors.Is(err, ErrPlanUnavailable):
		return &TransformError{
			Type:        ErrorTypeValidation,
			Message:     err.Error(),
			Code:        "PLAN_UNAVAILABLE",
			Recoverable: false,
			Cause:       err,
		}
	case errors.Is(err, ErrTokenRefreshFailed), errors.Is(err, ErrRetryAfterRefreshFailed):
		return &TransformError{
			Type:        ErrorTypeAccessDenied,
			Message:     err.Error(),
			Code:        "AUTH_RETRY_EXHAUSTED",
			Recoverable: false,
			Cause:       err,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &TransformError{
			Type:        ErrorTypeTimeout,
			Message:     "request deadline exceeded",
			Code:        "TIMEOUT",
			Recoverable: false,
			Cause:       err,
		}
	}

	return nil
}

// classifyStringPatternErrors handles untyped error classification through
// message pattern matching.
func classifyStringPatternErrors(err error) *TransformError {
	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "access denied") || strings.Contains(errMsg, "accessdeniedexception"):
		return &TransformError{
			Type:        ErrorTypeAccessDenied,
			Message:     "Access denied",
			Code:        "ACCESS_DENIED",
			Recoverable: true,
			Details:     map[string]any{"original_error": err.Error()},
			Cause:       err,
		}
	case strings.Contains(errMsg, "invalid_grant") || strings.Contains(errMsg, "invalid grant"):
		return &TransformError{
			Type:        ErrorTypeInvalidGrant,
			Message:     "Invalid credential grant",
			Code:        "INVALID_GRANT",
			Recoverable: true,
			Details:     map[string]any{"original_error": err.Error()},
			Cause:       err,
		}
	case strings.Contains(errMsg, "throttl") || strings.Contains(errMsg, "too many requests"):
		return &TransformError{
			Type:        ErrorTypeThrottling,
			Message:     "Request throttled",
			Code:        "THROTTLING",
			Recoverable: false,
			Details:     map[string]any{"original_error": err.Error()},
			Cause:       err,
		}
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline"):
		return &TransformError{
			Type:        ErrorTypeTimeout,
			Message:     "Request timeout",
			Code:        "TIMEOUT",
			Recoverable: false,
			Details:     map[string]any{"original_error": err.Error()},
			Cause:       err,
		}
	case strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection"):
		return &TransformError{
			Type:        ErrorTypeNetwork,
			Message:     "Network error",
			Code:        "NETWORK_ERROR",
			Recoverable: false,
			Details:     map[string]any{"original_error": err.Error()},
			Cause:       err,
		}
	default:
		return &TransformError{
			Type:        ErrorTypeUnknown,
			Message:     "Unknown error",
			Code:        "UNKNOWN",
			Recoverable: false,
			Details:     map[string]any{"original_error": err.Error()},
			Cause:       err,
		}
	}
}
