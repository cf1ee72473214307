package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these map to specific HTTP responses
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("current password is incorrect")

	// Token errors
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenAbsent  = errors.New("no token present")

	// Throttling
	ErrTooManyAttempts = errors.New("too many attempts")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")
)

// Kind discriminates the failure classes of a remote provider call.
type Kind string

const (
	// KindTransport covers network, DNS and timeout failures before any
	// HTTP response was received.
	KindTransport Kind = "transport"
	// KindProtocol is a non-2xx HTTP status with a parsed provider error body.
	KindProtocol Kind = "protocol"
	// KindMalformed is a 2xx response whose body could not be decoded.
	// Treated as failure, never success.
	KindMalformed Kind = "malformed_response"
	// KindRejected is a structurally successful response that fails an
	// application-level acceptance check (e.g. the token-validate code).
	KindRejected Kind = "validation_rejected"
)

// APIError is the typed error surfaced by the gateway clients. Code and
// Message prefer the provider's own values when the error body parses;
// otherwise the client fills in a fallback.
type APIError struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// NewAPIError creates a typed gateway error.
func NewAPIError(kind Kind, code, message string, status int) *APIError {
	return &APIError{Kind: kind, Code: code, Message: message, Status: status}
}

// AsAPIError unwraps err to an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
