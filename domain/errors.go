package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeInvalid         ErrorCode = "INVALID"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeInternal        ErrorCode = "INTERNAL"
)

// Reasons refine an ErrorCode so callers can tell apart failures of the same category.
const (
	ReasonEventNotFound          = "EVENT_NOT_FOUND"
	ReasonUserNotFound           = "USER_NOT_FOUND"
	ReasonAlreadyRegistered      = "ALREADY_REGISTERED"
	ReasonEventFull              = "EVENT_FULL"
	ReasonEmailTaken             = "EMAIL_TAKEN"
	ReasonForbiddenAdminDeletion = "FORBIDDEN_ADMIN_DELETION"
	ReasonCredentialMissing      = "CREDENTIAL_MISSING"
	ReasonTokenMalformed         = "TOKEN_MALFORMED"
	ReasonTokenSignatureInvalid  = "TOKEN_SIGNATURE_INVALID"
	ReasonTokenExpired           = "TOKEN_EXPIRED"
	ReasonNoSuchUser             = "NO_SUCH_USER"
	ReasonInvalidCredentials     = "INVALID_CREDENTIALS"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Kind returns the most specific classification available: the reason when set, otherwise the code.
func (e *Error) Kind() string {
	if e == nil {
		return ""
	}
	if e.Reason != "" {
		return e.Reason
	}
	return string(e.Code)
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewReasonError builds a domain error refined by a reason.
func NewReasonError(code ErrorCode, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound           = NewReasonError(ErrCodeNotFound, ReasonUserNotFound, "user not found")
	ErrEventNotFound          = NewReasonError(ErrCodeNotFound, ReasonEventNotFound, "event not found")
	ErrAlreadyRegistered      = NewReasonError(ErrCodeConflict, ReasonAlreadyRegistered, "already registered for this event")
	ErrEventFull              = NewReasonError(ErrCodeConflict, ReasonEventFull, "event is full")
	ErrEmailTaken             = NewReasonError(ErrCodeConflict, ReasonEmailTaken, "email already in use")
	ErrForbidden              = NewError(ErrCodeForbidden, "not authorized")
	ErrForbiddenAdminDeletion = NewReasonError(ErrCodeForbidden, ReasonForbiddenAdminDeletion, "admin users cannot be deleted")
	ErrUnauthorized           = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidCredentials     = NewReasonError(ErrCodeUnauthorized, ReasonInvalidCredentials, "invalid credentials")
	ErrTooManyAttempts        = NewError(ErrCodeTooManyRequests, "too many login attempts")
	ErrInvalidPayload         = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// HasReason reports whether err is a domain error carrying the given reason.
func HasReason(err error, reason string) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Reason == reason
	}
	return false
}

// ValidationError reports a malformed or missing input field.
func ValidationError(format string, args ...interface{}) *Error {
	return NewError(ErrCodeInvalid, fmt.Sprintf(format, args...))
}
