package errors

import (
	"errors"
	"net/http"
)

// Domain errors. These are the expected, typed outcomes of state-machine
// operations; anything else reaching the HTTP layer is an internal error.
var (
	ErrNotFound             = errors.New("account not found")
	ErrAlreadyExists        = errors.New("account already exists")
	ErrWeakPassword         = errors.New("password does not meet policy")
	ErrInvalidCredentials   = errors.New("invalid login credentials")
	ErrUnverified           = errors.New("account is unverified")
	ErrAlreadyVerified      = errors.New("account already verified")
	ErrAlreadyScheduled     = errors.New("account already scheduled for deletion")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
)

// Error codes exposed to API clients
const (
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnverified         = "UNVERIFIED"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeAlreadyScheduled   = "ALREADY_SCHEDULED"
	CodeInvalidCode        = "INVALID_OR_EXPIRED_CODE"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternalError      = "INTERNAL_ERROR"
)

// AppError represents an application error with an HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadyExists, message, ErrAlreadyExists)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// FromDomain maps a domain sentinel to its API representation. Unknown
// errors map to an internal error so store and signer failures never
// masquerade as typed outcomes.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeAlreadyExists, "Account already exists", err)
	case errors.Is(err, ErrWeakPassword):
		return NewAppError(http.StatusBadRequest, CodeWeakPassword, "Password must be 8-128 characters and contain at least one number", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, "Account does not exist", err)
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid login credentials", err)
	case errors.Is(err, ErrUnverified):
		return NewAppError(http.StatusForbidden, CodeUnverified, "Account is unverified, kindly verify your email", err)
	case errors.Is(err, ErrAlreadyVerified):
		return NewAppError(http.StatusConflict, CodeAlreadyVerified, "Account is already verified", err)
	case errors.Is(err, ErrAlreadyScheduled):
		return NewAppError(http.StatusConflict, CodeAlreadyScheduled, "Account is already scheduled for deletion", err)
	case errors.Is(err, ErrInvalidOrExpiredCode):
		return NewAppError(http.StatusBadRequest, CodeInvalidCode, "Invalid or expired verification code", err)
	case errors.Is(err, ErrInvalidToken):
		return NewAppError(http.StatusBadRequest, CodeInvalidToken, "Invalid or expired token", err)
	case errors.Is(err, ErrInvalidInput):
		return NewAppError(http.StatusBadRequest, CodeBadRequest, "Invalid input", err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, "Forbidden", err)
	default:
		return InternalError(err)
	}
}
