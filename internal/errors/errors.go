// Package errors provides custom error types for the Altvest API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrInvalidRole    = &AppError{Code: "INVALID_ROLE", Message: "Role must be one of the defined role codes", StatusCode: http.StatusBadRequest}
)

// Structure errors.
var (
	ErrStructureNotFound    = &AppError{Code: "STRUCTURE_NOT_FOUND", Message: "Structure not found", StatusCode: http.StatusNotFound}
	ErrParentNotFound       = &AppError{Code: "PARENT_NOT_FOUND", Message: "Parent structure not found", StatusCode: http.StatusNotFound}
	ErrMaxDepthExceeded     = &AppError{Code: "MAX_DEPTH_EXCEEDED", Message: "Structure hierarchy cannot exceed five levels", StatusCode: http.StatusBadRequest}
	ErrStructureHasChildren = &AppError{Code: "STRUCTURE_HAS_CHILDREN", Message: "Structure has child structures", StatusCode: http.StatusConflict}
	ErrDuplicateGrant       = &AppError{Code: "DUPLICATE_GRANT", Message: "User already has a grant on this structure", StatusCode: http.StatusConflict}
	ErrGrantNotFound        = &AppError{Code: "GRANT_NOT_FOUND", Message: "Grant not found", StatusCode: http.StatusNotFound}
	ErrDuplicateInvestor    = &AppError{Code: "DUPLICATE_INVESTOR", Message: "User is already an investor in this structure", StatusCode: http.StatusConflict}
	ErrInvestorLinkNotFound = &AppError{Code: "INVESTOR_LINK_NOT_FOUND", Message: "Investor link not found", StatusCode: http.StatusNotFound}
)

// Investment errors.
var (
	ErrInvestmentNotFound = &AppError{Code: "INVESTMENT_NOT_FOUND", Message: "Investment not found", StatusCode: http.StatusNotFound}
	ErrInvestmentExited   = &AppError{Code: "INVESTMENT_EXITED", Message: "Investment has already been exited", StatusCode: http.StatusConflict}
)
