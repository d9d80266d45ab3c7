// Package errors provides custom error types for the ledger API.
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

// Is matches AppErrors by code, so a wrapped or re-messaged sentinel still
// satisfies errors.Is against the original sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

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

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrRouteNotFound  = &AppError{Code: "ROUTE_NOT_FOUND", Message: "Route not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Directory errors.
var (
	ErrPersonNotFound = &AppError{Code: "PERSON_NOT_FOUND", Message: "Person not found", StatusCode: http.StatusNotFound}
	ErrWalletNotFound = &AppError{Code: "WALLET_NOT_FOUND", Message: "Wallet not found", StatusCode: http.StatusNotFound}
	ErrDuplicateName  = &AppError{Code: "DUPLICATE_NAME", Message: "A record with this name already exists", StatusCode: http.StatusConflict}
)

// Period errors.
var (
	ErrPeriodNotFound  = &AppError{Code: "PERIOD_NOT_FOUND", Message: "No period contains the given date", StatusCode: http.StatusNotFound}
	ErrInvalidPeriod   = &AppError{Code: "INVALID_INPUT", Message: "Start date must be before end date", StatusCode: http.StatusBadRequest}
	ErrPeriodInUse     = &AppError{Code: "PERIOD_IN_USE", Message: "Period has obligations referencing it", StatusCode: http.StatusConflict}
	ErrAmbiguousPeriod = &AppError{Code: "AMBIGUOUS_PERIOD", Message: "More than one period contains the given date", StatusCode: http.StatusConflict}
)

// Obligation errors.
var (
	ErrObligationNotFound = &AppError{Code: "OBLIGATION_NOT_FOUND", Message: "Obligation not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrNoFieldsToUpdate    = &AppError{Code: "INVALID_INPUT", Message: "No fields to update", StatusCode: http.StatusBadRequest}
)
