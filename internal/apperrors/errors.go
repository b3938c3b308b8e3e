package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the principal may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates that no principal could be resolved.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInsufficientFunds indicates that an expense would drive the balance negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInternal is returned to callers in place of infrastructure details.
var ErrInternal = errors.New("internal error")

// AppError wraps an infrastructure failure with an HTTP-ish status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// InsufficientFundsError carries the balance that was available when the write was refused.
type InsufficientFundsError struct {
	Available decimal.Decimal
}

// NewInsufficientFundsError creates an InsufficientFundsError.
func NewInsufficientFundsError(available decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{Available: available}
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: available balance is %s", ErrInsufficientFunds, e.Available.StringFixed(2))
}

// Is lets errors.Is(err, ErrInsufficientFunds) match.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// ValidationError names the offending field and the rule it broke.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsDomainError reports whether err is an expected outcome rather than an infrastructure failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrDuplicate)
}
