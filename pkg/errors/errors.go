package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors for quick checks
var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")

	// ErrWalletMissing is returned when no wallet provider is configured.
	ErrWalletMissing = errors.New("no wallet found")

	// ErrNoAccount is returned when an action needs a connected account.
	ErrNoAccount = errors.New("no connected account")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timeout")
)

// Error is the base interface for all custom errors in the client.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// ValidationError represents an input validation error, such as a missing
// listing field or a malformed price.
type ValidationError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	*BaseError
	Resource string
	ID       string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		BaseError: &BaseError{
			code:    CodeNotFound,
			message: fmt.Sprintf("%s not found", resource),
		},
		Resource: resource,
		ID:       id,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// WalletError represents a missing wallet or a refused authorization.
type WalletError struct {
	*BaseError
	Provider string
}

// NewWalletMissingError reports that no wallet provider is present.
func NewWalletMissingError() *WalletError {
	return &WalletError{
		BaseError: &BaseError{
			code:    CodeWalletMissing,
			message: "no wallet found",
			cause:   ErrWalletMissing,
		},
	}
}

// NewWalletRejectedError reports that the wallet refused to hand out an account.
func NewWalletRejectedError(provider string, cause error) *WalletError {
	return &WalletError{
		BaseError: &BaseError{
			code:    CodeWalletRejected,
			message: "wallet authorization failed",
			cause:   cause,
		},
		Provider: provider,
	}
}

// TransactionError represents a failed contract call or transaction.
type TransactionError struct {
	*BaseError
	Method string
	TxHash string
}

// NewTransactionError creates a new transaction error for a contract method.
func NewTransactionError(method string, cause error) *TransactionError {
	return &TransactionError{
		BaseError: &BaseError{
			code:    CodeTransactionFailed,
			message: fmt.Sprintf("%s failed", method),
			cause:   cause,
		},
		Method: method,
	}
}

// WithTxHash records the hash of the submitted transaction.
func (e *TransactionError) WithTxHash(hash string) *TransactionError {
	e.TxHash = hash
	return e
}

// StorageError represents a failed upload to, or fetch from, the storage gateway.
type StorageError struct {
	*BaseError
	Operation string
}

// NewStorageError creates a new storage error.
func NewStorageError(operation string, cause error) *StorageError {
	return &StorageError{
		BaseError: &BaseError{
			code:    CodeStorageError,
			message: fmt.Sprintf("storage %s failed", operation),
			cause:   cause,
		},
		Operation: operation,
	}
}

// InternalError represents an internal error.
type InternalError struct {
	*BaseError
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *InternalError {
	if message == "" {
		message = "internal error"
	}
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   cause,
		},
	}
}

// ServiceError represents a downstream service error (RPC node, gateway).
type ServiceError struct {
	*BaseError
	Service    string
	StatusCode int
}

// NewServiceError creates a new service error.
func NewServiceError(service, message string, statusCode int, cause error) *ServiceError {
	if message == "" {
		message = fmt.Sprintf("%s service error", service)
	}
	return &ServiceError{
		BaseError: &BaseError{
			code:    CodeServiceUnavailable,
			message: message,
			cause:   cause,
		},
		Service:    service,
		StatusCode: statusCode,
	}
}

// TimeoutError represents a timeout error.
type TimeoutError struct {
	*BaseError
	Operation string
	Duration  string
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(operation, duration string) *TimeoutError {
	message := "operation timeout"
	if operation != "" {
		message = fmt.Sprintf("%s timeout", operation)
	}
	return &TimeoutError{
		BaseError: &BaseError{
			code:    CodeTimeout,
			message: message,
			cause:   ErrTimeout,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the code
// and adds the cause chain. Otherwise, it creates an InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var e Error
	if errors.As(err, &e) {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
		}
	}

	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   err,
		},
	}
}

// New creates a new error with a message.
func New(message string) error {
	return &BaseError{
		code:    CodeInternal,
		message: message,
	}
}
