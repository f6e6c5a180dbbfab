package errors

import (
	"context"
	"errors"
)

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsWalletMissing checks if an error means no wallet provider is present.
func IsWalletMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrWalletMissing)
}

// IsWalletError checks if an error is any wallet error (missing or rejected).
func IsWalletError(err error) bool {
	if err == nil {
		return false
	}

	var walletErr *WalletError
	return errors.As(err, &walletErr) || errors.Is(err, ErrWalletMissing)
}

// IsTransaction checks if an error is a failed contract call or transaction.
func IsTransaction(err error) bool {
	if err == nil {
		return false
	}

	var txErr *TransactionError
	return errors.As(err, &txErr)
}

// IsStorage checks if an error is a storage gateway failure.
func IsStorage(err error) bool {
	if err == nil {
		return false
	}

	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// IsTimeout checks if an error indicates a timeout, including context deadlines.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr) || errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}

	switch {
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case IsTimeout(err):
		return CodeTimeout
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrWalletMissing):
		return CodeWalletMissing
	case errors.Is(err, ErrNoAccount):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}

// GetErrorMessage extracts a human-readable message from an error.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Message()
	}

	return err.Error()
}

// Cause returns the underlying cause of an error.
// It unwraps the error chain until it finds the root cause.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		underlying := unwrapper.Unwrap()
		if underlying == nil {
			return err
		}
		err = underlying
	}
}
