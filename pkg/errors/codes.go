package errors

// Error codes for categorizing errors.
// These codes map to HTTP status codes where the gateway exposes them.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the operation was cancelled by the caller.
	CodeCancelled = "CANCELLED"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeUnauthorized indicates an account is required but none is connected.
	CodeUnauthorized = "UNAUTHORIZED"

	// CodeTimeout indicates an operation timed out.
	CodeTimeout = "TIMEOUT"

	// CodeServiceUnavailable indicates a downstream service is unavailable.
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// Marketplace-specific error codes

	// CodeWalletMissing indicates no wallet provider is present.
	CodeWalletMissing = "WALLET_MISSING"

	// CodeWalletRejected indicates the wallet refused to authorize an account.
	CodeWalletRejected = "WALLET_REJECTED"

	// CodeTransactionFailed indicates a contract call or transaction failed.
	CodeTransactionFailed = "TRANSACTION_FAILED"

	// CodeStorageError indicates an upload or fetch against the storage gateway failed.
	CodeStorageError = "STORAGE_ERROR"
)
