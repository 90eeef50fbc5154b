package apperrors

import (
	"errors"
)

// --- Standard Error Definitions ---

// These sentinel errors define common application-level error conditions.
// They are wrapped with fmt.Errorf and %w at call sites and checked with
// errors.Is (or the helpers below).
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation indicates failure during data validation.
	ErrValidation = errors.New("validation failed")
	// ErrDatabase indicates a general database interaction error.
	ErrDatabase = errors.New("database error")
	// ErrNATS indicates a general NATS communication error.
	ErrNATS = errors.New("nats communication error")
	// ErrDuplicate indicates a conflict due to duplicate data (e.g., unique constraint).
	ErrDuplicate = errors.New("duplicate resource")
	// ErrConflict indicates a general conflict state.
	ErrConflict = errors.New("resource conflict")
	// ErrBadRequest indicates a malformed or invalid request from the client/caller.
	ErrBadRequest = errors.New("bad request")
	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timeout")
)

// --- Provider Domain Errors ---

var (
	// ErrUnsupportedProvider indicates a provider type with no registered adapter.
	ErrUnsupportedProvider = errors.New("unsupported provider type")
	// ErrAmbiguousDefault indicates more than one active default provider exists.
	ErrAmbiguousDefault = errors.New("multiple default providers configured")
	// ErrQuotaExceeded indicates a provider has exhausted its daily or monthly call quota.
	ErrQuotaExceeded = errors.New("provider call quota exceeded")
	// ErrNotImplemented indicates an operation the provider family does not support yet.
	ErrNotImplemented = errors.New("operation not implemented")
)

// --- Specific Standard Error Checkers ---

// IsNotFoundError checks if the error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if the error is or wraps ErrValidation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDatabaseError checks if the error is or wraps ErrDatabase.
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsNATSError checks if the error is or wraps ErrNATS.
func IsNATSError(err error) bool {
	return errors.Is(err, ErrNATS)
}

// IsDuplicateError checks if the error is or wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConflictError checks if the error is or wraps ErrConflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsBadRequestError checks if the error is or wraps ErrBadRequest.
func IsBadRequestError(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsTimeoutError checks if the error is or wraps ErrTimeout.
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsUnsupportedProviderError checks if the error is or wraps ErrUnsupportedProvider.
func IsUnsupportedProviderError(err error) bool {
	return errors.Is(err, ErrUnsupportedProvider)
}

// IsAmbiguousDefaultError checks if the error is or wraps ErrAmbiguousDefault.
func IsAmbiguousDefaultError(err error) bool {
	return errors.Is(err, ErrAmbiguousDefault)
}

// IsQuotaExceededError checks if the error is or wraps ErrQuotaExceeded.
func IsQuotaExceededError(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsNotImplementedError checks if the error is or wraps ErrNotImplemented.
func IsNotImplementedError(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}
