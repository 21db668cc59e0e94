/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.

ERROR CATEGORIES:
  1. ValidationError - business-rule violations (fail fast, storage untouched)
  2. NotFoundError   - lookups of nonexistent accounts or transactions
  3. CurrencyError   - malformed or unrecognized currency codes
  4. StorageError    - persistence failures, wrapped without retry

USAGE:
  Callers branch on kind with the helpers:

    if ledger.IsValidation(err) { ... 400 }
    if ledger.IsNotFound(err)   { ... 404 }

SEE ALSO:
  - accounts.go, transactions.go: produce ValidationError/NotFoundError
  - store/sqlite: wraps driver failures in StorageError
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports a business-rule violation. Validation always
// runs before any write, so a ValidationError means storage is untouched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup of a nonexistent resource.
type NotFoundError struct {
	Resource string // "account", "transaction"
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// CurrencyError reports a malformed or unrecognized currency code.
type CurrencyError struct {
	Code string
}

func (e *CurrencyError) Error() string {
	return fmt.Sprintf("invalid currency code: %s", e.Code)
}

// StorageError wraps an underlying persistence failure. No retries
// happen anywhere in this engine; the failure surfaces as-is.
type StorageError struct {
	Op  string // operation that failed, e.g. "create account"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// =============================================================================
// KIND HELPERS
// =============================================================================

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsCurrency(err error) bool {
	var c *CurrencyError
	return errors.As(err, &c)
}

func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
