package types

import "errors"

// Store and sync errors. Callers distinguish retryable connectivity failures
// (ErrStoreUnavailable) from non-retryable validation failures
// (ErrDuplicateKey, ErrInvalidStatus) with errors.Is.
var (
	// ErrNotFound is returned when a row lookup matches nothing. It is a
	// caller-visible signal, never swallowed into an empty result.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert collides on a natural key
	// (ccr_nfid within one store). Non-retryable.
	ErrDuplicateKey = errors.New("duplicate natural key")

	// ErrStoreUnavailable wraps connectivity failures to a store or to the
	// external reporting API. Retryable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNothingToSync is returned by the bundle builder when the local
	// store has no dirty rows. No inbox file is written in that case.
	ErrNothingToSync = errors.New("no pending changes to sync")

	// ErrMalformedBundle is returned when a bundle document fails to parse
	// or is missing its username or timestamp.
	ErrMalformedBundle = errors.New("malformed sync bundle")
)

// Validation errors.
var (
	ErrInvalidStatus     = errors.New("invalid project status")
	ErrInvalidSyncStatus = errors.New("invalid sync status")
	ErrInvalidRole       = errors.New("invalid user role")
	ErrInvalidCCRNFID    = errors.New("ccr_nfid must not be empty")
	ErrInvalidName       = errors.New("name must not be empty")
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("role not permitted for this operation")
)
