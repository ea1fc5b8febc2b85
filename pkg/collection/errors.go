package collection

import "errors"

// Failure taxonomy. Callers match with errors.Is; wrapped errors keep the
// underlying driver error for logging.
var (
	// ErrValidationFailed: input violated a field rule. The store was not touched.
	ErrValidationFailed = errors.New("validation failed")
	// ErrStorageUnavailable: the store could not be reached, a read failed, or a
	// call ran past its timeout.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrTransactionFailed: a write failed inside its transaction and was rolled back.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrNotFound: a singleton record has no row yet.
	ErrNotFound = errors.New("not found")
)
