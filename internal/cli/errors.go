// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Config errors
	ErrConfigInvalid      = "CONFIG_INVALID"
	ErrServerNotFound     = "SERVER_NOT_FOUND"
	ErrServerNotSpecified = "SERVER_NOT_SPECIFIED"

	// Path and value errors
	ErrMalformedPath   = "MALFORMED_PATH"
	ErrUnsupportedPath = "UNSUPPORTED_PATH"
	ErrInvalidValue    = "INVALID_UPDATE_VALUE"
	ErrInvalidFilter   = "INVALID_FILTER"

	// Selection errors
	ErrNoRecordsSelected = "NO_RECORDS_SELECTED"
	ErrRecordNotFound    = "RECORD_NOT_FOUND"

	// Confirmation errors
	ErrConfirmationDenied = "CONFIRMATION_DENIED"

	// Collaborator errors
	ErrServerError = "SERVER_ERROR"
	ErrCacheError  = "CACHE_ERROR"

	// Batch outcome
	ErrBatchFailed = "BATCH_FAILED"

	// File errors
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)
