// Package errors provides structured error handling for docground.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Corpus and cache I/O errors
//   - 3XX: Embedding provider errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates corpus and cache file I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates embedding provider network errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeCorpusDirNotFound = "ERR_201_CORPUS_DIR_NOT_FOUND"
	ErrCodeFileUnreadable    = "ERR_202_FILE_UNREADABLE"
	ErrCodeCacheCorrupt      = "ERR_203_CACHE_CORRUPT"
	ErrCodeCacheWriteFailed  = "ERR_204_CACHE_WRITE_FAILED"

	// Network errors (300-399)
	ErrCodeProviderUnavailable = "ERR_301_PROVIDER_UNAVAILABLE"
	ErrCodeProviderTimeout     = "ERR_302_PROVIDER_TIMEOUT"
	ErrCodeProviderResponse    = "ERR_303_PROVIDER_MALFORMED_RESPONSE"

	// Validation errors (400-499)
	ErrCodeEmptyQuery      = "ERR_401_EMPTY_QUERY"
	ErrCodeInvalidArgument = "ERR_402_INVALID_ARGUMENT"

	// Internal errors (500-599)
	ErrCodeInternal          = "ERR_501_INTERNAL"
	ErrCodeDimensionMismatch = "ERR_502_DIMENSION_MISMATCH"
)
