package apperrors

// Authentication errors (AUTH_*)
const (
	ErrCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	ErrCodeTokenMissing       = "AUTH_TOKEN_MISSING"
	ErrCodeTokenInvalid       = "AUTH_TOKEN_INVALID"
)

// Authorization errors (AUTHZ_*)
const (
	ErrCodeForbidden = "AUTHZ_FORBIDDEN"
)

// Validation errors (VALIDATION_*)
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidInput     = "VALIDATION_INVALID_INPUT"
	ErrCodeMissingField     = "VALIDATION_MISSING_FIELD"
	ErrCodeInvalidFormat    = "VALIDATION_INVALID_FORMAT"
	ErrCodeFileTooLarge     = "VALIDATION_FILE_TOO_LARGE"
)

// Resource errors (RESOURCE_*)
const (
	ErrCodeContentNotFound = "RESOURCE_CONTENT_NOT_FOUND"
	ErrCodeResourceExists  = "RESOURCE_ALREADY_EXISTS"
)

// Rate limiting errors (RATE_*)
const (
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// Internal errors (INTERNAL_*)
const (
	ErrCodeStorageUnavailable = "INTERNAL_STORAGE_UNAVAILABLE"
	ErrCodeTransactionFailed  = "INTERNAL_TRANSACTION_FAILED"
	ErrCodeUploadFailed       = "INTERNAL_UPLOAD_FAILED"
	ErrCodeConfiguration      = "INTERNAL_CONFIGURATION"
	ErrCodeUnexpectedError    = "INTERNAL_UNEXPECTED_ERROR"
)
