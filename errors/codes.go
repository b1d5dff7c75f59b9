package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Document errors. These are raised when a pipeline document cannot be opened
// at all, as opposed to validation problems which are reported as values.
const (
	// ErrCodeInvalidPipeline indicates the document has no usable pipeline.
	ErrCodeInvalidPipeline ErrorCode = "INVALID_PIPELINE"
	// ErrCodePipelineOutOfDate indicates the document needs migration first.
	ErrCodePipelineOutOfDate ErrorCode = "PIPELINE_OUT_OF_DATE"
	// ErrCodeEditorOutOfDate indicates the document was written by a newer editor.
	ErrCodeEditorOutOfDate ErrorCode = "EDITOR_OUT_OF_DATE"
	// ErrCodeUnknownVersion indicates the document version could not be read.
	ErrCodeUnknownVersion ErrorCode = "UNKNOWN_VERSION"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeComponentNotFound indicates a node op is missing from the registry.
	ErrCodeComponentNotFound ErrorCode = "COMPONENT_NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a field has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client sent too many requests.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:     true,
	ErrCodeRateLimited: true,
	ErrCodeInternal:    false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
