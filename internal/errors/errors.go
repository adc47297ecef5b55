// Package errors provides structured error types for the benchmark harness.
// Every error carries a category naming the stage that failed and a code naming
// the failure, so the entry points can report which dataset, engine or query
// broke a run.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by harness stage.
type ErrorCategory string

const (
	ErrCategoryFilesystem ErrorCategory = "FILESYSTEM"
	ErrCategoryIO         ErrorCategory = "IO"
	ErrCategoryNetwork    ErrorCategory = "NETWORK"
	ErrCategoryChecksum   ErrorCategory = "CHECKSUM"
	ErrCategoryDataset    ErrorCategory = "DATASET"
	ErrCategoryEngine     ErrorCategory = "ENGINE"
	ErrCategoryConfig     ErrorCategory = "CONFIG"
	ErrCategoryResults    ErrorCategory = "RESULTS"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Filesystem codes
	CodeInvalidPath  = "INVALID_PATH"
	CodeCreateFailed = "CREATE_FAILED"
	CodeOpenFailed   = "OPEN_FAILED"

	// I/O codes
	CodeReadFailed    = "READ_FAILED"
	CodeWriteFailed   = "WRITE_FAILED"
	CodeDecodeFailed  = "DECODE_FAILED"
	CodeExtractFailed = "EXTRACT_FAILED"

	// Network codes
	CodeDownloadFailed    = "DOWNLOAD_FAILED"
	CodeObjectNotFound    = "OBJECT_NOT_FOUND"
	CodeUnsupportedScheme = "UNSUPPORTED_SCHEME"

	// Checksum codes
	CodeArchiveMismatch = "ARCHIVE_MISMATCH"
	CodeJSONMismatch    = "JSON_MISMATCH"

	// Dataset codes
	CodeUnknownDataset = "UNKNOWN_DATASET"
	CodeNotCached      = "NOT_CACHED"

	// Engine codes
	CodeEngineSetup   = "SETUP_FAILED"
	CodeLoadFailed    = "LOAD_FAILED"
	CodeCompileFailed = "COMPILE_FAILED"
	CodeRunFailed     = "RUN_FAILED"
	CodeUnknownEngine = "UNKNOWN_ENGINE"

	// Config codes
	CodeInvalidConfig = "INVALID_CONFIG"

	// Results codes
	CodeStoreFailed   = "STORE_FAILED"
	CodeRunIncomplete = "RUN_INCOMPLETE"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// BenchError is the structured error type used throughout the harness.
type BenchError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *BenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *BenchError) Is(target error) bool {
	var t *BenchError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new BenchError.
func New(category ErrorCategory, code, message string) *BenchError {
	return &BenchError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new BenchError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *BenchError {
	return &BenchError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *BenchError) WithDetails(details map[string]interface{}) *BenchError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCategory(err error) ErrorCategory {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCode(err error) string {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Sentinels for errors.Is checks. Only category and code are compared.
var (
	ErrArchiveChecksum = New(ErrCategoryChecksum, CodeArchiveMismatch, "")
	ErrJSONChecksum    = New(ErrCategoryChecksum, CodeJSONMismatch, "")
	ErrObjectNotFound  = New(ErrCategoryNetwork, CodeObjectNotFound, "")
	ErrDownload        = New(ErrCategoryNetwork, CodeDownloadFailed, "")
	ErrNotCached       = New(ErrCategoryDataset, CodeNotCached, "")
	ErrUnknownDataset  = New(ErrCategoryDataset, CodeUnknownDataset, "")
	ErrRunIncomplete   = New(ErrCategoryResults, CodeRunIncomplete, "")
)

// Convenience constructors for common errors.

func NewFilesystemError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryFilesystem, code, message, cause)
}

func NewIOError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryIO, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryNetwork, code, message, cause)
}

func NewEngineError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryEngine, code, message, cause)
}

func NewConfigError(message string) *BenchError {
	return New(ErrCategoryConfig, CodeInvalidConfig, message)
}

func NewResultsError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryResults, CodeStoreFailed, message, cause)
}

func NewInternalError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
