// Package errors provides structured error types for the codecbench harness.
// All errors carry a category, code, and message so that callers can map a
// failure to the right recovery action: resource, codec, and integrity
// failures are fatal to the current file only, never to the whole run.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by harness component.
type ErrorCategory string

const (
	ErrCategoryResource  ErrorCategory = "RESOURCE"
	ErrCategoryCodec     ErrorCategory = "CODEC"
	ErrCategoryIntegrity ErrorCategory = "INTEGRITY"
	ErrCategoryStorage   ErrorCategory = "STORAGE"
	ErrCategoryConfig    ErrorCategory = "CONFIG"
	ErrCategoryInternal  ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Resource codes
	CodeFileNotFound = "FILE_NOT_FOUND"
	CodeFileEmpty    = "FILE_EMPTY"
	CodeShortRead    = "SHORT_READ"
	CodeOutOfMemory  = "OUT_OF_MEMORY"

	// Codec codes
	CodeCompressFailed   = "COMPRESS_FAILED"
	CodeDecompressFailed = "DECOMPRESS_FAILED"
	CodeUnknownCodec     = "UNKNOWN_CODEC"

	// Integrity codes
	CodeChecksumMismatch = "CHECKSUM_MISMATCH"
	CodeSizeMismatch     = "SIZE_MISMATCH"

	// Storage codes
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Config codes
	CodeInvalidConfig = "INVALID_CONFIG"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// Process exit codes surfaced by cmd/codecbench. The values differentiate
// the resource failure classes expected by callers of the CLI.
const (
	ExitCodeFileError = 11 // cannot open, or empty input
	ExitCodeOOM       = 12 // allocation failure
	ExitCodeShortRead = 13 // file read returned fewer bytes than expected
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

// ExitCode maps an error chain to the process exit code owned by the CLI.
// Unclassified errors map to the file-error code, matching callers that
// treat any pre-iteration failure as "could not bench this file".
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case CodeOutOfMemory:
		return ExitCodeOOM
	case CodeShortRead:
		return ExitCodeShortRead
	default:
		return ExitCodeFileError
	}
}

// Convenience constructors for common errors.

func NewResourceError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryResource, code, message, cause)
}

func NewCodecError(code, message string) *BenchError {
	return New(ErrCategoryCodec, code, message)
}

func NewIntegrityError(code, message string) *BenchError {
	return New(ErrCategoryIntegrity, code, message)
}

func NewStorageError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewConfigError(message string) *BenchError {
	return New(ErrCategoryConfig, CodeInvalidConfig, message)
}

func NewInternalError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
