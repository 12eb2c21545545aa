package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode is a stable identifier for a failure mode.
type ErrorCode string

const (
	// UnreadableInput indicates a source unit or dump file could not be read
	UnreadableInput ErrorCode = "UNREADABLE_INPUT"
	// MalformedDeclaration indicates a function declaration without a usable name
	MalformedDeclaration ErrorCode = "MALFORMED_DECLARATION"
	// MalformedArguments indicates an @args directive the grammar rejected
	MalformedArguments ErrorCode = "MALFORMED_ARGUMENTS"
	// InvalidDumpSection indicates dump content outside any section marker
	InvalidDumpSection ErrorCode = "INVALID_DUMP_SECTION"
	// InvalidDocument indicates a canonical document that failed to decode
	InvalidDocument ErrorCode = "INVALID_DOCUMENT"
	// ConfigInvalid indicates a configuration file that failed to load or validate
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// StoreFailure indicates the snapshot database failed
	StoreFailure ErrorCode = "STORE_FAILURE"
	// SnapshotNotFound indicates an unknown or ambiguous snapshot ID
	SnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction is a suggested remedy attached to an error.
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
}

// DocError is a typed failure surfaced to callers of the parsers, the store
// and the CLI.
type DocError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// NewDocError creates a new DocError with the default fixes for its code.
func NewDocError(code ErrorCode, message string, cause error) *DocError {
	return &DocError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Errorf creates a DocError without a cause from a format string.
func Errorf(code ErrorCode, format string, args ...interface{}) *DocError {
	return NewDocError(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *DocError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DocError) Unwrap() error {
	return e.cause
}

// Is matches another DocError by code, so errors.Is(err, &DocError{Code: X}) works.
func (e *DocError) Is(target error) bool {
	t, ok := target.(*DocError)
	return ok && t.Code == e.Code && t.Message == ""
}

// WithDetails adds details to the error
func (e *DocError) WithDetails(details interface{}) *DocError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first DocError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var de *DocError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err's chain contains a DocError with the given code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &DocError{Code: code})
}

var errorActions = map[ErrorCode][]FixAction{
	ConfigInvalid: {
		{
			Command:     "scardoc init --force",
			Description: "Rewrite .scardoc/config.toml with defaults",
		},
	},
	SnapshotNotFound: {
		{
			Command:     "scardoc snapshot list",
			Description: "List stored snapshot IDs",
		},
	},
	InvalidDumpSection: {
		{
			Description: "Start the dump with [ScarDoc:Functions], [ScarDoc:Globals] or [ScarDoc:Unknowns]",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := errorActions[code]; ok {
		return fixes
	}
	return nil
}
