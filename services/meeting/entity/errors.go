package entity

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeMissingFile               ErrorCode = "MISSING_FILE"
	CodeUnsupportedFileType       ErrorCode = "UNSUPPORTED_FILE_TYPE"
	CodeFileTooLarge              ErrorCode = "FILE_TOO_LARGE"
	CodeMissingField              ErrorCode = "MISSING_FIELD"
	CodeInvalidParticipantsFormat ErrorCode = "INVALID_PARTICIPANTS_FORMAT"
	CodeInvalidForm               ErrorCode = "INVALID_FORM"
	CodeInvalidReportRequest      ErrorCode = "INVALID_REPORT_REQUEST"
	CodeMethodNotAllowed          ErrorCode = "METHOD_NOT_ALLOWED"
	CodeTranscriptionFailed       ErrorCode = "TRANSCRIPTION_FAILED"
	CodeSummarizationFailed       ErrorCode = "SUMMARIZATION_FAILED"
	CodeInternal                  ErrorCode = "INTERNAL_SERVER_ERROR"
)

// Error is the typed failure surfaced to API callers.
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Err     error
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewFieldError(code ErrorCode, field, message string) *Error {
	return &Error{Code: code, Field: field, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsClientError reports whether the code is caused by the request itself.
func (c ErrorCode) IsClientError() bool {
	switch c {
	case CodeMissingFile, CodeUnsupportedFileType, CodeFileTooLarge, CodeMissingField,
		CodeInvalidParticipantsFormat, CodeInvalidForm, CodeInvalidReportRequest:
		return true
	}
	return false
}

// IsUpstreamError reports whether the code is caused by a remote vendor.
func (c ErrorCode) IsUpstreamError() bool {
	return c == CodeTranscriptionFailed || c == CodeSummarizationFailed
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// FileTooLargeError reports an upload above limit bytes.
func FileTooLargeError(limit int64) *Error {
	return NewError(CodeFileTooLarge, fmt.Sprintf("File size exceeds %s limit", formatSize(limit)))
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
