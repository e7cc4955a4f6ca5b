// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidInput  = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Scene detection errors (1100-1199)
	CodeDecodeFailed   = 1100
	CodeZeroFrameRate  = 1101
	CodeProbeFailed    = 1102
	CodeScreenshotSave = 1103

	// Cutdown assembly errors (1200-1299)
	CodeInvalidRange        = 1200
	CodeExtractionFailed    = 1201
	CodeConcatenationFailed = 1202
	CodeSeparationFailed    = 1203

	// Audio errors (1300-1399)
	CodePartialFailure   = 1300
	CodeAudioDownload    = 1301
	CodeAudioMergeFailed = 1302

	// External tool / collaborator errors (1400-1499)
	CodeExternalTool        = 1400
	CodeUpstreamUnavailable = 1401
	CodeTranscribeFailed    = 1402
	CodeTTSFailed           = 1403

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidInput = New(CodeInvalidInput, "Invalid parameters")
	ErrNotFound     = New(CodeNotFound, "Resource not found")

	// Scene detection
	ErrDecodeFailed  = New(CodeDecodeFailed, "Video decode failed")
	ErrZeroFrameRate = New(CodeZeroFrameRate, "Video reports zero frame rate")
	ErrProbeFailed   = New(CodeProbeFailed, "Media probe failed")

	// Cutdown assembly
	ErrInvalidRange        = New(CodeInvalidRange, "Scene end must be after start")
	ErrExtractionFailed    = New(CodeExtractionFailed, "Scene extraction failed")
	ErrConcatenationFailed = New(CodeConcatenationFailed, "Clip concatenation failed")

	// Audio
	ErrAudioDownload    = New(CodeAudioDownload, "Audio download failed")
	ErrAudioMergeFailed = New(CodeAudioMergeFailed, "Audio merge failed")

	// Collaborators
	ErrUpstreamUnavailable = New(CodeUpstreamUnavailable, "Upstream service unavailable")
	ErrTranscribeFailed    = New(CodeTranscribeFailed, "Transcription failed")
	ErrTTSFailed           = New(CodeTTSFailed, "TTS generation failed")

	// Storage
	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")
)
