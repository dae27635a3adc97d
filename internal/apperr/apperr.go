// Package apperr defines the error taxonomy shared across every package in
// this repository. Callers compare against Code with errors.Is / Code()
// rather than matching on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Code is one of the error taxonomy values from the error handling design.
type Code string

const (
	AuthRequired          Code = "AUTH_REQUIRED"
	InsufficientPerms     Code = "INSUFFICIENT_PERMISSIONS"
	BannedUser            Code = "BANNED_USER"
	PremiumRequired       Code = "PREMIUM_REQUIRED"
	RateLimitExceeded     Code = "RATE_LIMIT_EXCEEDED"
	FloodWait             Code = "FLOOD_WAIT"
	InvalidInput          Code = "INVALID_INPUT"
	InvalidLink           Code = "INVALID_LINK"
	InvalidFileType       Code = "INVALID_FILE_TYPE"
	DatabaseError         Code = "DATABASE_ERROR"
	NotFound              Code = "NOT_FOUND"
	DuplicateEntry        Code = "DUPLICATE_ENTRY"
	TelegramAPIError      Code = "TELEGRAM_API_ERROR"
	ChannelAccessDenied   Code = "CHANNEL_ACCESS_DENIED"
	SystemError           Code = "SYSTEM_ERROR"
	Timeout               Code = "TIMEOUT"
	MaintenanceMode       Code = "MAINTENANCE_MODE"
)

// Error is the concrete error type threaded through every package boundary.
type Error struct {
	Code          Code
	Message       string
	CorrelationID string
	Fields        map[string]any
	cause         error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an Error carrying cause, preserving it for errors.Is/As chains.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithField attaches a structured field for logging, returning the same
// Error for chaining.
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// WithCorrelationID stamps the correlation id used to tie a user-facing
// error back to the structured log line.
func (e *Error) WithCorrelationID(id string) *Error {
	e.CorrelationID = id
	return e
}

// CodeOf extracts the Code from err, if it or anything it wraps is an
// *Error. Returns SystemError for unrecognized errors, matching the
// default fallback classification from the error handling design.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return SystemError
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
