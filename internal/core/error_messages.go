// Package core error codes reference.
//
// Errors are mapped to user-facing messages with a code that support staff
// can look up:
//
//	CAT001   - Unknown category: the category is not configured
//	           Patterns: ErrUnknownCategory, "unknown category"
//
//	NET001   - Error loading data: the dataset host answered with a failure status
//	           Patterns: *TransportError with a status code, "http status"
//
//	NET002   - Error loading data: the dataset host could not be reached
//	           Patterns: *TransportError without a status code, "connection refused", "no such host"
//
//	NET003   - Dataset too large: the body exceeded DATASET_MAX_SIZE
//	           Patterns: "dataset too large"
//
//	NET004   - Request timed out
//	           Patterns: "deadline exceeded", "timeout"
//
//	PARSE001 - Error parsing data: the resource is not a table
//	           Patterns: ErrParse, "parse:"
//
//	SES001   - Session expired: the session is unknown or was swept
//	           Patterns: ErrSessionNotFound
//
//	REQ001   - Invalid request: the request body could not be decoded
//	           Patterns: "invalid request"
//
//	ERR000   - Unknown error
//
// Typed errors are checked first with errors.Is/As; free-text patterns are
// matched case-insensitively with strings.Contains, first match wins.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgUnknownCategory = UserMessage{
		Message: "Unknown category",
		Action:  "Pick one of the listed categories",
		Code:    "CAT001",
	}
	msgStatusFailure = UserMessage{
		Message: "Error loading data",
		Action:  "Select the category again to retry",
		Code:    "NET001",
	}
	msgUnreachable = UserMessage{
		Message: "Error loading data",
		Action:  "Check your connection and select the category again",
		Code:    "NET002",
	}
	msgTooLarge = UserMessage{
		Message: "Dataset is too large",
		Action:  "Raise DATASET_MAX_SIZE or split the dataset",
		Code:    "NET003",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Please try again",
		Code:    "NET004",
	}
	msgParse = UserMessage{
		Message: "Error parsing data",
		Action:  "Check that the dataset is comma-separated with a header row",
		Code:    "PARSE001",
	}
	msgSession = UserMessage{
		Message: "Session expired",
		Action:  "Open a new session",
		Code:    "SES001",
	}
	msgBadRequest = UserMessage{
		Message: "Invalid request",
		Action:  "Send a JSON body of the documented shape",
		Code:    "REQ001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps free-text error fragments (case-insensitive) to user
// messages. Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "unknown category", msg: msgUnknownCategory},
	{pattern: "dataset too large", msg: msgTooLarge},
	{pattern: "deadline exceeded", msg: msgTimeout},
	{pattern: "timeout", msg: msgTimeout},
	{pattern: "http status", msg: msgStatusFailure},
	{pattern: "connection refused", msg: msgUnreachable},
	{pattern: "no such host", msg: msgUnreachable},
	{pattern: "parse:", msg: msgParse},
	{pattern: "session not found", msg: msgSession},
	{pattern: "invalid request", msg: msgBadRequest},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrUnknownCategory):
		return msgUnknownCategory
	case errors.Is(err, ErrSessionNotFound):
		return msgSession
	case errors.Is(err, errDatasetTooLarge):
		return msgTooLarge
	case errors.Is(err, ErrParse):
		return msgParse
	}

	var te *TransportError
	if errors.As(err, &te) {
		if te.StatusCode != 0 {
			return msgStatusFailure
		}
		if strings.Contains(strings.ToLower(te.Cause.Error()), "deadline exceeded") {
			return msgTimeout
		}
		return msgUnreachable
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
