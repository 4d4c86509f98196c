package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "unknown category",
			err:         fmt.Errorf("%w: %q", ErrUnknownCategory, "bakeries"),
			wantCode:    "CAT001",
			wantMessage: "Unknown category",
		},
		{
			name:        "status failure",
			err:         newLoadFailure("government", &TransportError{Locator: "/g.csv", StatusCode: 404}),
			wantCode:    "NET001",
			wantMessage: "Error loading data",
		},
		{
			name:        "connection failure",
			err:         &TransportError{Locator: "/g.csv", Cause: errors.New("dial tcp: connection refused")},
			wantCode:    "NET002",
			wantMessage: "Error loading data",
		},
		{
			name:        "too large",
			err:         newLoadFailure("x", &TransportError{Cause: fmt.Errorf("%w: exceeds 10 bytes", errDatasetTooLarge)}),
			wantCode:    "NET003",
			wantMessage: "Dataset is too large",
		},
		{
			name:        "deadline",
			err:         &TransportError{Cause: context.DeadlineExceeded},
			wantCode:    "NET004",
			wantMessage: "Request timed out",
		},
		{
			name:        "parse failure",
			err:         newLoadFailure("x", &ParseError{Msg: "empty input"}),
			wantCode:    "PARSE001",
			wantMessage: "Error parsing data",
		},
		{
			name:        "session not found",
			err:         fmt.Errorf("%w: abc", ErrSessionNotFound),
			wantCode:    "SES001",
			wantMessage: "Session expired",
		},
		{
			name:        "plain text pattern",
			err:         errors.New("lookup example.com: no such host"),
			wantCode:    "NET002",
			wantMessage: "Error loading data",
		},
		{
			name:        "pattern is case insensitive",
			err:         errors.New("HTTP STATUS 502"),
			wantCode:    "NET001",
			wantMessage: "Error loading data",
		},
		{
			name:        "bad request body",
			err:         errors.New("invalid request body: unexpected EOF"),
			wantCode:    "REQ001",
			wantMessage: "Invalid request",
		},
		{
			name:        "unknown error uses default",
			err:         errors.New("something odd"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(&ParseError{Msg: "empty input"})
	if !strings.HasPrefix(got, "Error parsing data (Code: PARSE001). ") {
		t.Errorf("FormatUserError = %q", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if IsUserFacing(errors.New("something odd")) {
		t.Error("unmapped errors should not be user facing")
	}
	if !IsUserFacing(ErrUnknownCategory) {
		t.Error("unknown category should be user facing")
	}
}

func TestLoadFailureMessage(t *testing.T) {
	err := newLoadFailure("government", &TransportError{Locator: "/g.csv", StatusCode: 404})
	if got := err.Error(); got != "error loading data for government: HTTP status 404" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrTransport) {
		t.Error("should match ErrTransport")
	}
}
