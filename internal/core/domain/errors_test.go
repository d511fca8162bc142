// Package domain defines the core domain models for NoteGuard.
package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("NG-TEST-1000", KindUnknown, "test message"),
			expected: "[NG-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("NG-TEST-1001", KindUnknown, "test message").WithDetails("extra info"),
			expected: "[NG-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("NG-TEST-1000", KindUnknown, "message 1")
	err2 := NewDomainError("NG-TEST-1000", KindUnknown, "message 2")
	err3 := NewDomainError("NG-TEST-1001", KindUnknown, "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if !errors.Is(ErrPasswordTooShort.WithDetails("x"), ErrPasswordTooShort) {
		t.Error("WithDetails copy should still match its sentinel")
	}
}

func TestDomainError_WithCause(t *testing.T) {
	cause := errors.New("boom")
	err := ErrInvalidAnalysisID.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if ErrInvalidAnalysisID.Cause != nil {
		t.Error("WithCause must not mutate the sentinel")
	}
}

func TestGetErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrAnalysisNotFound)
	if got := GetErrorCode(wrapped); got != "NG-ANLY-4040" {
		t.Errorf("GetErrorCode() = %q, want NG-ANLY-4040", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode() = %q, want empty", got)
	}
	if !IsDomainError(wrapped, "") {
		t.Error("IsDomainError should accept any code when code is empty")
	}
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{401, KindUnauthenticated},
		{403, KindForbidden},
		{404, KindNotFound},
		{400, KindValidation},
		{422, KindValidation},
		{500, KindServer},
		{503, KindServer},
		{200, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			if got := KindForStatus(tt.status); got != tt.want {
				t.Errorf("KindForStatus(%d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"domain validation", ErrEmptyText, KindValidation},
		{"api 401", &APIError{Status: 401}, KindUnauthenticated},
		{"wrapped api 500", fmt.Errorf("list: %w", &APIError{Status: 500}), KindServer},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), KindNetwork},
		{"dial", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, KindNetwork},
		{"plain", errors.New("plain"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(ErrPasswordMismatch); got != "passwords do not match" {
		t.Errorf("validation message = %q", got)
	}
	if got := UserMessage(&APIError{Status: 403}); got != "you are not allowed to perform this action" {
		t.Errorf("forbidden message = %q", got)
	}
	if got := UserMessage(ErrAnalysisNotFound); got != "analysis not found; it may already be deleted" {
		t.Errorf("not found message = %q", got)
	}

	// Server and network failures are indistinguishable to the user.
	server := UserMessage(&APIError{Status: 500, Detail: "traceback"})
	network := UserMessage(context.DeadlineExceeded)
	if server != network {
		t.Errorf("server %q and network %q messages differ", server, network)
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(fmt.Errorf("x: %w", &APIError{Status: 404})); got != 404 {
		t.Errorf("StatusOf() = %d, want 404", got)
	}
	if got := StatusOf(errors.New("x")); got != 0 {
		t.Errorf("StatusOf() = %d, want 0", got)
	}
}
