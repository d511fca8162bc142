// Package domain defines the core domain models for NoteGuard.
package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies an error by how the client must react to it.
type Kind int

const (
	// KindUnknown is any error that fits no other kind.
	KindUnknown Kind = iota
	// KindValidation is rejected user input; no request was sent.
	KindValidation
	// KindUnauthenticated is a 401 response; the session is torn down.
	KindUnauthenticated
	// KindForbidden is a 403 response; the session is kept.
	KindForbidden
	// KindNotFound is a 404 response.
	KindNotFound
	// KindServer is a 5xx response.
	KindServer
	// KindNetwork is a transport failure or timeout.
	KindNetwork
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// KindForStatus maps an HTTP status code to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindValidation
	default:
		return KindUnknown
	}
}

// DomainError represents a client error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "NG-AUTH-4010")
	Kind    Kind
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code, kind and message.
func NewDomainError(code string, kind Kind, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// APIError is a non-success HTTP response from the backend.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Kind returns the kind derived from the status code.
func (e *APIError) Kind() Kind {
	return KindForStatus(e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// KindOf classifies err. Domain errors carry their kind; API errors are
// classified by status; transport failures and deadlines are network errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var de *DomainError
	if errors.As(err, &de) && de.Kind != KindUnknown {
		return de.Kind
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return KindNetwork
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return KindNetwork
	}
	return KindUnknown
}

// UserMessage returns the message shown to the user for err. Details of
// server and network failures are not exposed.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindValidation:
		var de *DomainError
		if errors.As(err, &de) {
			return de.Message
		}
		return "the request was rejected as invalid"
	case KindUnauthenticated:
		return "your session has ended, please log in again"
	case KindForbidden:
		return "you are not allowed to perform this action"
	case KindNotFound:
		if errors.Is(err, ErrAnalysisNotFound) {
			return ErrAnalysisNotFound.Message
		}
		return "the requested item was not found"
	default:
		return "the service is unavailable, please try again later"
	}
}

// Authentication errors (AUTH).
var (
	// ErrNotAuthenticated indicates no valid session exists.
	ErrNotAuthenticated = NewDomainError("NG-AUTH-4010", KindUnauthenticated, "not logged in")

	// ErrSessionRejected indicates the backend rejected the bearer token.
	ErrSessionRejected = NewDomainError("NG-AUTH-4011", KindUnauthenticated, "session rejected by server")

	// ErrLoginFailed indicates the credentials were not accepted.
	ErrLoginFailed = NewDomainError("NG-AUTH-4012", KindUnauthenticated, "login failed")

	// ErrEmptyToken indicates the login response carried no access token.
	ErrEmptyToken = NewDomainError("NG-AUTH-5001", KindServer, "login response carried no token")
)

// Argument errors (ARG).
var (
	// ErrMissingArgument indicates a required field is empty.
	ErrMissingArgument = NewDomainError("NG-ARG-1001", KindValidation, "missing required field")

	// ErrPasswordMismatch indicates the password confirmation differs.
	ErrPasswordMismatch = NewDomainError("NG-ARG-1002", KindValidation, "passwords do not match")

	// ErrPasswordTooShort indicates the password is under MinPasswordLength.
	ErrPasswordTooShort = NewDomainError("NG-ARG-1003", KindValidation, "password must be at least 6 characters")
)

// Analysis errors (ANLY).
var (
	// ErrEmptyText indicates there is no text to analyse.
	ErrEmptyText = NewDomainError("NG-ANLY-4001", KindValidation, "text to analyse is empty")

	// ErrUnsupportedFile indicates an upload that is neither .txt nor .docx.
	ErrUnsupportedFile = NewDomainError("NG-ANLY-4002", KindValidation, "only .txt and .docx files are supported")

	// ErrInvalidAnalysisID indicates an analysis id that is not a UUID.
	ErrInvalidAnalysisID = NewDomainError("NG-ANLY-4003", KindValidation, "invalid analysis id")

	// ErrAnalysisForbidden indicates the analysis belongs to another user.
	ErrAnalysisForbidden = NewDomainError("NG-ANLY-4030", KindForbidden, "you are not allowed to access this analysis")

	// ErrAnalysisNotFound indicates the analysis does not exist (anymore).
	ErrAnalysisNotFound = NewDomainError("NG-ANLY-4040", KindNotFound, "analysis not found; it may already be deleted")
)

// System errors (SYS).
var (
	// ErrServiceUnavailable indicates a 5xx response.
	ErrServiceUnavailable = NewDomainError("NG-SYS-5030", KindServer, "service unavailable")

	// ErrNetwork indicates the request did not complete.
	ErrNetwork = NewDomainError("NG-SYS-5031", KindNetwork, "network error")
)
