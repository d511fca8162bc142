// Package domain defines the core domain models for NoteGuard.
package domain

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// SupportedFileExtensions lists the upload formats the backend accepts.
var SupportedFileExtensions = []string{".txt", ".docx"}

// ValidateRegistration checks a registration form. confirm is the repeated
// password; the request must not be sent when this returns an error.
func ValidateRegistration(r Registration, confirm string) error {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return ErrMissingArgument.WithDetails("email")
	case strings.TrimSpace(r.FirstName) == "":
		return ErrMissingArgument.WithDetails("first name")
	case strings.TrimSpace(r.LastName) == "":
		return ErrMissingArgument.WithDetails("last name")
	case r.Password != confirm:
		return ErrPasswordMismatch
	case utf8.RuneCountInString(r.Password) < MinPasswordLength:
		return ErrPasswordTooShort
	}
	return nil
}

// ValidateNewPassword checks a password reset.
func ValidateNewPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidateAnalyzeRequest rejects blank text.
func ValidateAnalyzeRequest(req AnalyzeRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// ValidateUploadName rejects files the backend would refuse.
func ValidateUploadName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range SupportedFileExtensions {
		if ext == allowed {
			return nil
		}
	}
	return ErrUnsupportedFile.WithDetails(filepath.Base(name))
}

// ValidateAnalysisID rejects ids that are not UUIDs.
func ValidateAnalysisID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidAnalysisID.WithDetails(id).WithCause(err)
	}
	return nil
}
