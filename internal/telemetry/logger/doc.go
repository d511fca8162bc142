// Package logger provides structured logging for NoteGuard.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: handler configuration, levels and the default logger
//   - context.go: context-aware logging with request IDs
//   - redact.go: masking of credentials (passwords, bearer tokens, JWTs)
//
// Failed client operations are logged here in full; only a short message
// derived from the error kind reaches the user.
package logger
