// Package main provides the entry point for noteguard-cli.
//
// The CLI talks to a NoteGuard backend for:
//
//   - Account management (login, logout, register, password reset, profile)
//   - Text and file analysis with highlighted grammar and repetition findings
//   - Browsing, searching and deleting stored analyses
//   - Backend health and client diagnostics
//
// Usage:
//
//	noteguard-cli [command] [flags]
//	noteguard-cli analyze --demo "Ali okula gitti. Ali okula gitti."
//	noteguard-cli -o json history list --page 2
//
// The CLI supports both single-command mode and interactive REPL mode.
package main
