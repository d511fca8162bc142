// Package tokenstore persists the bearer token of the NoteGuard client.
//
// Exactly one value is stored, under the key "auth.token". Three backends
// implement Store:
//
//   - file.go: a single 0600 file, replaced atomically, optionally sealed
//     with a passphrase
//   - badger.go: an embedded Badger directory with synchronous writes
//   - memory.go: process-local, for tests and throwaway sessions
//
// Every Save and Clear is durable before it returns, so a crash right after
// a logout never resurrects the token.
package tokenstore
