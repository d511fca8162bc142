// Package session owns the authentication state of the NoteGuard client.
//
// A Manager holds the bearer token and the current user, restores them from
// the token store at startup, and is the single place that changes them.
// Every change is written to the store before memory is updated.
//
// Consumers observe the session through Snapshot and Subscribe. The Loading
// status is distinct from Anonymous so that a caller can wait for
// restoration instead of briefly treating the user as logged out.
package session
