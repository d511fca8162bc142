package session

import (
	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
)

// Status is the lifecycle state of a session.
type Status int

const (
	// StatusLoading means restoration from storage is still running.
	StatusLoading Status = iota
	// StatusAnonymous means no user is logged in.
	StatusAnonymous
	// StatusAuthenticated means a validated token and user are held.
	StatusAuthenticated
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Status Status
	User   *domain.User
}

// Authenticated reports whether a user is logged in.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}
