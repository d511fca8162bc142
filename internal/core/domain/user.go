// Package domain defines the core domain models for NoteGuard.
package domain

import (
	"encoding/json"
	"strings"
)

// User is the account record of the logged-in user.
//
// The backend names the identifier "user_id" on /auth/me and /auth/profile
// and "id" elsewhere; both decode into ID.
type User struct {
	ID        string `json:"id" yaml:"id"`
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
}

// UnmarshalJSON accepts both "id" and "user_id".
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	if u.ID == "" {
		u.ID = raw.UserID
	}
	return nil
}

// FullName returns "First Last", trimmed.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Registration is the payload of POST /auth/register.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate is the payload of PUT /auth/profile.
type ProfileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// User returns the user record carried by the login response.
func (r LoginResponse) User() User {
	return User{
		ID:        r.UserID,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// ProfileResponse is the body returned by PUT /auth/profile.
type ProfileResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}
