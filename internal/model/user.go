package model

import (
	"strings"
	"time"
)

// User represents an application account as stored in the `users` table.
// PasswordHash holds a bcrypt digest; the plain password is never stored.
type User struct {
	ID           string    // users.id
	Username     string    // users.username (unique)
	Email        string    // users.email (unique)
	PasswordHash string    // users.password_hash
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// NewUser validates username and email and returns a user with a fresh id.
// The password hash is filled in by the caller.
func NewUser(username, email string) (*User, error) {
	u := &User{ID: NewID(), Username: strings.TrimSpace(username), Email: NormalizeEmail(email)}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks username and email.
func (u *User) Validate() error {
	if !lengthBetween(u.Username, 5, 255) {
		return invalid("username", "username must be between 5 and 255 characters")
	}
	if !validEmail(u.Email) {
		return invalid("email", "Email must be a valid email")
	}
	return nil
}
