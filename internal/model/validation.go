package model

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// ValidationError reports the first field that failed a constructor or
// patch check.  Field is the JSON name of the offending attribute.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// NewID returns a fresh random identifier for any entity.
func NewID() string { return uuid.NewString() }

// IsValidID reports whether s has the shape of an entity id.  Callers use
// it to short-circuit malformed ids to "not found" before querying.
func IsValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// NormalizeID trims and lower-cases an id.  Ids are stored lower case and
// compared case-insensitively by the database.
func NormalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if len(email) < 5 || len(email) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func lengthBetween(s string, min, max int) bool {
	n := len([]rune(s))
	return n >= min && n <= max
}
