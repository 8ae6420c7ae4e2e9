package model

import (
	"strings"
	"time"
)

// Genre is a movie category.  Names are stored lower-cased and are unique.
type Genre struct {
	ID        string    `json:"id"`        // genres.id
	Name      string    `json:"name"`      // genres.name (unique)
	CreatedAt time.Time `json:"createdAt"` // genres.created_at
	UpdatedAt time.Time `json:"updatedAt"` // genres.updated_at
}

// NormalizeGenreName trims and lower-cases a genre name.
func NormalizeGenreName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewGenre validates name and returns a genre with a fresh id.
func NewGenre(name string) (*Genre, error) {
	name = NormalizeGenreName(name)
	if !lengthBetween(name, 1, 255) {
		return nil, invalid("name", "Invalid name")
	}
	return &Genre{ID: NewID(), Name: name}, nil
}
