package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxNumberInStock   = 200
	MaxDailyRentalRate = 50
)

// GenreSnapshot is the genre id and name copied into a movie when the
// movie is created or updated.  It is not a live reference: renaming a
// genre afterwards leaves existing movies with the old name.
type GenreSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Movie is a rentable title together with its available stock.
//
// Fields:
//  NumberInStock   – copies currently on the shelf; never negative.
//  DailyRentalRate – price per started day, 0..50.
type Movie struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Genre           GenreSnapshot   `json:"genre"`
	NumberInStock   int             `json:"numberInStock"`
	DailyRentalRate decimal.Decimal `json:"dailyRentalRate"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewMovie validates its arguments and builds a movie with a fresh id.
func NewMovie(title string, genre GenreSnapshot, numberInStock int, dailyRentalRate decimal.Decimal) (*Movie, error) {
	m := &Movie{
		ID:              NewID(),
		Title:           strings.ToLower(strings.TrimSpace(title)),
		Genre:           genre,
		NumberInStock:   numberInStock,
		DailyRentalRate: dailyRentalRate,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the movie's field ranges.
func (m *Movie) Validate() error {
	if m.Title == "" {
		return invalid("title", "Title is required")
	}
	if !lengthBetween(m.Title, 3, 255) {
		return invalid("title", "Title must be between 3 to 255 characters long")
	}
	if m.Genre.ID == "" || m.Genre.Name == "" {
		return invalid("genre", "Genre is required")
	}
	if m.NumberInStock < 0 || m.NumberInStock > MaxNumberInStock {
		return invalid("numberInStock", "numberInStock must be a positive integer and maximum of 200")
	}
	if !storableAmount(m.DailyRentalRate, decimal.NewFromInt(MaxDailyRentalRate)) {
		return invalid("dailyRentalRate", "dailyRentalRate must be positive and maximum of 50 with at most two decimals")
	}
	return nil
}

// InStock reports whether at least one copy can be rented.
func (m *Movie) InStock() bool { return m.NumberInStock > 0 }
