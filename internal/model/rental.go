package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalState is derived from DateReturned; it is not stored.
type RentalState string

const (
	RentalOpen   RentalState = "open"   // copy is checked out
	RentalClosed RentalState = "closed" // copy returned, fee settled
)

// Rental records one customer checking out one copy of one movie.
//
// Fields:
//  DateOut      – when the copy left the shelf (UTC).
//  DateReturned – nil while the rental is open.
//  RentalFee    – non-negative; settled when DateReturned is set.
type Rental struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customerId"`
	MovieID      string          `json:"movieId"`
	DateOut      time.Time       `json:"dateOut"`
	DateReturned *time.Time      `json:"dateReturned,omitempty"`
	RentalFee    decimal.Decimal `json:"rentalFee"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewRental builds an open rental.  dateOut defaults to now.
func NewRental(customerID, movieID string, dateOut *time.Time, now time.Time) (*Rental, error) {
	out := now.UTC()
	if dateOut != nil {
		out = dateOut.UTC()
	}
	r := &Rental{
		ID:         NewID(),
		CustomerID: customerID,
		MovieID:    movieID,
		DateOut:    out,
		RentalFee:  decimal.Zero,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// State reports whether the rental is open or closed.
func (r *Rental) State() RentalState {
	if r.DateReturned == nil {
		return RentalOpen
	}
	return RentalClosed
}

// IsOpen is shorthand for State() == RentalOpen.
func (r *Rental) IsOpen() bool { return r.State() == RentalOpen }

// Validate checks references, date ordering and the fee.
func (r *Rental) Validate() error {
	if !IsValidID(r.CustomerID) {
		return invalid("customerId", "Invalid customer ID")
	}
	if !IsValidID(r.MovieID) {
		return invalid("movieId", "Invalid movie ID")
	}
	if r.DateOut.IsZero() || !storableTime(r.DateOut) {
		return invalid("dateOut", "Invalid date")
	}
	if r.DateReturned != nil {
		if !storableTime(*r.DateReturned) {
			return invalid("dateReturned", "Invalid date")
		}
		if r.DateReturned.Before(r.DateOut) {
			return invalid("dateReturned", "dateReturned must not be before dateOut")
		}
	}
	return ValidateRentalFee(r.RentalFee)
}

// RentalPatch carries the fields of an amendment.  Nil means "leave as is".
type RentalPatch struct {
	CustomerID   *string
	MovieID      *string
	DateOut      *time.Time
	DateReturned *time.Time
	RentalFee    *decimal.Decimal
}

// IsEmpty reports whether the patch changes nothing.
func (p RentalPatch) IsEmpty() bool {
	return p.CustomerID == nil && p.MovieID == nil && p.DateOut == nil &&
		p.DateReturned == nil && p.RentalFee == nil
}

// OnlyFee reports whether the patch touches nothing but the fee.
func (p RentalPatch) OnlyFee() bool {
	return p.CustomerID == nil && p.MovieID == nil && p.DateOut == nil &&
		p.DateReturned == nil && p.RentalFee != nil
}

// ComputeRentalFee charges rate for every started day between out and
// returned.  A return before or at the checkout instant costs nothing.
// Days are counted from Unix seconds, so spans longer than a
// time.Duration can hold are still exact.
func ComputeRentalFee(rate decimal.Decimal, out, returned time.Time) decimal.Decimal {
	if !returned.After(out) || rate.IsNegative() {
		return decimal.Zero
	}
	return rate.Mul(decimal.NewFromInt(startedDays(out, returned)))
}

// startedDays counts the 24h periods begun between out and returned,
// which must be after out.
func startedDays(out, returned time.Time) int64 {
	const day = 24 * 60 * 60
	secs := returned.Unix() - out.Unix()
	nanos := returned.Nanosecond() - out.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += 1e9
	}
	days := secs / day
	if secs%day != 0 || nanos > 0 {
		days++
	}
	return days
}

// MovieSummary is the movie shape embedded in rental responses.
type MovieSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// RentalDetail is a rental with its customer and movie resolved to
// display summaries.
type RentalDetail struct {
	ID           string          `json:"id"`
	Customer     CustomerSummary `json:"customer"`
	Movie        MovieSummary    `json:"movie"`
	DateOut      time.Time       `json:"dateOut"`
	DateReturned *time.Time      `json:"dateReturned,omitempty"`
	RentalFee    decimal.Decimal `json:"rentalFee"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
