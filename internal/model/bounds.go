package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Storage limits of the MySQL columns backing the models.
var (
	// DATETIME(3) range.
	MinStoredTime = time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxStoredTime = time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC)

	// DECIMAL(10,2) for rental fees.
	MaxRentalFee = decimal.RequireFromString("99999999.99")
)

// moneyScale is the number of decimal places every amount is stored with.
const moneyScale = 2

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// storableTime reports whether t fits a DATETIME column.
func storableTime(t time.Time) bool {
	t = t.UTC()
	return !t.Before(MinStoredTime) && !t.After(MaxStoredTime)
}

// storableAmount reports whether d is within 0..max and has at most two
// decimal places.
func storableAmount(d, max decimal.Decimal) bool {
	return !d.IsNegative() && !d.GreaterThan(max) && d.Equal(d.Round(moneyScale))
}

// ValidateRentalFee checks a client-supplied fee against the fee column.
func ValidateRentalFee(fee decimal.Decimal) error {
	if !storableAmount(fee, MaxRentalFee) {
		return invalid("rentalFee", "rentalFee has an invalid amount")
	}
	return nil
}
