package model

import (
	"strings"
	"time"
)

// Customer is a person who rents movies.  The rental ledger only ever
// checks that a customer exists.
type Customer struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	IsGold    bool      `json:"isGold"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCustomer validates the fields and builds a customer with a fresh id.
func NewCustomer(username, email string, phone *string, isGold bool) (*Customer, error) {
	c := &Customer{
		ID:       NewID(),
		Username: strings.TrimSpace(username),
		Email:    NormalizeEmail(email),
		Phone:    phone,
		IsGold:   isGold,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks required fields and lengths.
func (c *Customer) Validate() error {
	if c.Username == "" {
		return invalid("username", "username is required")
	}
	if !lengthBetween(c.Username, 3, 255) {
		return invalid("username", "username must be at least three characters long")
	}
	if c.Email == "" {
		return invalid("email", "Email is required")
	}
	if !validEmail(c.Email) {
		return invalid("email", "email must be a valid email address")
	}
	if c.Phone != nil && len(strings.TrimSpace(*c.Phone)) < 9 {
		return invalid("phone", "Phone must be at least 9 characters")
	}
	return nil
}

// CustomerSummary is the customer shape embedded in rental responses.
type CustomerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
