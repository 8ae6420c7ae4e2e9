// Package repository contains data access logic for rentals. Writes are
// only exposed in their transaction-bound form because every rental write
// is paired with a stock update on the movie it references.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-rental/internal/model"
)

const rentalColumns = `id, customer_id, movie_id, date_out, date_returned, rental_fee, created_at, updated_at`

// rentalDetailSelect joins the customer and movie summaries onto each rental.
const rentalDetailSelect = `SELECT r.id, c.id, c.username, m.id, m.title,
       r.date_out, r.date_returned, r.rental_fee, r.created_at, r.updated_at
  FROM rentals r
  JOIN customers c ON c.id = r.customer_id
  JOIN movies m ON m.id = r.movie_id`

// RentalRepo manages persistence for rentals.
type RentalRepo struct {
	db *sql.DB
}

// NewRentalRepo constructs a RentalRepo with the given DB handle.
func NewRentalRepo(db *sql.DB) *RentalRepo {
	return &RentalRepo{db: db}
}

func scanRental(s rowScanner) (*model.Rental, error) {
	var r model.Rental
	err := s.Scan(&r.ID, &r.CustomerID, &r.MovieID, &r.DateOut, &r.DateReturned,
		&r.RentalFee, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}
	return &r, nil
}

func scanRentalDetail(s rowScanner) (*model.RentalDetail, error) {
	var d model.RentalDetail
	err := s.Scan(&d.ID, &d.Customer.ID, &d.Customer.Username, &d.Movie.ID, &d.Movie.Title,
		&d.DateOut, &d.DateReturned, &d.RentalFee, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}
	return &d, nil
}

// CreateTx inserts r using the provided transaction. The caller must
// commit or roll back.
func (r *RentalRepo) CreateTx(ctx context.Context, tx *sql.Tx, rental *model.Rental) error {
	now := time.Now().UTC()
	rental.CreatedAt, rental.UpdatedAt = now, now
	const q = `INSERT INTO rentals (` + rentalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, rental.ID, rental.CustomerID, rental.MovieID, rental.DateOut,
		rental.DateReturned, rental.RentalFee, rental.CreatedAt, rental.UpdatedAt)
	return mapMySQLError(err)
}

// GetByIDForUpdateTx reads a rental and locks its row until tx ends, so
// two amendments of the same rental are serialized.
func (r *RentalRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Rental, error) {
	const q = `SELECT ` + rentalColumns + ` FROM rentals WHERE id = ? FOR UPDATE`
	return scanRental(tx.QueryRowContext(ctx, q, id))
}

// UpdateTx overwrites every mutable column of rental.
func (r *RentalRepo) UpdateTx(ctx context.Context, tx *sql.Tx, rental *model.Rental) error {
	rental.UpdatedAt = time.Now().UTC()
	const q = `UPDATE rentals SET customer_id = ?, movie_id = ?, date_out = ?, date_returned = ?,
               rental_fee = ?, updated_at = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, rental.CustomerID, rental.MovieID, rental.DateOut,
		rental.DateReturned, rental.RentalFee, rental.UpdatedAt, rental.ID)
	if err != nil {
		return mapMySQLError(err)
	}
	return expectOneRow(res, ErrRentalNotFound)
}

// DeleteTx hard-deletes a rental.
func (r *RentalRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM rentals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrRentalNotFound)
}

// ListDetails returns all rentals, most recent dateOut first.
func (r *RentalRepo) ListDetails(ctx context.Context) ([]model.RentalDetail, error) {
	return r.queryDetails(ctx, rentalDetailSelect+` ORDER BY r.date_out DESC`)
}

// ListDetailsByCustomer returns the rentals of one customer, most recent first.
func (r *RentalRepo) ListDetailsByCustomer(ctx context.Context, customerID string) ([]model.RentalDetail, error) {
	return r.queryDetails(ctx, rentalDetailSelect+` WHERE r.customer_id = ? ORDER BY r.date_out DESC`, customerID)
}

// GetDetail returns one rental with its summaries or ErrRentalNotFound.
func (r *RentalRepo) GetDetail(ctx context.Context, id string) (*model.RentalDetail, error) {
	return scanRentalDetail(r.db.QueryRowContext(ctx, rentalDetailSelect+` WHERE r.id = ?`, id))
}

func (r *RentalRepo) queryDetails(ctx context.Context, q string, args ...any) ([]model.RentalDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RentalDetail, 0)
	for rows.Next() {
		d, err := scanRentalDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
