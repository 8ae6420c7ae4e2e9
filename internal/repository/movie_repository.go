// Package repository contains data access logic for the movie catalogue.
// Besides plain CRUD, MovieRepo exposes the transaction-bound stock
// operations the rental ledger relies on: a locking read and the
// conditional decrement that keeps number_in_stock from going negative.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-rental/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const movieColumns = `id, title, genre_id, genre_name, number_in_stock, daily_rental_rate, created_at, updated_at`

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	var m model.Movie
	err := s.Scan(&m.ID, &m.Title, &m.Genre.ID, &m.Genre.Name, &m.NumberInStock,
		&m.DailyRentalRate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts m. Timestamps are set here so the caller gets the stored
// values without a second read.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	const q = `INSERT INTO movies (` + movieColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.Title, m.Genre.ID, m.Genre.Name,
		m.NumberInStock, m.DailyRentalRate, m.CreatedAt, m.UpdatedAt)
	return mapMySQLError(err)
}

// GetByID returns the movie or ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`
	return scanMovie(r.db.QueryRowContext(ctx, q, id))
}

// List returns every movie ordered by title. An empty catalogue yields an
// empty, non-nil slice.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Update overwrites the editable columns of m.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	m.UpdatedAt = time.Now().UTC()
	const q = `UPDATE movies SET title = ?, genre_id = ?, genre_name = ?, number_in_stock = ?,
               daily_rental_rate = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Genre.ID, m.Genre.Name, m.NumberInStock,
		m.DailyRentalRate, m.UpdatedAt, m.ID)
	if err != nil {
		return mapMySQLError(err)
	}
	return expectOneRow(res, ErrMovieNotFound)
}

// Delete removes a movie. Rentals reference movies with ON DELETE RESTRICT,
// so a movie with rental history yields ErrConflict.
func (r *MovieRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return mapMySQLError(err)
	}
	return expectOneRow(res, ErrMovieNotFound)
}

// GetByIDForUpdateTx reads the movie and locks its row until tx ends.
func (r *MovieRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies WHERE id = ? FOR UPDATE`
	return scanMovie(tx.QueryRowContext(ctx, q, id))
}

// DecrementStockTx takes one copy out of stock. The guard in the WHERE
// clause makes the update a no-op at zero, reported as ErrOutOfStock.
func (r *MovieRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `UPDATE movies SET number_in_stock = number_in_stock - 1, updated_at = ?
               WHERE id = ? AND number_in_stock > 0`
	res, err := tx.ExecContext(ctx, q, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrOutOfStock)
}

// IncrementStockTx puts one copy back.
func (r *MovieRepo) IncrementStockTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `UPDATE movies SET number_in_stock = number_in_stock + 1, updated_at = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrMovieNotFound)
}

// expectOneRow turns a zero RowsAffected into notFound. The DSN sets
// clientFoundRows so unchanged-but-matched rows still count.
func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
