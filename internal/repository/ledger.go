package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-rental/internal/model"
)

// LedgerTx is the set of reads and writes the rental ledger performs
// inside one transaction. Every call on a LedgerTx belongs to the same
// transaction; nothing becomes visible to other readers before commit.
type LedgerTx interface {
	// MovieForUpdate reads the movie and locks it for the rest of the
	// transaction. Returns ErrMovieNotFound.
	MovieForUpdate(ctx context.Context, id string) (*model.Movie, error)
	// Customer returns ErrCustomerNotFound when absent.
	Customer(ctx context.Context, id string) (*model.Customer, error)
	// DecrementStock returns ErrOutOfStock when the counter is already zero.
	DecrementStock(ctx context.Context, movieID string) error
	IncrementStock(ctx context.Context, movieID string) error
	// RentalForUpdate reads and locks a rental. Returns ErrRentalNotFound.
	RentalForUpdate(ctx context.Context, id string) (*model.Rental, error)
	InsertRental(ctx context.Context, r *model.Rental) error
	UpdateRental(ctx context.Context, r *model.Rental) error
	DeleteRental(ctx context.Context, id string) error
}

// LedgerStore is the persistence port of the rental ledger.
type LedgerStore interface {
	// InTx runs fn inside a single transaction. fn's error is returned
	// unchanged after rollback; begin/commit failures wrap
	// ErrTransactionFailed.
	InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
	ListRentals(ctx context.Context) ([]model.RentalDetail, error)
	RentalDetail(ctx context.Context, id string) (*model.RentalDetail, error)
}

// SQLLedgerStore implements LedgerStore on MySQL through the movie,
// customer and rental repositories.
type SQLLedgerStore struct {
	db        *sql.DB
	movies    *MovieRepo
	customers *CustomerRepo
	rentals   *RentalRepo
}

// NewSQLLedgerStore wires the repositories sharing db into a LedgerStore.
func NewSQLLedgerStore(db *sql.DB, movies *MovieRepo, customers *CustomerRepo, rentals *RentalRepo) *SQLLedgerStore {
	return &SQLLedgerStore{db: db, movies: movies, customers: customers, rentals: rentals}
}

func (s *SQLLedgerStore) InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	return RunInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &sqlLedgerTx{tx: tx, s: s})
	})
}

func (s *SQLLedgerStore) ListRentals(ctx context.Context) ([]model.RentalDetail, error) {
	return s.rentals.ListDetails(ctx)
}

func (s *SQLLedgerStore) RentalDetail(ctx context.Context, id string) (*model.RentalDetail, error) {
	return s.rentals.GetDetail(ctx, id)
}

// sqlLedgerTx binds the repositories' Tx methods to one *sql.Tx.
type sqlLedgerTx struct {
	tx *sql.Tx
	s  *SQLLedgerStore
}

func (t *sqlLedgerTx) MovieForUpdate(ctx context.Context, id string) (*model.Movie, error) {
	return t.s.movies.GetByIDForUpdateTx(ctx, t.tx, id)
}

func (t *sqlLedgerTx) Customer(ctx context.Context, id string) (*model.Customer, error) {
	return t.s.customers.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlLedgerTx) DecrementStock(ctx context.Context, movieID string) error {
	return t.s.movies.DecrementStockTx(ctx, t.tx, movieID)
}

func (t *sqlLedgerTx) IncrementStock(ctx context.Context, movieID string) error {
	return t.s.movies.IncrementStockTx(ctx, t.tx, movieID)
}

func (t *sqlLedgerTx) RentalForUpdate(ctx context.Context, id string) (*model.Rental, error) {
	return t.s.rentals.GetByIDForUpdateTx(ctx, t.tx, id)
}

func (t *sqlLedgerTx) InsertRental(ctx context.Context, r *model.Rental) error {
	return t.s.rentals.CreateTx(ctx, t.tx, r)
}

func (t *sqlLedgerTx) UpdateRental(ctx context.Context, r *model.Rental) error {
	return t.s.rentals.UpdateTx(ctx, t.tx, r)
}

func (t *sqlLedgerTx) DeleteRental(ctx context.Context, id string) error {
	return t.s.rentals.DeleteTx(ctx, t.tx, id)
}
