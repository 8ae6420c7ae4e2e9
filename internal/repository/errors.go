// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// rental ledger and the handlers to distinguish between failure scenarios
// without inspecting driver errors. For example, ErrOutOfStock signals that
// a conditional stock decrement matched no row, while ErrConflict signals
// that a delete was refused because other rows still reference the record.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is the base sentinel for every "no such row" error. The
// entity specific errors below wrap it, so errors.Is(err, ErrNotFound)
// holds for all of them.
var ErrNotFound = errors.New("not found")

var (
	ErrMovieNotFound    = fmt.Errorf("movie %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrRentalNotFound   = fmt.Errorf("rental %w", ErrNotFound)
	ErrGenreNotFound    = fmt.Errorf("genre %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
)

// ErrOutOfStock is returned when a movie has no copy left to rent.
var ErrOutOfStock = errors.New("movie not in stock")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a movie that still has
// rentals. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a unique key (username, email, genre
// name) is already taken.
var ErrDuplicate = errors.New("already exists")

// ErrTransactionFailed wraps failures of the transaction machinery itself
// (begin, commit) as opposed to errors returned by the work function.
var ErrTransactionFailed = errors.New("transaction failed")

// ErrInvalidToken is returned for unknown, revoked or expired refresh tokens.
var ErrInvalidToken = errors.New("invalid refresh token")

// MySQL server error numbers the repositories translate.
const (
	mysqlErrDupEntry        = 1062
	mysqlErrRowIsReferenced = 1451
	mysqlErrNoReferencedRow = 1452
)

// mapMySQLError translates constraint violations into sentinels and passes
// any other error through unchanged.
func mapMySQLError(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlErrDupEntry:
		return fmt.Errorf("%w: %s", ErrDuplicate, me.Message)
	case mysqlErrRowIsReferenced, mysqlErrNoReferencedRow:
		return fmt.Errorf("%w: %s", ErrConflict, me.Message)
	}
	return err
}
