package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/movie-rental/internal/logger"
)

// TxFn is a unit of work executed inside a database transaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTx begins a transaction, runs fn and commits when fn returns nil.
// The transaction is rolled back when fn returns an error or panics; a
// panic is re-raised after the rollback. Errors returned by fn are passed
// through unchanged so callers can match their sentinels. Failures to
// begin or commit are wrapped with ErrTransactionFailed.
func RunInTx(ctx context.Context, db *sql.DB, fn TxFn) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("rollback after panic failed", "error", rbErr)
			}
			panic(p)
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Error("transaction rollback failed", "error", rbErr, "cause", err)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}
	committed = true
	return nil
}
