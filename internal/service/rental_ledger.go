// Package service holds the rental ledger: the only component allowed to
// change a movie's stock counter as a side effect of a rental write.
//
// Every mutating operation runs inside one store transaction. Reads that
// decide the outcome (movie stock, rental state) lock their rows first, so
// two concurrent requests on the same movie or rental are serialized by
// the database rather than by in-process locks.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iliyamo/movie-rental/internal/logger"
	"github.com/iliyamo/movie-rental/internal/model"
	"github.com/iliyamo/movie-rental/internal/queue"
	"github.com/iliyamo/movie-rental/internal/repository"
)

// publishTimeout bounds event delivery after a commit.
const publishTimeout = 3 * time.Second

// RentalLedger implements the rental lifecycle.
type RentalLedger struct {
	store repository.LedgerStore
	pub   EventPublisher
	log   *slog.Logger
	now   func() time.Time
}

// Option customizes a RentalLedger.
type Option func(*RentalLedger)

// WithClock overrides the time source used for default dateOut values.
func WithClock(now func() time.Time) Option {
	return func(l *RentalLedger) { l.now = now }
}

// WithLogger sets the ledger's logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *RentalLedger) { l.log = log }
}

// NewRentalLedger builds a ledger over store. A nil publisher disables events.
func NewRentalLedger(store repository.LedgerStore, pub EventPublisher, opts ...Option) *RentalLedger {
	if pub == nil {
		pub = NopPublisher{}
	}
	l := &RentalLedger{
		store: store,
		pub:   pub,
		log:   logger.WithService("rental-ledger"),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// CreateRental checks out one copy of movieID to customerID. The movie row
// is locked, existence and stock are checked, then the rental insert and
// the stock decrement run in the same transaction.
func (l *RentalLedger) CreateRental(ctx context.Context, customerID, movieID string, dateOut *time.Time) (*model.Rental, error) {
	customerID, movieID = model.NormalizeID(customerID), model.NormalizeID(movieID)
	if !model.IsValidID(movieID) {
		return nil, errMovieNotFound
	}
	if !model.IsValidID(customerID) {
		return nil, errCustomerNotFound
	}
	rental, err := model.NewRental(customerID, movieID, dateOut, l.now())
	if err != nil {
		return nil, FromStore(err)
	}

	err = l.store.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		movie, err := tx.MovieForUpdate(ctx, movieID)
		if err != nil {
			return err
		}
		if _, err := tx.Customer(ctx, customerID); err != nil {
			return err
		}
		if !movie.InStock() {
			return repository.ErrOutOfStock
		}
		if err := tx.InsertRental(ctx, rental); err != nil {
			return err
		}
		return tx.DecrementStock(ctx, movieID)
	})
	if err != nil {
		return nil, l.txFailed(ctx, "create rental", err)
	}

	l.log.InfoContext(ctx, "rental opened", "rental_id", rental.ID, "movie_id", movieID, "customer_id", customerID)
	l.publish(ctx, queue.RentalOpened, rental)
	return rental, nil
}

// AmendRental applies patch to an existing rental.
//
// A closed rental only accepts a rentalFee correction. On an open rental a
// movie change moves one copy back to the old movie and takes one from
// the new movie; setting dateReturned closes the rental, computes the fee
// when none is given and puts the copy back in stock. All of it commits
// together or not at all.
func (l *RentalLedger) AmendRental(ctx context.Context, id string, patch model.RentalPatch) (*model.Rental, error) {
	id = model.NormalizeID(id)
	if patch.MovieID != nil {
		patch.MovieID = ptrTo(model.NormalizeID(*patch.MovieID))
	}
	if patch.CustomerID != nil {
		patch.CustomerID = ptrTo(model.NormalizeID(*patch.CustomerID))
	}
	if !model.IsValidID(id) {
		return nil, errRentalNotFound
	}
	if patch.MovieID != nil && !model.IsValidID(*patch.MovieID) {
		return nil, errMovieNotFound
	}
	if patch.CustomerID != nil && !model.IsValidID(*patch.CustomerID) {
		return nil, errCustomerNotFound
	}
	if patch.RentalFee != nil {
		if err := model.ValidateRentalFee(*patch.RentalFee); err != nil {
			return nil, FromStore(err)
		}
	}

	var (
		rental    *model.Rental
		eventType = queue.RentalAmended
	)
	err := l.store.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		r, err := tx.RentalForUpdate(ctx, id)
		if err != nil {
			return err
		}
		rental = r
		if patch.IsEmpty() {
			return nil
		}
		if !r.IsOpen() && !patch.OnlyFee() {
			return validationError("dateReturned", "rental already returned")
		}

		if patch.CustomerID != nil {
			if _, err := tx.Customer(ctx, *patch.CustomerID); err != nil {
				return err
			}
			r.CustomerID = *patch.CustomerID
		}

		// current is the locked movie the rental references after the patch.
		var current *model.Movie
		if patch.MovieID != nil {
			current, err = l.moveCopy(ctx, tx, r.MovieID, *patch.MovieID)
			if err != nil {
				return err
			}
			r.MovieID = current.ID
		}

		if patch.DateOut != nil {
			r.DateOut = patch.DateOut.UTC()
		}

		if patch.DateReturned != nil {
			returned := patch.DateReturned.UTC()
			if returned.Before(r.DateOut) {
				return validationError("dateReturned", "dateReturned must not be before dateOut")
			}
			if current == nil {
				if current, err = tx.MovieForUpdate(ctx, r.MovieID); err != nil {
					return err
				}
			}
			r.DateReturned = &returned
			if patch.RentalFee == nil {
				r.RentalFee = model.ComputeRentalFee(current.DailyRentalRate, r.DateOut, returned)
			}
			if err := tx.IncrementStock(ctx, r.MovieID); err != nil {
				return err
			}
			eventType = queue.RentalReturned
		}

		if patch.RentalFee != nil {
			r.RentalFee = *patch.RentalFee
		}
		if err := r.Validate(); err != nil {
			return err
		}
		return tx.UpdateRental(ctx, r)
	})
	if err != nil {
		return nil, l.txFailed(ctx, "amend rental", err)
	}

	if !patch.IsEmpty() {
		l.log.InfoContext(ctx, "rental amended", "rental_id", rental.ID, "event", string(eventType))
		l.publish(ctx, eventType, rental)
	}
	return rental, nil
}

// moveCopy locks both movies in ascending id order, then returns one copy
// to fromID and takes one from toID. It returns the locked target movie.
// When the ids are equal it only checks that the movie exists.
func (l *RentalLedger) moveCopy(ctx context.Context, tx repository.LedgerTx, fromID, toID string) (*model.Movie, error) {
	if fromID == toID {
		return tx.MovieForUpdate(ctx, toID)
	}

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*model.Movie, 2)
	for _, id := range []string{first, second} {
		m, err := tx.MovieForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = m
	}

	target := locked[toID]
	if !target.InStock() {
		return nil, repository.ErrOutOfStock
	}
	if err := tx.IncrementStock(ctx, fromID); err != nil {
		return nil, err
	}
	if err := tx.DecrementStock(ctx, toID); err != nil {
		return nil, err
	}
	target.NumberInStock--
	return target, nil
}

// DeleteRental hard-deletes a rental. Deleting an open rental returns its
// copy to stock in the same transaction.
func (l *RentalLedger) DeleteRental(ctx context.Context, id string) error {
	id = model.NormalizeID(id)
	if !model.IsValidID(id) {
		return errRentalNotFound
	}

	var deleted *model.Rental
	err := l.store.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		r, err := tx.RentalForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r.IsOpen() {
			err := tx.IncrementStock(ctx, r.MovieID)
			switch {
			case errors.Is(err, repository.ErrMovieNotFound):
				l.log.WarnContext(ctx, "open rental references a missing movie", "rental_id", r.ID, "movie_id", r.MovieID)
			case err != nil:
				return err
			}
		}
		deleted = r
		return tx.DeleteRental(ctx, id)
	})
	if err != nil {
		return l.txFailed(ctx, "delete rental", err)
	}

	l.log.InfoContext(ctx, "rental deleted", "rental_id", id)
	l.publish(ctx, queue.RentalDeleted, deleted)
	return nil
}

// ListRentals returns every rental, most recent dateOut first.
func (l *RentalLedger) ListRentals(ctx context.Context) ([]model.RentalDetail, error) {
	out, err := l.store.ListRentals(ctx)
	if err != nil {
		return nil, FromStore(err)
	}
	return out, nil
}

// GetRental returns one rental with its customer and movie summaries.
func (l *RentalLedger) GetRental(ctx context.Context, id string) (*model.RentalDetail, error) {
	id = model.NormalizeID(id)
	if !model.IsValidID(id) {
		return nil, errRentalNotFound
	}
	d, err := l.store.RentalDetail(ctx, id)
	if err != nil {
		return nil, FromStore(err)
	}
	return d, nil
}

func (l *RentalLedger) txFailed(ctx context.Context, op string, err error) error {
	se := fromTx(err)
	if se.Kind == KindTransactionFailure {
		l.log.ErrorContext(ctx, op+" failed", "error", err)
	}
	return se
}

// publish is best-effort: the rental is already committed.
func (l *RentalLedger) publish(ctx context.Context, t queue.RentalEventType, r *model.Rental) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := l.pub.Publish(ctx, queue.NewRentalEvent(t, r, l.now())); err != nil {
		l.log.WarnContext(ctx, "publish rental event failed", "event", string(t), "rental_id", r.ID, "error", err)
	}
}

func ptrTo[T any](v T) *T { return &v }
