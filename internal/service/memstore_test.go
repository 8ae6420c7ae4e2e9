package service

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/iliyamo/movie-rental/internal/model"
	"github.com/iliyamo/movie-rental/internal/queue"
	"github.com/iliyamo/movie-rental/internal/repository"
)

// memStore is a serializable in-memory LedgerStore. Each transaction works
// on copies of the movie and rental tables; the copies replace the
// originals only when fn succeeds and no commit failure is injected.
type memStore struct {
	mu        sync.Mutex
	movies    map[string]model.Movie
	customers map[string]model.Customer
	rentals   map[string]model.Rental

	failOn    map[string]error // tx operation name -> injected error
	commitErr error
	txCount   int
	lockOrder []string // movie ids in the order the last tx locked them
}

func newMemStore() *memStore {
	return &memStore{
		movies:    map[string]model.Movie{},
		customers: map[string]model.Customer{},
		rentals:   map[string]model.Rental{},
		failOn:    map[string]error{},
	}
}

func (s *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++
	s.lockOrder = nil

	tx := &memTx{s: s, movies: maps.Clone(s.movies), rentals: maps.Clone(s.rentals)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if s.commitErr != nil {
		return fmt.Errorf("%w: commit: %v", repository.ErrTransactionFailed, s.commitErr)
	}
	s.movies, s.rentals = tx.movies, tx.rentals
	return nil
}

func (s *memStore) ListRentals(ctx context.Context) ([]model.RentalDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.RentalDetail, 0, len(s.rentals))
	for _, r := range s.rentals {
		out = append(out, s.detail(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateOut.After(out[j].DateOut) })
	return out, nil
}

func (s *memStore) RentalDetail(ctx context.Context, id string) (*model.RentalDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	d := s.detail(r)
	return &d, nil
}

func (s *memStore) detail(r model.Rental) model.RentalDetail {
	c := s.customers[r.CustomerID]
	m := s.movies[r.MovieID]
	return model.RentalDetail{
		ID:           r.ID,
		Customer:     model.CustomerSummary{ID: c.ID, Username: c.Username},
		Movie:        model.MovieSummary{ID: m.ID, Title: m.Title},
		DateOut:      r.DateOut,
		DateReturned: r.DateReturned,
		RentalFee:    r.RentalFee,
	}
}

func (s *memStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movies[id].NumberInStock
}

func (s *memStore) rentalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rentals)
}

func (s *memStore) rental(id string) (model.Rental, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rentals[id]
	return r, ok
}

type memTx struct {
	s       *memStore
	movies  map[string]model.Movie
	rentals map[string]model.Rental
}

func (t *memTx) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.s.failOn[op]
}

func (t *memTx) MovieForUpdate(ctx context.Context, id string) (*model.Movie, error) {
	if err := t.check(ctx, "MovieForUpdate"); err != nil {
		return nil, err
	}
	t.s.lockOrder = append(t.s.lockOrder, id)
	m, ok := t.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &m, nil
}

func (t *memTx) Customer(ctx context.Context, id string) (*model.Customer, error) {
	if err := t.check(ctx, "Customer"); err != nil {
		return nil, err
	}
	c, ok := t.s.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (t *memTx) DecrementStock(ctx context.Context, movieID string) error {
	if err := t.check(ctx, "DecrementStock"); err != nil {
		return err
	}
	m, ok := t.movies[movieID]
	if !ok || m.NumberInStock <= 0 {
		return repository.ErrOutOfStock
	}
	m.NumberInStock--
	t.movies[movieID] = m
	return nil
}

func (t *memTx) IncrementStock(ctx context.Context, movieID string) error {
	if err := t.check(ctx, "IncrementStock"); err != nil {
		return err
	}
	m, ok := t.movies[movieID]
	if !ok {
		return repository.ErrMovieNotFound
	}
	m.NumberInStock++
	t.movies[movieID] = m
	return nil
}

func (t *memTx) RentalForUpdate(ctx context.Context, id string) (*model.Rental, error) {
	if err := t.check(ctx, "RentalForUpdate"); err != nil {
		return nil, err
	}
	r, ok := t.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	return &r, nil
}

func (t *memTx) InsertRental(ctx context.Context, r *model.Rental) error {
	if err := t.check(ctx, "InsertRental"); err != nil {
		return err
	}
	t.rentals[r.ID] = *r
	return nil
}

func (t *memTx) UpdateRental(ctx context.Context, r *model.Rental) error {
	if err := t.check(ctx, "UpdateRental"); err != nil {
		return err
	}
	if _, ok := t.rentals[r.ID]; !ok {
		return repository.ErrRentalNotFound
	}
	t.rentals[r.ID] = *r
	return nil
}

func (t *memTx) DeleteRental(ctx context.Context, id string) error {
	if err := t.check(ctx, "DeleteRental"); err != nil {
		return err
	}
	if _, ok := t.rentals[id]; !ok {
		return repository.ErrRentalNotFound
	}
	delete(t.rentals, id)
	return nil
}

// recordingPublisher keeps every event it is given.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.RentalEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.RentalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.RentalEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.RentalEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
