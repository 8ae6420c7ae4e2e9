package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/movie-rental/internal/model"
	"github.com/iliyamo/movie-rental/internal/repository"
)

// Kind discriminates service failures. Its string form is what clients see
// in the "kind" field of an error body.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindRentalNotFound     Kind = "rental_not_found"
	KindMovieNotFound      Kind = "movie_not_found"
	KindCustomerNotFound   Kind = "customer_not_found"
	KindNotFound           Kind = "not_found"
	KindOutOfStock         Kind = "out_of_stock"
	KindConflict           Kind = "conflict"
	KindUnauthorized       Kind = "unauthorized"
	KindTransactionFailure Kind = "transaction_failure"
	KindInternal           Kind = "internal_error"
)

// Error is the typed failure returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	Field   string // set for validation errors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func validationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Field: field}
}

var (
	errRentalNotFound   = newError(KindRentalNotFound, "Rental not found", repository.ErrRentalNotFound)
	errMovieNotFound    = newError(KindMovieNotFound, "Movie not found", repository.ErrMovieNotFound)
	errCustomerNotFound = newError(KindCustomerNotFound, "Customer not found", repository.ErrCustomerNotFound)
	errOutOfStock       = newError(KindOutOfStock, "Movie not in stock", repository.ErrOutOfStock)
)

// classify maps domain sentinels to their Kind. ok is false for errors
// that carry no domain meaning.
func classify(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &Error{Kind: KindValidation, Message: ve.Message, Field: ve.Field, Err: err}, true
	}
	switch {
	case errors.Is(err, repository.ErrRentalNotFound):
		return errRentalNotFound, true
	case errors.Is(err, repository.ErrMovieNotFound):
		return errMovieNotFound, true
	case errors.Is(err, repository.ErrCustomerNotFound):
		return errCustomerNotFound, true
	case errors.Is(err, repository.ErrNotFound):
		return newError(KindNotFound, "Not found", err), true
	case errors.Is(err, repository.ErrOutOfStock):
		return errOutOfStock, true
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrConflict):
		return newError(KindConflict, "Conflicting state", err), true
	}
	return nil, false
}

// fromTx maps an error surfaced by a transaction. Anything that is not a
// domain outcome means the paired write did not commit.
func fromTx(err error) *Error {
	if se, ok := classify(err); ok {
		return se
	}
	return newError(KindTransactionFailure, "Error committing rental changes", err)
}

// FromStore maps an error surfaced by a plain store call (outside a
// ledger transaction) to a service Error.
func FromStore(err error) *Error {
	if se, ok := classify(err); ok {
		return se
	}
	return newError(KindInternal, "Unexpected store failure", err)
}
