// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/movie-rental/internal/model"
)

// RentalQueueName is the durable queue rental events are published to.
const RentalQueueName = "rental.events"

// RentalEventType names a committed rental state change.
type RentalEventType string

const (
	RentalOpened   RentalEventType = "rental.opened"
	RentalAmended  RentalEventType = "rental.amended"
	RentalReturned RentalEventType = "rental.returned"
	RentalDeleted  RentalEventType = "rental.deleted"
)

// RentalEvent is published after a rental write commits. It carries enough
// information for downstream consumers to log or notify without querying
// the primary database.
type RentalEvent struct {
	Type         RentalEventType `json:"type"`
	RentalID     string          `json:"rental_id"`
	CustomerID   string          `json:"customer_id"`
	MovieID      string          `json:"movie_id"`
	DateOut      string          `json:"date_out"`
	DateReturned string          `json:"date_returned,omitempty"`
	RentalFee    string          `json:"rental_fee"`
	OccurredAt   string          `json:"occurred_at"`
}

// NewRentalEvent snapshots r. Times are RFC 3339 in UTC.
func NewRentalEvent(t RentalEventType, r *model.Rental, at time.Time) RentalEvent {
	ev := RentalEvent{
		Type:       t,
		RentalID:   r.ID,
		CustomerID: r.CustomerID,
		MovieID:    r.MovieID,
		DateOut:    r.DateOut.UTC().Format(time.RFC3339),
		RentalFee:  r.RentalFee.StringFixed(2),
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
	if r.DateReturned != nil {
		ev.DateReturned = r.DateReturned.UTC().Format(time.RFC3339)
	}
	return ev
}

// LogLine renders the event as one human-friendly line, newline included.
func (e RentalEvent) LogLine() string {
	returned := "-"
	if e.DateReturned != "" {
		returned = e.DateReturned
	}
	return fmt.Sprintf("[%s] %s | rental_id=%s | customer_id=%s | movie_id=%s | date_out=%s | date_returned=%s | fee=%s\n",
		e.OccurredAt, e.Type, e.RentalID, e.CustomerID, e.MovieID, e.DateOut, returned, e.RentalFee)
}
