// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Event types published by the services.
const (
	MovieCreated      = "movie.created"
	MovieUpdated      = "movie.updated"
	MovieDeleted      = "movie.deleted"
	ReviewSubmitted   = "review.submitted"
	ReviewApproved    = "review.approved"
	ReviewRejected    = "review.rejected"
	AccountRegistered = "account.registered"
)

// Event is published whenever the catalog, a review or the account list
// changes.  It carries enough information for downstream consumers to log
// or notify without querying the primary database; ids that do not apply to
// the event type are zero.
type Event struct {
	Type       string    `json:"type"`
	AccountID  uint64    `json:"account_id,omitempty"`
	MovieID    uint64    `json:"movie_id,omitempty"`
	ReviewID   uint64    `json:"review_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
