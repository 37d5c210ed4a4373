package model

import (
	"database/sql"
	"time"
)

// ReviewStatus is the moderation stage of a review.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// Review mirrors the `reviews` table.  The joined display columns
// (UserFirstName, UserLastName, MovieTitle) are filled by list queries only.
type Review struct {
	ID            uint64
	UserID        uint64
	MovieID       uint64
	Rating        int
	Comment       string
	Status        ReviewStatus
	AdminResponse sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time

	UserFirstName string
	UserLastName  string
	MovieTitle    string
}
