// Package repository defines the SQL data access layer and the sentinel
// errors it returns.  Handlers and services compare against these values with
// errors.Is to distinguish failure scenarios; raw driver errors never leave
// this package for the cases listed here.
package repository

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrMovieNotFound    = errors.New("movie not found")
	ErrTitleExists      = errors.New("movie title already exists")
	ErrReviewNotFound   = errors.New("review not found")
	ErrAlreadyReviewed  = errors.New("review already exists for user and movie")
	ErrAlreadyModerated = errors.New("review already moderated")
	ErrSessionNotFound  = errors.New("session not found")
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// now returns the current time in the precision both engines store.
func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// stamp fills zero creation/update times with the current time.  Callers may
// preset CreatedAt (imports, tests) and the value is kept.
func stamp(created, updated *time.Time) {
	if created.IsZero() {
		*created = now()
	}
	if updated.IsZero() || updated.Before(*created) {
		*updated = *created
	}
}
