package model

import (
	"database/sql"
	"time"
)

// Movie mirrors the `movies` table.  Optional columns use sql.Null* types so
// that "not provided" survives a round trip.
type Movie struct {
	ID               uint64
	Title            string
	Genre            string
	AdditionalGenres sql.NullString
	ReleaseDate      time.Time // always January 1 of the release year
	Director         string
	Cast             sql.NullString
	Duration         sql.NullInt64   // minutes
	Certification    sql.NullString  // e.g. PG-13
	Score            sql.NullFloat64 // e.g. 7.9
	Description      string
	PosterURL        sql.NullString
	TrailerURL       sql.NullString
	Language         string
	Country          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReleaseYear returns the year component of ReleaseDate, or 0 if unset.
func (m *Movie) ReleaseYear() int {
	if m.ReleaseDate.IsZero() {
		return 0
	}
	return m.ReleaseDate.Year()
}

// ReleaseDateForYear normalises a release year to January 1 of that year.
func ReleaseDateForYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
