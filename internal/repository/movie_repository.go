package repository

// This file defines the movie catalog repository.  Title uniqueness is
// case-insensitive: the application checks with LOWER() before writing and
// the schema backs it with a unique index under a case-insensitive collation.

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-review/internal/database"
	"github.com/iliyamo/movie-review/internal/model"
)

const movieColumns = `id, title, genre, additional_genres, release_date, director, cast_text, duration,
	certification, score, description, poster_url, trailer_url, language, country, created_at, updated_at`

// MovieRepo encapsulates all database queries related to movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Create inserts a new movie.  On success m.ID and the timestamps are
// populated.  A title clash reported by the unique index yields
// ErrTitleExists.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	stamp(&m.CreatedAt, &m.UpdatedAt)
	const q = `INSERT INTO movies (title, genre, additional_genres, release_date, director, cast_text, duration,
		certification, score, description, poster_url, trailer_url, language, country, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		m.Title, m.Genre, m.AdditionalGenres, m.ReleaseDate, m.Director, m.Cast, m.Duration,
		m.Certification, m.Score, m.Description, m.PosterURL, m.TrailerURL, m.Language, m.Country,
		m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrTitleExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID fetches a movie by id.  It returns ErrMovieNotFound if no row is
// found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	return m, err
}

// TitleExists reports whether a movie other than excludeID already uses
// title, ignoring case.  Pass 0 to check against every movie.
func (r *MovieRepo) TitleExists(ctx context.Context, title string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM movies WHERE LOWER(title) = LOWER(?) AND id <> ?", title, excludeID).Scan(&n)
	return n > 0, err
}

// Update writes every mutable column of m and bumps updated_at.  It returns
// ErrMovieNotFound when no row matches and ErrTitleExists on a title clash.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	m.UpdatedAt = now()
	const q = `UPDATE movies SET title = ?, genre = ?, additional_genres = ?, release_date = ?, director = ?,
		cast_text = ?, duration = ?, certification = ?, score = ?, description = ?, poster_url = ?,
		trailer_url = ?, language = ?, country = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		m.Title, m.Genre, m.AdditionalGenres, m.ReleaseDate, m.Director, m.Cast, m.Duration,
		m.Certification, m.Score, m.Description, m.PosterURL, m.TrailerURL, m.Language, m.Country,
		m.UpdatedAt, m.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrTitleExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// DeleteWithReviews removes a movie and every review referencing it inside a
// single transaction, so a failure can never leave orphaned reviews.  It
// returns the number of reviews removed, or ErrMovieNotFound.
func (r *MovieRepo) DeleteWithReviews(ctx context.Context, id uint64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies WHERE id = ?", id).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, ErrMovieNotFound
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE movie_id = ?", id)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()
	if _, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

// ListAll returns all movies, newest first.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	return r.query(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY created_at DESC, id DESC")
}

// RecentCreated returns the limit most recently created movies.
func (r *MovieRepo) RecentCreated(ctx context.Context, limit int) ([]model.Movie, error) {
	return r.query(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY created_at DESC, id DESC LIMIT ?", limit)
}

// RecentUpdated returns the limit most recently updated movies that were
// edited after creation (updated_at strictly later than created_at).
func (r *MovieRepo) RecentUpdated(ctx context.Context, limit int) ([]model.Movie, error) {
	return r.query(ctx, "SELECT "+movieColumns+
		" FROM movies WHERE updated_at > created_at ORDER BY updated_at DESC, id DESC LIMIT ?", limit)
}

// Count returns the number of movies in the catalog.
func (r *MovieRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n)
	return n, err
}

func (r *MovieRepo) query(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	var m model.Movie
	if err := s.Scan(&m.ID, &m.Title, &m.Genre, &m.AdditionalGenres, &m.ReleaseDate, &m.Director,
		&m.Cast, &m.Duration, &m.Certification, &m.Score, &m.Description, &m.PosterURL,
		&m.TrailerURL, &m.Language, &m.Country, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
