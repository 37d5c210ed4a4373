package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-review/internal/database"
	"github.com/iliyamo/movie-review/internal/model"
)

// reviewSelect joins the author's name and the movie title so list pages and
// the activity feed need no follow-up queries.
const reviewSelect = `SELECT r.id, r.user_id, r.movie_id, r.rating, r.comment, r.status, r.admin_response,
	r.created_at, r.updated_at, a.first_name, a.last_name, m.title
	FROM reviews r
	JOIN accounts a ON a.id = r.user_id
	JOIN movies m   ON m.id = r.movie_id`

// ReviewRepo manages persistence for reviews.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create inserts a pending review.  The (user_id, movie_id) unique index is
// the final arbiter of the one-review-per-movie rule: a concurrent duplicate
// that slipped past Exists is reported as ErrAlreadyReviewed.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	if rv.Status == "" {
		rv.Status = model.StatusPending
	}
	stamp(&rv.CreatedAt, &rv.UpdatedAt)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (user_id, movie_id, rating, comment, status, admin_response, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rv.UserID, rv.MovieID, rv.Rating, rv.Comment, string(rv.Status), rv.AdminResponse, rv.CreatedAt, rv.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyReviewed
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// Exists reports whether userID already reviewed movieID.
func (r *ReviewRepo) Exists(ctx context.Context, userID, movieID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE user_id = ? AND movie_id = ?", userID, movieID).Scan(&n)
	return n > 0, err
}

// GetByID retrieves a review with its joined display columns.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+" WHERE r.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

// Transition moves a pending review to status.  When response is valid it is
// stored as the admin response; otherwise the existing response is kept.
// The update is conditional on the review still being pending, so two
// moderators racing on the same review cannot both win.  Returns
// ErrReviewNotFound or ErrAlreadyModerated when nothing was updated.
func (r *ReviewRepo) Transition(ctx context.Context, id uint64, status model.ReviewStatus, response sql.NullString) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET status = ?, admin_response = COALESCE(?, admin_response), updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(status), response, now(), id, string(model.StatusPending))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var current string
	err = r.db.QueryRowContext(ctx, "SELECT status FROM reviews WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyModerated
}

// ListAll returns every review, newest first.
func (r *ReviewRepo) ListAll(ctx context.Context) ([]model.Review, error) {
	return r.query(ctx, reviewSelect+" ORDER BY r.created_at DESC, r.id DESC")
}

// ListByMovie returns the reviews of one movie, newest first.
func (r *ReviewRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error) {
	return r.query(ctx, reviewSelect+" WHERE r.movie_id = ? ORDER BY r.created_at DESC, r.id DESC", movieID)
}

// ListByUser returns the reviews written by one user, newest first.
func (r *ReviewRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Review, error) {
	return r.query(ctx, reviewSelect+" WHERE r.user_id = ? ORDER BY r.created_at DESC, r.id DESC", userID)
}

// RecentCreated returns the limit most recently submitted reviews.
func (r *ReviewRepo) RecentCreated(ctx context.Context, limit int) ([]model.Review, error) {
	return r.query(ctx, reviewSelect+" ORDER BY r.created_at DESC, r.id DESC LIMIT ?", limit)
}

// RecentUpdated returns the limit most recently updated reviews whose
// updated_at is strictly later than created_at.
func (r *ReviewRepo) RecentUpdated(ctx context.Context, limit int) ([]model.Review, error) {
	return r.query(ctx, reviewSelect+
		" WHERE r.updated_at > r.created_at ORDER BY r.updated_at DESC, r.id DESC LIMIT ?", limit)
}

// Count returns the number of reviews.
func (r *ReviewRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews").Scan(&n)
	return n, err
}

// CountByUser returns how many reviews a user has written.
func (r *ReviewRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

// CountReviewedMovies returns the number of distinct movies with at least
// one review.
func (r *ReviewRepo) CountReviewedMovies(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT movie_id) FROM reviews").Scan(&n)
	return n, err
}

func (r *ReviewRepo) query(ctx context.Context, q string, args ...any) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanReview(s rowScanner) (*model.Review, error) {
	var rv model.Review
	if err := s.Scan(&rv.ID, &rv.UserID, &rv.MovieID, &rv.Rating, &rv.Comment, &rv.Status,
		&rv.AdminResponse, &rv.CreatedAt, &rv.UpdatedAt,
		&rv.UserFirstName, &rv.UserLastName, &rv.MovieTitle); err != nil {
		return nil, err
	}
	return &rv, nil
}
