package service

import (
	"context"

	"github.com/iliyamo/movie-review/internal/model"
)

// DashboardStats are the counters on the admin home page.
type DashboardStats struct {
	TotalMovies    int `json:"total_movies"`
	TotalUsers     int `json:"total_users"`
	TotalReviews   int `json:"total_reviews"`
	MoviesReviewed int `json:"movies_reviewed_count"`
}

// Stats computes DashboardStats.
func (s *ActivityService) Stats(ctx context.Context) (DashboardStats, error) {
	var st DashboardStats
	var err error
	if st.TotalMovies, err = s.movies.Count(ctx); err != nil {
		return st, err
	}
	if st.TotalUsers, err = s.accounts.CountByKind(ctx, model.KindUser); err != nil {
		return st, err
	}
	if st.TotalReviews, err = s.reviews.Count(ctx); err != nil {
		return st, err
	}
	st.MoviesReviewed, err = s.reviews.CountReviewedMovies(ctx)
	return st, err
}
