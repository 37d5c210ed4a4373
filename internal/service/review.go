package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/queue"
	"github.com/iliyamo/movie-review/internal/repository"
)

const (
	MsgReviewFields    = "All fields are required."
	MsgRatingRange     = "Rating must be a whole number between 1 and 5."
	MsgAlreadyReviewed = "You have already reviewed this movie."
	MsgReviewMissing   = "Review not found."
	MsgReasonRequired  = "Reason is required."
	MsgAlreadyDecided  = "Review has already been moderated."
)

// ReviewInput is the submit-review form.  Values arrive as strings from
// either the form or the URL.
type ReviewInput struct {
	MovieID string `json:"movie_id" form:"movie_id"`
	Rating  string `json:"rating" form:"rating"`
	Comment string `json:"comment" form:"comment"`
}

// ReviewService runs the review lifecycle: users submit pending reviews and
// admins approve or reject them.  Both transitions are final.
type ReviewService struct {
	reviews *repository.ReviewRepo
	movies  *repository.MovieRepo
	events  EventPublisher
}

func NewReviewService(reviews *repository.ReviewRepo, movies *repository.MovieRepo, events EventPublisher) *ReviewService {
	return &ReviewService{reviews: reviews, movies: movies, events: events}
}

// Submit records a pending review by userID.  A user reviews each movie at
// most once.
func (s *ReviewService) Submit(ctx context.Context, userID uint64, in ReviewInput) (*model.Review, error) {
	movieRaw := strings.TrimSpace(in.MovieID)
	ratingRaw := strings.TrimSpace(in.Rating)
	comment := strings.TrimSpace(in.Comment)
	if movieRaw == "" || ratingRaw == "" || comment == "" {
		return nil, validationError("%s", MsgReviewFields)
	}
	rating, err := strconv.Atoi(ratingRaw)
	if err != nil || rating < 1 || rating > 5 {
		return nil, validationError("%s", MsgRatingRange)
	}
	movieID, err := strconv.ParseUint(movieRaw, 10, 64)
	if err != nil {
		return nil, notFoundError(MsgMovieMissing)
	}
	m, err := s.movies.GetByID(ctx, movieID)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return nil, notFoundError(MsgMovieMissing)
	}
	if err != nil {
		return nil, err
	}
	done, err := s.reviews.Exists(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, conflictError("%s", MsgAlreadyReviewed)
	}

	rv := &model.Review{UserID: userID, MovieID: movieID, Rating: rating, Comment: comment, MovieTitle: m.Title}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrAlreadyReviewed) {
			return nil, conflictError("%s", MsgAlreadyReviewed)
		}
		return nil, err
	}
	emit(ctx, s.events, queue.Event{Type: queue.ReviewSubmitted, ReviewID: rv.ID, MovieID: movieID,
		AccountID: userID, Title: m.Title, Detail: strconv.Itoa(rating) + "/5"})
	return rv, nil
}

// Approve publishes a pending review.  The admin response is left as is.
func (s *ReviewService) Approve(ctx context.Context, id uint64) error {
	if err := s.transition(ctx, id, model.StatusApproved, sql.NullString{}); err != nil {
		return err
	}
	emit(ctx, s.events, queue.Event{Type: queue.ReviewApproved, ReviewID: id})
	return nil
}

// Reject turns down a pending review and stores reason as the admin
// response.
func (s *ReviewService) Reject(ctx context.Context, id uint64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validationError("%s", MsgReasonRequired)
	}
	if err := s.transition(ctx, id, model.StatusRejected, sql.NullString{String: reason, Valid: true}); err != nil {
		return err
	}
	emit(ctx, s.events, queue.Event{Type: queue.ReviewRejected, ReviewID: id, Detail: reason})
	return nil
}

func (s *ReviewService) transition(ctx context.Context, id uint64, to model.ReviewStatus, response sql.NullString) error {
	err := s.reviews.Transition(ctx, id, to, response)
	switch {
	case errors.Is(err, repository.ErrReviewNotFound):
		return notFoundError(MsgReviewMissing)
	case errors.Is(err, repository.ErrAlreadyModerated):
		return conflictError("%s", MsgAlreadyDecided)
	}
	return err
}

// Review returns one review.
func (s *ReviewService) Review(ctx context.Context, id uint64) (*model.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReviewNotFound) {
		return nil, notFoundError(MsgReviewMissing)
	}
	return rv, err
}

// ForMovie lists the reviews of a movie, newest first.
func (s *ReviewService) ForMovie(ctx context.Context, movieID uint64) ([]model.Review, error) {
	return s.reviews.ListByMovie(ctx, movieID)
}

// ForUser lists the reviews written by userID, newest first.
func (s *ReviewService) ForUser(ctx context.Context, userID uint64) ([]model.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

// HasReviewed reports whether userID already reviewed movieID.
func (s *ReviewService) HasReviewed(ctx context.Context, userID, movieID uint64) (bool, error) {
	return s.reviews.Exists(ctx, userID, movieID)
}

// All lists every review, newest first.
func (s *ReviewService) All(ctx context.Context) ([]model.Review, error) {
	return s.reviews.ListAll(ctx)
}

// CountForUser is the number of reviews userID has written.
func (s *ReviewService) CountForUser(ctx context.Context, userID uint64) (int, error) {
	return s.reviews.CountByUser(ctx, userID)
}
