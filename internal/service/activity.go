package service

import (
	"context"
	"sort"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/repository"
)

const (
	activityPerSource = 10
	activityLimit     = 20
)

// ActivityService assembles the recent-activity feed shown on the admin
// dashboard and served by /get_recent_activity/.
type ActivityService struct {
	movies   *repository.MovieRepo
	accounts *repository.AccountRepo
	reviews  *repository.ReviewRepo
}

func NewActivityService(movies *repository.MovieRepo, accounts *repository.AccountRepo, reviews *repository.ReviewRepo) *ActivityService {
	return &ActivityService{movies: movies, accounts: accounts, reviews: reviews}
}

// Recent returns up to 20 of the latest catalog, account and review events,
// newest first.
func (s *ActivityService) Recent(ctx context.Context) ([]model.Activity, error) {
	created, err := s.movies.RecentCreated(ctx, activityPerSource)
	if err != nil {
		return nil, err
	}
	edited, err := s.movies.RecentUpdated(ctx, activityPerSource)
	if err != nil {
		return nil, err
	}
	users, err := s.accounts.RecentByKind(ctx, model.KindUser, activityPerSource)
	if err != nil {
		return nil, err
	}
	admins, err := s.accounts.RecentByKind(ctx, model.KindAdmin, activityPerSource)
	if err != nil {
		return nil, err
	}
	submitted, err := s.reviews.RecentCreated(ctx, activityPerSource)
	if err != nil {
		return nil, err
	}
	moderated, err := s.reviews.RecentUpdated(ctx, activityPerSource)
	if err != nil {
		return nil, err
	}

	return MergeActivity(activityLimit,
		movieActivity(created, model.ActionCreated),
		movieActivity(edited, model.ActionUpdated),
		accountActivity(users, model.ActivityUser, model.ActionRegistered),
		reviewActivity(submitted, model.ActionSubmitted),
		reviewActivity(moderated, model.ActionUpdated),
		accountActivity(admins, model.ActivityAdmin, model.ActionCreated),
	), nil
}

// MergeActivity combines the feeds, stamps each entry with its effective
// time, sorts newest first and keeps at most limit entries.  Equal
// timestamps are ordered by type, then action, then descending id.
func MergeActivity(limit int, feeds ...[]model.Activity) []model.Activity {
	out := []model.Activity{}
	for _, f := range feeds {
		for _, a := range f {
			a.Timestamp = a.EffectiveTime()
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Action != b.Action {
			return a.Action < b.Action
		}
		return a.ID > b.ID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func movieActivity(ms []model.Movie, action string) []model.Activity {
	out := make([]model.Activity, 0, len(ms))
	for _, m := range ms {
		out = append(out, model.Activity{
			Type: model.ActivityMovie, Action: action, ID: m.ID, Title: m.Title,
			CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
		})
	}
	return out
}

func accountActivity(as []model.Account, typ, action string) []model.Activity {
	out := make([]model.Activity, 0, len(as))
	for _, a := range as {
		out = append(out, model.Activity{
			Type: typ, Action: action, ID: a.ID, FirstName: a.FirstName, LastName: a.LastName,
			Email: a.Email, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
		})
	}
	return out
}

func reviewActivity(rs []model.Review, action string) []model.Activity {
	out := make([]model.Activity, 0, len(rs))
	for _, r := range rs {
		out = append(out, model.Activity{
			Type: model.ActivityReview, Action: action, ID: r.ID, FirstName: r.UserFirstName,
			LastName: r.UserLastName, MovieTitle: r.MovieTitle, Rating: r.Rating,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		})
	}
	return out
}
