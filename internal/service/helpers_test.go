package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-review/internal/database"
	"github.com/iliyamo/movie-review/internal/queue"
	"github.com/iliyamo/movie-review/internal/repository"
)

// recordingPublisher keeps published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type testEnv struct {
	accounts *repository.AccountRepo
	movies   *repository.MovieRepo
	reviews  *repository.ReviewRepo
	events   *recordingPublisher

	auth     *AuthService
	catalog  *CatalogService
	review   *ReviewService
	activity *ActivityService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))

	env := &testEnv{
		accounts: repository.NewAccountRepo(db),
		movies:   repository.NewMovieRepo(db),
		reviews:  repository.NewReviewRepo(db),
		events:   &recordingPublisher{},
	}
	env.auth = NewAuthService(env.accounts, env.events, bcrypt.MinCost)
	env.catalog = NewCatalogService(env.movies, env.events)
	env.review = NewReviewService(env.reviews, env.movies, env.events)
	env.activity = NewActivityService(env.movies, env.accounts, env.reviews)
	return env
}

func validSignup(email string) SignupInput {
	return SignupInput{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func validMovie(title string) MovieInput {
	return MovieInput{
		Title:       title,
		Genre:       "Drama",
		ReleaseYear: "1994",
		Director:    "Frank Darabont",
		Description: "Hope is a good thing.",
		Language:    "English",
		Country:     "USA",
	}
}
