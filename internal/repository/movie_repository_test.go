package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-review/internal/model"
)

func TestMovieRepo_CreateAndGet(t *testing.T) {
	repo := NewMovieRepo(setupTestDB(t))
	ctx := context.Background()

	m := createTestMovie(t, repo, "Heat", time.Time{})
	require.NotZero(t, m.ID)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Heat", got.Title)
	assert.Equal(t, 1995, got.ReleaseYear())
	assert.False(t, got.Duration.Valid)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	_, err = repo.GetByID(ctx, 4242)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMovieRepo_TitleUniqueIgnoringCase(t *testing.T) {
	repo := NewMovieRepo(setupTestDB(t))
	ctx := context.Background()
	m := createTestMovie(t, repo, "The Matrix", time.Time{})

	exists, err := repo.TitleExists(ctx, "the MATRIX", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TitleExists(ctx, "The Matrix", m.ID)
	require.NoError(t, err)
	assert.False(t, exists, "a movie does not clash with itself")

	dup := &model.Movie{Title: "THE MATRIX", Genre: "x", ReleaseDate: model.ReleaseDateForYear(1999),
		Director: "x", Description: "x", Language: "x", Country: "x"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrTitleExists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMovieRepo_UpdateMarksRecentUpdated(t *testing.T) {
	repo := NewMovieRepo(setupTestDB(t))
	ctx := context.Background()
	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	m := createTestMovie(t, repo, "Alien", created)
	createTestMovie(t, repo, "Aliens", created.Add(time.Minute))

	updated, err := repo.RecentUpdated(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, updated, "fresh rows are not updates")

	m.Director = "Ridley Scott"
	require.NoError(t, repo.Update(ctx, m))

	updated, err = repo.RecentUpdated(ctx, 10)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "Ridley Scott", updated[0].Director)
	assert.True(t, updated[0].UpdatedAt.After(updated[0].CreatedAt))

	recent, err := repo.RecentCreated(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Aliens", recent[0].Title)

	m.ID = 999
	assert.ErrorIs(t, repo.Update(ctx, m), ErrMovieNotFound)
}

func TestMovieRepo_DeleteWithReviews(t *testing.T) {
	db := setupTestDB(t)
	movies := NewMovieRepo(db)
	reviews := NewReviewRepo(db)
	accounts := NewAccountRepo(db)
	ctx := context.Background()

	m := createTestMovie(t, movies, "Se7en", time.Time{})
	other := createTestMovie(t, movies, "Zodiac", time.Time{})
	u1 := createTestAccount(t, accounts, model.KindUser, "a@example.com")
	u2 := createTestAccount(t, accounts, model.KindUser, "b@example.com")
	for _, rv := range []*model.Review{
		{UserID: u1.ID, MovieID: m.ID, Rating: 5, Comment: "great"},
		{UserID: u2.ID, MovieID: m.ID, Rating: 3, Comment: "ok"},
		{UserID: u1.ID, MovieID: other.ID, Rating: 4, Comment: "good"},
	} {
		require.NoError(t, reviews.Create(ctx, rv))
	}

	removed, err := movies.DeleteWithReviews(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	left, err := reviews.ListByMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = movies.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	n, err := reviews.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = movies.DeleteWithReviews(ctx, m.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}
