package service

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/queue"
)

func TestCreateMovie(t *testing.T) {
	env := setupTestEnv(t)
	in := validMovie("The Shawshank Redemption")
	in.Duration = "142"
	in.IMDbRating = "9.3"
	in.Rating = "R"

	m, err := env.catalog.CreateMovie(context.Background(), in)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, model.ReleaseDateForYear(1994), m.ReleaseDate)
	assert.Equal(t, int64(142), m.Duration.Int64)
	assert.InDelta(t, 9.3, m.Score.Float64, 0.001)
	assert.Equal(t, "R", m.Certification.String)
	assert.False(t, m.PosterURL.Valid)
	assert.Equal(t, []string{queue.MovieCreated}, env.events.types())
}

func TestCreateMovieRequiredFieldsInOrder(t *testing.T) {
	env := setupTestEnv(t)
	in := validMovie("Heat")
	in.Director = ""
	in.Country = ""
	_, err := env.catalog.CreateMovie(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "director is required.", err.Error())

	in = validMovie("Heat")
	in.ReleaseYear = ""
	_, err = env.catalog.CreateMovie(context.Background(), in)
	assert.Equal(t, "releaseYear is required.", err.Error())
}

func TestCreateMovieRejectsBadNumbers(t *testing.T) {
	env := setupTestEnv(t)
	for _, mod := range []func(*MovieInput){
		func(in *MovieInput) { in.ReleaseYear = "nineteen" },
		func(in *MovieInput) { in.Duration = "2h" },
		func(in *MovieInput) { in.IMDbRating = "great" },
		func(in *MovieInput) { in.IMDbRating = "11" },
	} {
		in := validMovie("Heat")
		mod(&in)
		_, err := env.catalog.CreateMovie(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation)
	}
	n, err := env.movies.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateMovieDuplicateTitleIgnoringCase(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	_, err := env.catalog.CreateMovie(ctx, validMovie("Inception"))
	require.NoError(t, err)

	_, err = env.catalog.CreateMovie(ctx, validMovie("INCEPTION"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, `A movie with the title "INCEPTION" already exists.`, err.Error())

	n, err := env.movies.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMovieInputAcceptsNumbersInJSON(t *testing.T) {
	var in MovieInput
	body := `{"title":"Up","genre":"Animation","releaseYear":2009,"director":"Pete Docter",
		"description":"Balloons","language":"English","country":"USA","duration":96,"imdbRating":8.3}`
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	assert.Equal(t, "2009", in.ReleaseYear.String())
	assert.Equal(t, "96", in.Duration.String())
	assert.Equal(t, "8.3", in.IMDbRating.String())

	require.NoError(t, json.Unmarshal([]byte(`{"duration":null}`), &in))
	assert.Empty(t, in.Duration.String())
	assert.Error(t, json.Unmarshal([]byte(`{"duration":[1]}`), &in))
}

func TestUpdateMovie(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	in := validMovie("Alien")
	in.Duration = "117"
	m, err := env.catalog.CreateMovie(ctx, in)
	require.NoError(t, err)
	_, err = env.catalog.CreateMovie(ctx, validMovie("Aliens"))
	require.NoError(t, err)

	director := "Ridley Scott"
	year := "1979"
	empty := ""
	got, err := env.catalog.UpdateMovie(ctx, m.ID, MoviePatch{Director: &director, ReleaseYear: &year, Duration: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Ridley Scott", got.Director)
	assert.Equal(t, 1979, got.ReleaseYear())
	assert.Equal(t, int64(117), got.Duration.Int64, "blank duration leaves the value")
	assert.Equal(t, "Drama", got.Genre, "unsupplied fields are unchanged")

	taken := "aliens"
	_, err = env.catalog.UpdateMovie(ctx, m.ID, MoviePatch{Title: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	same := "ALIEN"
	got, err = env.catalog.UpdateMovie(ctx, m.ID, MoviePatch{Title: &same})
	require.NoError(t, err, "retitling a movie onto its own title is allowed")
	assert.Equal(t, "ALIEN", got.Title)

	_, err = env.catalog.UpdateMovie(ctx, m.ID, MoviePatch{Genre: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.catalog.UpdateMovie(ctx, 404, MoviePatch{Director: &director})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, MsgMovieMissing, err.Error())
}

func TestDeleteMovieRemovesReviews(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	m, err := env.catalog.CreateMovie(ctx, validMovie("Memento"))
	require.NoError(t, err)
	u, err := env.auth.Signup(ctx, validSignup("fan@example.com"))
	require.NoError(t, err)
	_, err = env.review.Submit(ctx, u.ID, ReviewInput{MovieID: strconv.FormatUint(m.ID, 10), Rating: "5", Comment: "Backwards!"})
	require.NoError(t, err)

	deleted, err := env.catalog.DeleteMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Memento", deleted.Title)

	left, err := env.reviews.ListByMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = env.catalog.DeleteMovie(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, env.events.types(), queue.MovieDeleted)
}
