package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-review/internal/database"
	"github.com/iliyamo/movie-review/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))
	return db
}

func createTestAccount(t *testing.T, repo *AccountRepo, kind model.Kind, email string) *model.Account {
	t.Helper()
	a := &model.Account{Kind: kind, FirstName: "Test", LastName: string(kind), Email: email}
	require.NoError(t, repo.Create(context.Background(), a, "secret1", bcrypt.MinCost))
	return a
}

func createTestMovie(t *testing.T, repo *MovieRepo, title string, created time.Time) *model.Movie {
	t.Helper()
	m := &model.Movie{
		Title:       title,
		Genre:       "Drama",
		ReleaseDate: model.ReleaseDateForYear(1995),
		Director:    "Test Director",
		Description: "A test movie",
		Language:    "English",
		Country:     "USA",
		CreatedAt:   created,
	}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}
