package session

import (
	"context"
	"errors"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/repository"
)

// SQLStore keeps sessions in the sessions table.
type SQLStore struct {
	repo *repository.SessionRepo
}

func NewSQLStore(repo *repository.SessionRepo) *SQLStore { return &SQLStore{repo: repo} }

func (s *SQLStore) Save(ctx context.Context, sess model.Session) error {
	return s.repo.Store(ctx, sess)
}

func (s *SQLStore) Load(ctx context.Context, tokenHash string) (model.Session, error) {
	sess, err := s.repo.Get(ctx, tokenHash)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return model.Session{}, ErrNotFound
	}
	return sess, err
}

func (s *SQLStore) Delete(ctx context.Context, tokenHash string) error {
	return s.repo.Delete(ctx, tokenHash)
}

func (s *SQLStore) DeleteForAccount(ctx context.Context, accountID uint64) error {
	return s.repo.DeleteForAccount(ctx, accountID)
}

func (s *SQLStore) Rename(ctx context.Context, accountID uint64, name string) error {
	return s.repo.Rename(ctx, accountID, name)
}
