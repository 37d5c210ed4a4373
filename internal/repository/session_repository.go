package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-review/internal/model"
)

// SessionRepo persists browser sessions keyed by the SHA-256 hash of the
// opaque cookie token.  The raw token is never stored.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Store inserts a session row.
func (r *SessionRepo) Store(ctx context.Context, s model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, account_id, kind, role, name, expires_at, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		s.TokenHash, s.AccountID, string(s.Kind), s.Role, s.Name, s.ExpiresAt.UTC(), now())
	return err
}

// Get returns the session for tokenHash if it exists and has not expired.
func (r *SessionRepo) Get(ctx context.Context, tokenHash string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT token_hash, account_id, kind, role, name, expires_at FROM sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&s.TokenHash, &s.AccountID, &s.Kind, &s.Role, &s.Name, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, err
	}
	if time.Now().UTC().After(s.ExpiresAt) {
		return model.Session{}, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes one session.  Deleting a missing session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash=?", tokenHash)
	return err
}

// DeleteForAccount removes every session of an account.
func (r *SessionRepo) DeleteForAccount(ctx context.Context, accountID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE account_id=?", accountID)
	return err
}

// Rename updates the display name carried by every session of an account.
func (r *SessionRepo) Rename(ctx context.Context, accountID uint64, name string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE sessions SET name=? WHERE account_id=?", name, accountID)
	return err
}

// PurgeExpired deletes sessions whose expiry has passed.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
