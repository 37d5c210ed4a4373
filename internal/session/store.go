// Package session keeps browser sessions for signed-in users and admins.
//
// The browser only ever holds an opaque random token in the "sessionid"
// cookie.  The server side record (account id, kind, role, display name and
// expiry) is stored under the SHA-256 hash of that token, either in Redis or
// in the SQL sessions table.
package session

import (
	"context"
	"errors"

	"github.com/iliyamo/movie-review/internal/model"
)

// ErrNotFound is returned when a token has no live session.
var ErrNotFound = errors.New("session not found")

// Store persists session records keyed by token hash.
type Store interface {
	Save(ctx context.Context, s model.Session) error
	Load(ctx context.Context, tokenHash string) (model.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteForAccount(ctx context.Context, accountID uint64) error
	Rename(ctx context.Context, accountID uint64, name string) error
}
