package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-review/internal/database"
	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/utils"
)

const accountColumns = "id, kind, first_name, last_name, email, password_hash, role, created_at, updated_at"

// AccountRepo persists users and admins in the single `accounts` table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// NormalizeEmail trims and lower-cases an address the way it is stored.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password with the given bcrypt cost and inserts the account.
// On success a.ID, a.PasswordHash and the timestamps are populated.  A
// duplicate email (any kind) yields ErrEmailExists.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account, password string, cost int) error {
	a.Email = NormalizeEmail(a.Email)
	if a.Role == "" {
		a.Role = string(a.Kind)
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	stamp(&a.CreatedAt, &a.UpdatedAt)

	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO accounts (kind, first_name, last_name, email, password_hash, role, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		string(a.Kind), a.FirstName, a.LastName, a.Email, a.PasswordHash, a.Role, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// EmailExists reports whether any account (user or admin) uses email.
func (r *AccountRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accounts WHERE email=?", NormalizeEmail(email)).Scan(&n)
	return n > 0, err
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email=? LIMIT 1", NormalizeEmail(email))
	return scanAccountRow(row)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id)
	return scanAccountRow(row)
}

// UpdateProfile overwrites the name and email of an account.
func (r *AccountRepo) UpdateProfile(ctx context.Context, id uint64, first, last, email string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET first_name=?, last_name=?, email=?, updated_at=? WHERE id=?",
		first, last, NormalizeEmail(email), now(), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdatePassword replaces the stored hash with a new bcrypt hash of password.
func (r *AccountRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET password_hash=?, updated_at=? WHERE id=?", hash, now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ListByKind returns every account of the given kind, newest first.
func (r *AccountRepo) ListByKind(ctx context.Context, kind model.Kind) ([]model.Account, error) {
	return r.query(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE kind=? ORDER BY created_at DESC, id DESC", string(kind))
}

// RecentByKind returns the limit most recently created accounts of a kind.
func (r *AccountRepo) RecentByKind(ctx context.Context, kind model.Kind, limit int) ([]model.Account, error) {
	return r.query(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE kind=? ORDER BY created_at DESC, id DESC LIMIT ?", string(kind), limit)
}

// CountByKind counts accounts of a kind.
func (r *AccountRepo) CountByKind(ctx context.Context, kind model.Kind) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE kind=?", string(kind)).Scan(&n)
	return n, err
}

func (r *AccountRepo) query(ctx context.Context, q string, args ...any) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAccountRow(row *sql.Row) (*model.Account, error) {
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	return a, err
}

func scanAccount(s rowScanner) (*model.Account, error) {
	var a model.Account
	if err := s.Scan(&a.ID, &a.Kind, &a.FirstName, &a.LastName, &a.Email,
		&a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
