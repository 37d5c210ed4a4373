package model

import "time"

// Kind discriminates the two principal kinds that share the accounts table.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool { return k == KindUser || k == KindAdmin }

// Account represents a row in the `accounts` table.  Regular users and
// administrators live in the same table; Kind tells them apart and Role
// defaults to the kind name.
//
// Fields:
//
//	ID           – primary key identifier.
//	Kind         – user or admin.
//	FirstName    – given name.
//	LastName     – family name.
//	Email        – unique (case-insensitive) address, stored lower-cased.
//	PasswordHash – bcrypt hash.
//	Role         – free-form role label (defaults to Kind).
//	CreatedAt    – creation time (UTC).
//	UpdatedAt    – last modification time (UTC).
type Account struct {
	ID           uint64
	Kind         Kind
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName is the display name carried in sessions.
func (a *Account) FullName() string { return a.FirstName + " " + a.LastName }
