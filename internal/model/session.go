package model

import "time"

// Session binds a browser (or bearer) request to an authenticated principal.
// It is loaded by middleware and passed to handlers explicitly through the
// echo context; nothing about the principal is kept in globals.
type Session struct {
	TokenHash string // sha256 of the opaque cookie token; empty for bearer sessions
	AccountID uint64
	Kind      Kind
	Role      string
	Name      string
	ExpiresAt time.Time
}

// Is reports whether the session belongs to a principal of kind k.
func (s *Session) Is(k Kind) bool { return s != nil && s.Kind == k }
