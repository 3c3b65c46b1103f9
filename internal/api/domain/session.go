package domain

import "time"

// Session is an opaque bearer credential bound to a user. Valid strictly
// until ExpiresAt; deleted on logout or when the owning user is deleted.
type Session struct {
	ID        string
	UserID    string
	Token     string // 64 lowercase hex chars
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionUser is the result of resolving a bearer token: the live session
// joined with its owning user. An expired, revoked, or never-issued token
// resolves to nothing, indistinguishably.
type SessionUser struct {
	SessionID    string
	UserID       string
	UserName     string
	InviteCodeID string
}
