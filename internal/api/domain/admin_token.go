package domain

import "time"

// AdminToken grants administrative API access. Same shape as a Session but
// bound to no user.
type AdminToken struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
