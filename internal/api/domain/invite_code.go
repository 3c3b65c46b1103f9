package domain

import "time"

// InviteCode is a shared admission credential. A code admits up to
// DeviceLimit distinct devices and, when UsesRemaining is non-nil, at most
// that many first-time device registrations. Name doubles as the display
// name for every user created under the code.
type InviteCode struct {
	ID            string
	Code          string // unique, uppercase, "TT-XXXXXX"
	Name          string
	Description   string
	UsesRemaining *int // nil = unlimited
	DeviceLimit   int
	IsActive      bool
	CreatedAt     time.Time
	LastUsedAt    *time.Time
}

// InviteCodeUpdate carries a partial update for an invite code. Nil fields
// are left unchanged. UsesRemaining needs its own set-flag because setting
// it back to null (unlimited) is a valid update.
type InviteCodeUpdate struct {
	Name             *string
	Description      *string
	DeviceLimit      *int
	IsActive         *bool
	UsesRemaining    *int
	UsesRemainingSet bool
}
