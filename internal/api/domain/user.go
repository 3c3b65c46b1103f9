package domain

import "time"

// User is a device-bound identity under an invite code. The pair
// (InviteCodeID, DeviceID) is the natural key: the same device logging in
// with the same code always resolves to the same user row.
type User struct {
	ID           string
	InviteCodeID string
	Name         string
	DeviceID     string
	CreatedAt    time.Time
}

// UserWithCode is a user joined with its owning invite code, as returned
// by the admin listing.
type UserWithCode struct {
	User
	CodeCode string // invite_codes.code
	CodeName string // invite_codes.name
}
