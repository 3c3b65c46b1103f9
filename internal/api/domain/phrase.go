package domain

import "time"

// CustomPhrase is a phrasebook entry shared by all users of one invite
// code.
type CustomPhrase struct {
	ID           string
	InviteCodeID string
	Category     string
	SourceLang   string
	TargetLang   string
	SourceText   string
	TargetText   string
	CreatedAt    time.Time
}
