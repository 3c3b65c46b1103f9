package domain

import "time"

// Translation is one saved translation history entry. Append-only,
// user-scoped.
type Translation struct {
	ID             string
	UserID         string
	Mode           string
	SourceLang     string
	TargetLang     string
	SourceText     string
	TranslatedText string
	Metadata       map[string]any
	CreatedAt      time.Time
}

// DialogSession groups the messages of one live-dialog conversation.
type DialogSession struct {
	ID         string
	UserID     string
	SourceLang string
	TargetLang string
	CreatedAt  time.Time
}

// DialogMessage is a single utterance within a dialog session, ordered by
// SeqOrder.
type DialogMessage struct {
	ID              string
	DialogSessionID string
	LangCode        string
	Role            string
	Text            string
	DetectedGender  *string
	SeqOrder        int
	CreatedAt       time.Time
}

// DialogWithMessages is a dialog session with its messages in seq order.
type DialogWithMessages struct {
	DialogSession
	Messages []DialogMessage
}
