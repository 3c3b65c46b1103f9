package service

import (
	"context"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/idx"
)

const (
	phraseTextLimit       = 500
	phraseDefaultCategory = "custom"
)

// PhrasebookService manages the shared phrasebook. Entries belong to an
// invite code, not a user, so every device admitted under a code sees the
// same phrases.
type PhrasebookService struct {
	Store store.Store
}

// PhraseParams is one phrasebook entry to add.
type PhraseParams struct {
	Category   string
	SourceLang string
	TargetLang string
	SourceText string
	TargetText string
}

// Add inserts a phrase into a code's phrasebook. Category defaults;
// texts are truncated to the storage limit.
func (s *PhrasebookService) Add(ctx context.Context, inviteCodeID string, p PhraseParams) (domain.CustomPhrase, error) {
	category := p.Category
	if category == "" {
		category = phraseDefaultCategory
	}
	return s.Store.Phrases().Insert(ctx, domain.CustomPhrase{
		ID:           idx.New().String(),
		InviteCodeID: inviteCodeID,
		Category:     category,
		SourceLang:   p.SourceLang,
		TargetLang:   p.TargetLang,
		SourceText:   truncate(p.SourceText, phraseTextLimit),
		TargetText:   truncate(p.TargetText, phraseTextLimit),
	})
}

// List returns a code's phrasebook, newest first.
func (s *PhrasebookService) List(ctx context.Context, inviteCodeID string) ([]domain.CustomPhrase, error) {
	return s.Store.Phrases().ListByInviteCode(ctx, inviteCodeID)
}

// Delete removes a phrase, scoped to the caller's invite code. Deleting a
// phrase that does not exist, or belongs to another code, is a no-op.
func (s *PhrasebookService) Delete(ctx context.Context, id, inviteCodeID string) error {
	return s.Store.Phrases().Delete(ctx, id, inviteCodeID)
}
