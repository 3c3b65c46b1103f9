package postgrest

import (
	"context"
	"net/url"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
)

type phrasesRepo struct {
	c *Store
}

type phraseRow struct {
	ID           string    `json:"id,omitempty"`
	InviteCodeID string    `json:"invite_code_id"`
	Category     string    `json:"category"`
	SourceLang   string    `json:"source_lang"`
	TargetLang   string    `json:"target_lang"`
	SourceText   string    `json:"source_text"`
	TargetText   string    `json:"target_text"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

func (r phraseRow) toDomain() domain.CustomPhrase {
	return domain.CustomPhrase{
		ID:           r.ID,
		InviteCodeID: r.InviteCodeID,
		Category:     r.Category,
		SourceLang:   r.SourceLang,
		TargetLang:   r.TargetLang,
		SourceText:   r.SourceText,
		TargetText:   r.TargetText,
		CreatedAt:    r.CreatedAt,
	}
}

func (r *phrasesRepo) Insert(ctx context.Context, p domain.CustomPhrase) (domain.CustomPhrase, error) {
	row, err := insertOne[phraseRow](ctx, r.c, "custom_phrases", phraseRow{
		InviteCodeID: p.InviteCodeID,
		Category:     p.Category,
		SourceLang:   p.SourceLang,
		TargetLang:   p.TargetLang,
		SourceText:   p.SourceText,
		TargetText:   p.TargetText,
	})
	if err != nil {
		return domain.CustomPhrase{}, err
	}
	return row.toDomain(), nil
}

func (r *phrasesRepo) ListByInviteCode(ctx context.Context, inviteCodeID string) ([]domain.CustomPhrase, error) {
	rows, err := getRows[phraseRow](ctx, r.c,
		"custom_phrases?invite_code_id=eq."+url.QueryEscape(inviteCodeID)+
			"&select=id,invite_code_id,category,source_lang,target_lang,source_text,target_text,created_at"+
			"&order=created_at.desc")
	if err != nil {
		return nil, err
	}
	out := make([]domain.CustomPhrase, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *phrasesRepo) Delete(ctx context.Context, id, inviteCodeID string) error {
	return r.c.delete(ctx,
		"custom_phrases?id=eq."+url.QueryEscape(id)+
			"&invite_code_id=eq."+url.QueryEscape(inviteCodeID))
}
