package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/pkg/idx"
)

type phrasesRepo struct {
	db *sql.DB
}

func (r *phrasesRepo) Insert(ctx context.Context, p domain.CustomPhrase) (domain.CustomPhrase, error) {
	if p.ID == "" {
		p.ID = idx.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO custom_phrases (id, invite_code_id, category, source_lang, target_lang, source_text, target_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.InviteCodeID, p.Category, p.SourceLang, p.TargetLang, p.SourceText, p.TargetText, p.CreatedAt)
	if err != nil {
		return domain.CustomPhrase{}, err
	}
	return p, nil
}

func (r *phrasesRepo) ListByInviteCode(ctx context.Context, inviteCodeID string) ([]domain.CustomPhrase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, invite_code_id, category, source_lang, target_lang, source_text, target_text, created_at
		 FROM custom_phrases WHERE invite_code_id = ? ORDER BY created_at DESC, id DESC`, inviteCodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CustomPhrase
	for rows.Next() {
		var p domain.CustomPhrase
		if err := rows.Scan(&p.ID, &p.InviteCodeID, &p.Category, &p.SourceLang,
			&p.TargetLang, &p.SourceText, &p.TargetText, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *phrasesRepo) Delete(ctx context.Context, id, inviteCodeID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM custom_phrases WHERE id = ? AND invite_code_id = ?`, id, inviteCodeID)
	return err
}
