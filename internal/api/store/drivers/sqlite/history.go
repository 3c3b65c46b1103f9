package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/idx"
)

type translationsRepo struct {
	db *sql.DB
}

func (r *translationsRepo) Insert(ctx context.Context, t domain.Translation) error {
	if t.ID == "" {
		t.ID = idx.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	meta := t.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO translations (id, user_id, mode, source_lang, target_lang, source_text, translated_text, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Mode, t.SourceLang, t.TargetLang, t.SourceText, t.TranslatedText, string(metaJSON), t.CreatedAt)
	return err
}

func (r *translationsRepo) ListByUser(ctx context.Context, userID string, f store.TranslationFilter) ([]domain.Translation, int, error) {
	where := `WHERE user_id = ?`
	args := []any{userID}
	if f.Mode != "" {
		where += ` AND mode = ?`
		args = append(args, f.Mode)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM translations `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, mode, source_lang, target_lang, source_text, translated_text, metadata, created_at
		 FROM translations `+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *translationsRepo) ListSince(ctx context.Context, since time.Time) ([]domain.Translation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, mode, source_lang, target_lang, source_text, translated_text, metadata, created_at
		 FROM translations WHERE created_at >= ? ORDER BY created_at DESC, id DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTranslation(row rowScanner) (domain.Translation, error) {
	var (
		t        domain.Translation
		metaJSON string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Mode, &t.SourceLang, &t.TargetLang,
		&t.SourceText, &t.TranslatedText, &metaJSON, &t.CreatedAt)
	if err != nil {
		return domain.Translation{}, mapNotFound(err)
	}
	if metaJSON != "" {
		if err := json.Unmarshal([]byte(metaJSON), &t.Metadata); err != nil {
			return domain.Translation{}, err
		}
	}
	return t, nil
}

type dialogsRepo struct {
	db *sql.DB
}

func (r *dialogsRepo) CreateSession(ctx context.Context, d domain.DialogSession) (domain.DialogSession, error) {
	if d.ID == "" {
		d.ID = idx.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dialog_sessions (id, user_id, source_lang, target_lang, created_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.SourceLang, d.TargetLang, d.CreatedAt)
	if err != nil {
		return domain.DialogSession{}, err
	}
	return d, nil
}

func (r *dialogsRepo) InsertMessages(ctx context.Context, msgs []domain.DialogMessage) error {
	for _, m := range msgs {
		if m.ID == "" {
			m.ID = idx.New().String()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO dialog_messages (id, dialog_session_id, lang_code, role, text, detected_gender, seq_order, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.DialogSessionID, m.LangCode, m.Role, m.Text,
			mapOptionalString(m.DetectedGender), m.SeqOrder, m.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *dialogsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.DialogWithMessages, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, source_lang, target_lang, created_at
		 FROM dialog_sessions WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DialogWithMessages
	for rows.Next() {
		var d domain.DialogWithMessages
		if err := rows.Scan(&d.ID, &d.UserID, &d.SourceLang, &d.TargetLang, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		msgs, err := r.listMessages(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Messages = msgs
	}
	return out, nil
}

func (r *dialogsRepo) listMessages(ctx context.Context, sessionID string) ([]domain.DialogMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, dialog_session_id, lang_code, role, text, detected_gender, seq_order, created_at
		 FROM dialog_messages WHERE dialog_session_id = ? ORDER BY seq_order ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DialogMessage
	for rows.Next() {
		var (
			m      domain.DialogMessage
			gender sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.DialogSessionID, &m.LangCode, &m.Role,
			&m.Text, &gender, &m.SeqOrder, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.DetectedGender = mapNullStringPtr(gender)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *dialogsRepo) ListSince(ctx context.Context, since time.Time) ([]domain.DialogSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, source_lang, target_lang, created_at
		 FROM dialog_sessions WHERE created_at >= ? ORDER BY created_at DESC, id DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DialogSession
	for rows.Next() {
		var d domain.DialogSession
		if err := rows.Scan(&d.ID, &d.UserID, &d.SourceLang, &d.TargetLang, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
