package postgrest

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
)

type translationsRepo struct {
	c *Store
}

type translationRow struct {
	ID             string         `json:"id,omitempty"`
	UserID         string         `json:"user_id"`
	Mode           string         `json:"mode"`
	SourceLang     string         `json:"source_lang"`
	TargetLang     string         `json:"target_lang"`
	SourceText     string         `json:"source_text"`
	TranslatedText string         `json:"translated_text"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
}

func (r translationRow) toDomain() domain.Translation {
	return domain.Translation{
		ID:             r.ID,
		UserID:         r.UserID,
		Mode:           r.Mode,
		SourceLang:     r.SourceLang,
		TargetLang:     r.TargetLang,
		SourceText:     r.SourceText,
		TranslatedText: r.TranslatedText,
		Metadata:       r.Metadata,
		CreatedAt:      r.CreatedAt,
	}
}

func (r *translationsRepo) Insert(ctx context.Context, t domain.Translation) error {
	meta := t.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	_, _, err := r.c.do(ctx, "POST", "translations", translationRow{
		UserID:         t.UserID,
		Mode:           t.Mode,
		SourceLang:     t.SourceLang,
		TargetLang:     t.TargetLang,
		SourceText:     t.SourceText,
		TranslatedText: t.TranslatedText,
		Metadata:       meta,
	}, "return=minimal")
	return err
}

func (r *translationsRepo) ListByUser(ctx context.Context, userID string, f store.TranslationFilter) ([]domain.Translation, int, error) {
	path := "translations?user_id=eq." + url.QueryEscape(userID) +
		"&select=id,user_id,mode,source_lang,target_lang,source_text,translated_text,metadata,created_at" +
		"&order=created_at.desc&limit=" + strconv.Itoa(f.Limit) +
		"&offset=" + strconv.Itoa(f.Offset)
	if f.Mode != "" {
		path += "&mode=eq." + url.QueryEscape(f.Mode)
	}

	rows, total, err := getRowsCounted[translationRow](ctx, r.c, path)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Translation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

func (r *translationsRepo) ListSince(ctx context.Context, since time.Time) ([]domain.Translation, error) {
	rows, err := getRows[translationRow](ctx, r.c,
		"translations?select=id,user_id,mode,source_lang,target_lang,source_text,translated_text,metadata,created_at"+
			"&created_at=gte."+url.QueryEscape(since.UTC().Format(time.RFC3339))+
			"&order=created_at.desc")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Translation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type dialogsRepo struct {
	c *Store
}

type dialogSessionRow struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	CreatedAt  time.Time `json:"created_at,omitempty"`

	Messages []dialogMessageRow `json:"dialog_messages,omitempty"`
}

type dialogMessageRow struct {
	ID              string    `json:"id,omitempty"`
	DialogSessionID string    `json:"dialog_session_id,omitempty"`
	LangCode        string    `json:"lang_code"`
	Role            string    `json:"role"`
	Text            string    `json:"text"`
	DetectedGender  *string   `json:"detected_gender"`
	SeqOrder        int       `json:"seq_order"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

func (r dialogSessionRow) toDomain() domain.DialogSession {
	return domain.DialogSession{
		ID:         r.ID,
		UserID:     r.UserID,
		SourceLang: r.SourceLang,
		TargetLang: r.TargetLang,
		CreatedAt:  r.CreatedAt,
	}
}

func (r *dialogsRepo) CreateSession(ctx context.Context, d domain.DialogSession) (domain.DialogSession, error) {
	row, err := insertOne[dialogSessionRow](ctx, r.c, "dialog_sessions", dialogSessionRow{
		UserID:     d.UserID,
		SourceLang: d.SourceLang,
		TargetLang: d.TargetLang,
	})
	if err != nil {
		return domain.DialogSession{}, err
	}
	return row.toDomain(), nil
}

func (r *dialogsRepo) InsertMessages(ctx context.Context, msgs []domain.DialogMessage) error {
	rows := make([]dialogMessageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, dialogMessageRow{
			DialogSessionID: m.DialogSessionID,
			LangCode:        m.LangCode,
			Role:            m.Role,
			Text:            m.Text,
			DetectedGender:  m.DetectedGender,
			SeqOrder:        m.SeqOrder,
		})
	}
	_, _, err := r.c.do(ctx, "POST", "dialog_messages", rows, "return=minimal")
	return err
}

func (r *dialogsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.DialogWithMessages, error) {
	rows, err := getRows[dialogSessionRow](ctx, r.c,
		"dialog_sessions?user_id=eq."+url.QueryEscape(userID)+
			"&select=id,user_id,source_lang,target_lang,created_at,"+
			"dialog_messages(id,lang_code,role,text,detected_gender,seq_order,created_at)"+
			"&order=created_at.desc&dialog_messages.order=seq_order.asc"+
			"&limit="+strconv.Itoa(limit)+"&offset="+strconv.Itoa(offset))
	if err != nil {
		return nil, err
	}

	out := make([]domain.DialogWithMessages, 0, len(rows))
	for _, row := range rows {
		dwm := domain.DialogWithMessages{DialogSession: row.toDomain()}
		for _, m := range row.Messages {
			dwm.Messages = append(dwm.Messages, domain.DialogMessage{
				ID:              m.ID,
				DialogSessionID: row.ID,
				LangCode:        m.LangCode,
				Role:            m.Role,
				Text:            m.Text,
				DetectedGender:  m.DetectedGender,
				SeqOrder:        m.SeqOrder,
				CreatedAt:       m.CreatedAt,
			})
		}
		out = append(out, dwm)
	}
	return out, nil
}

func (r *dialogsRepo) ListSince(ctx context.Context, since time.Time) ([]domain.DialogSession, error) {
	rows, err := getRows[dialogSessionRow](ctx, r.c,
		"dialog_sessions?select=id,user_id,source_lang,target_lang,created_at"+
			"&created_at=gte."+url.QueryEscape(since.UTC().Format(time.RFC3339))+
			"&order=created_at.desc")
	if err != nil {
		return nil, err
	}
	out := make([]domain.DialogSession, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
