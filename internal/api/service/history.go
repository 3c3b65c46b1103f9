package service

import (
	"context"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/idx"
)

const (
	historyTextLimit = 5000
	historyPageSize  = 20
	historyPageLimit = 50
)

// HistoryService stores and lists translation history and dialog
// transcripts. Everything is user-scoped and append-only.
type HistoryService struct {
	Store store.Store
}

// SaveParams is one translation history entry to append.
type SaveParams struct {
	Mode           string
	SourceLang     string
	TargetLang     string
	SourceText     string
	TranslatedText string
	Metadata       map[string]any
}

// Save appends a history entry for a user. Texts are silently truncated to
// the storage limit.
func (s *HistoryService) Save(ctx context.Context, userID string, p SaveParams) error {
	meta := p.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return s.Store.Translations().Insert(ctx, domain.Translation{
		ID:             idx.New().String(),
		UserID:         userID,
		Mode:           p.Mode,
		SourceLang:     p.SourceLang,
		TargetLang:     p.TargetLang,
		SourceText:     truncate(p.SourceText, historyTextLimit),
		TranslatedText: truncate(p.TranslatedText, historyTextLimit),
		Metadata:       meta,
	})
}

// HistoryPage is one page of a user's translation history.
type HistoryPage struct {
	Translations []domain.Translation
	Total        int
	Page         int
	Pages        int
}

// List returns a page of a user's history, newest first, optionally
// filtered by mode. Pages are 1-based; the page size is clamped.
func (s *HistoryService) List(ctx context.Context, userID string, page, limit int, mode string) (HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = historyPageSize
	}
	if limit > historyPageLimit {
		limit = historyPageLimit
	}

	rows, total, err := s.Store.Translations().ListByUser(ctx, userID, store.TranslationFilter{
		Mode:   mode,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return HistoryPage{}, err
	}

	pages := (total + limit - 1) / limit
	return HistoryPage{
		Translations: rows,
		Total:        total,
		Page:         page,
		Pages:        pages,
	}, nil
}

// StartDialog opens a new dialog session and returns its id.
func (s *HistoryService) StartDialog(ctx context.Context, userID, sourceLang, targetLang string) (string, error) {
	d, err := s.Store.Dialogs().CreateSession(ctx, domain.DialogSession{
		ID:         idx.New().String(),
		UserID:     userID,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// DialogMessageParams is one utterance to append to a dialog session.
type DialogMessageParams struct {
	LangCode       string
	Role           string
	Text           string
	DetectedGender *string
	SeqOrder       int
}

// AppendMessages appends a batch of messages to a dialog session.
func (s *HistoryService) AppendMessages(ctx context.Context, dialogSessionID string, msgs []DialogMessageParams) error {
	rows := make([]domain.DialogMessage, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, domain.DialogMessage{
			ID:              idx.New().String(),
			DialogSessionID: dialogSessionID,
			LangCode:        m.LangCode,
			Role:            m.Role,
			Text:            truncate(m.Text, historyTextLimit),
			DetectedGender:  m.DetectedGender,
			SeqOrder:        m.SeqOrder,
		})
	}
	return s.Store.Dialogs().InsertMessages(ctx, rows)
}

// ListDialogs returns a page of a user's dialog sessions with messages in
// seq order, newest session first.
func (s *HistoryService) ListDialogs(ctx context.Context, userID string, page, limit int) ([]domain.DialogWithMessages, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = historyPageSize
	}
	if limit > historyPageLimit {
		limit = historyPageLimit
	}
	return s.Store.Dialogs().ListByUser(ctx, userID, limit, (page-1)*limit)
}

// truncate clips s to at most n bytes. History texts are plain enough that
// a byte cut matches the original storage behavior.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
