package memory

import (
	"context"
	"sort"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
)

type translationsRepo struct {
	s *Store
}

func (r *translationsRepo) Insert(_ context.Context, t domain.Translation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	r.s.translations[t.ID] = t
	return nil
}

func (r *translationsRepo) ListByUser(_ context.Context, userID string, f store.TranslationFilter) ([]domain.Translation, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []domain.Translation
	for _, t := range r.s.translations {
		if t.UserID != userID {
			continue
		}
		if f.Mode != "" && t.Mode != f.Mode {
			continue
		}
		matched = append(matched, t)
	}
	sortNewestFirst(matched,
		func(t domain.Translation) time.Time { return t.CreatedAt },
		func(t domain.Translation) string { return t.ID },
	)

	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *translationsRepo) ListSince(_ context.Context, since time.Time) ([]domain.Translation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.Translation
	for _, t := range r.s.translations {
		if !t.CreatedAt.Before(since) {
			out = append(out, t)
		}
	}
	sortNewestFirst(out,
		func(t domain.Translation) time.Time { return t.CreatedAt },
		func(t domain.Translation) string { return t.ID },
	)
	return out, nil
}

type dialogsRepo struct {
	s *Store
}

func (r *dialogsRepo) CreateSession(_ context.Context, d domain.DialogSession) (domain.DialogSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if d.ID == "" {
		d.ID = newID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	r.s.dialogs[d.ID] = d
	return d, nil
}

func (r *dialogsRepo) InsertMessages(_ context.Context, msgs []domain.DialogMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range msgs {
		if m.ID == "" {
			m.ID = newID()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		r.s.messages[m.ID] = m
	}
	return nil
}

func (r *dialogsRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.DialogWithMessages, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var sessions []domain.DialogSession
	for _, d := range r.s.dialogs {
		if d.UserID == userID {
			sessions = append(sessions, d)
		}
	}
	sortNewestFirst(sessions,
		func(d domain.DialogSession) time.Time { return d.CreatedAt },
		func(d domain.DialogSession) string { return d.ID },
	)

	if offset > 0 {
		if offset >= len(sessions) {
			sessions = nil
		} else {
			sessions = sessions[offset:]
		}
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	out := make([]domain.DialogWithMessages, 0, len(sessions))
	for _, d := range sessions {
		dwm := domain.DialogWithMessages{DialogSession: d}
		for _, m := range r.s.messages {
			if m.DialogSessionID == d.ID {
				dwm.Messages = append(dwm.Messages, m)
			}
		}
		sort.Slice(dwm.Messages, func(i, j int) bool {
			return dwm.Messages[i].SeqOrder < dwm.Messages[j].SeqOrder
		})
		out = append(out, dwm)
	}
	return out, nil
}

func (r *dialogsRepo) ListSince(_ context.Context, since time.Time) ([]domain.DialogSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.DialogSession
	for _, d := range r.s.dialogs {
		if !d.CreatedAt.Before(since) {
			out = append(out, d)
		}
	}
	sortNewestFirst(out,
		func(d domain.DialogSession) time.Time { return d.CreatedAt },
		func(d domain.DialogSession) string { return d.ID },
	)
	return out, nil
}
