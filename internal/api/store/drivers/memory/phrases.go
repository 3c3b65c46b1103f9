package memory

import (
	"context"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
)

type phrasesRepo struct {
	s *Store
}

func (r *phrasesRepo) Insert(_ context.Context, p domain.CustomPhrase) (domain.CustomPhrase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.s.phrases[p.ID] = p
	return p, nil
}

func (r *phrasesRepo) ListByInviteCode(_ context.Context, inviteCodeID string) ([]domain.CustomPhrase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.CustomPhrase
	for _, p := range r.s.phrases {
		if p.InviteCodeID == inviteCodeID {
			out = append(out, p)
		}
	}
	sortNewestFirst(out,
		func(p domain.CustomPhrase) time.Time { return p.CreatedAt },
		func(p domain.CustomPhrase) string { return p.ID },
	)
	return out, nil
}

func (r *phrasesRepo) Delete(_ context.Context, id, inviteCodeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.phrases[id]
	if ok && p.InviteCodeID == inviteCodeID {
		delete(r.s.phrases, id)
	}
	return nil
}
