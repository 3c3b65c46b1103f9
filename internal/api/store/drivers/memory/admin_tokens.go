package memory

import (
	"context"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
)

type adminTokensRepo struct {
	s *Store
}

func (r *adminTokensRepo) Create(_ context.Context, t domain.AdminToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	r.s.adminTokens[t.ID] = t
	return nil
}

func (r *adminTokensRepo) GetActiveByToken(_ context.Context, token string, now time.Time) (domain.AdminToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.adminTokens {
		if t.Token == token && t.ExpiresAt.After(now) {
			return t, nil
		}
	}
	return domain.AdminToken{}, store.ErrNotFound
}

func (r *adminTokensRepo) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.adminTokens {
		if t.Token == token {
			delete(r.s.adminTokens, id)
		}
	}
	return nil
}

func (r *adminTokensRepo) DeleteExpired(_ context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.adminTokens {
		if !t.ExpiresAt.After(now) {
			delete(r.s.adminTokens, id)
		}
	}
	return nil
}
