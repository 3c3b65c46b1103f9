package memory

import (
	"context"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
)

type sessionsRepo struct {
	s *Store
}

func (r *sessionsRepo) Create(_ context.Context, sess domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = newID()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	r.s.sessions[sess.ID] = sess
	return nil
}

func (r *sessionsRepo) GetActiveByToken(_ context.Context, token string, now time.Time) (domain.SessionUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, sess := range r.s.sessions {
		if sess.Token != token || !sess.ExpiresAt.After(now) {
			continue
		}
		// An orphaned session (user already cascaded away) is as invalid
		// as a missing one.
		u, ok := r.s.users[sess.UserID]
		if !ok {
			return domain.SessionUser{}, store.ErrNotFound
		}
		return domain.SessionUser{
			SessionID:    sess.ID,
			UserID:       u.ID,
			UserName:     u.Name,
			InviteCodeID: u.InviteCodeID,
		}, nil
	}
	return domain.SessionUser{}, store.ErrNotFound
}

func (r *sessionsRepo) ListRecent(_ context.Context, limit int) ([]domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.Session, 0, len(r.s.sessions))
	for _, sess := range r.s.sessions {
		out = append(out, sess)
	}
	sortNewestFirst(out,
		func(s domain.Session) time.Time { return s.CreatedAt },
		func(s domain.Session) string { return s.ID },
	)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *sessionsRepo) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, sess := range r.s.sessions {
		if sess.Token == token {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

func (r *sessionsRepo) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, sess := range r.s.sessions {
		if sess.UserID == userID {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

func (r *sessionsRepo) DeleteExpired(_ context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, sess := range r.s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(r.s.sessions, id)
		}
	}
	return nil
}
