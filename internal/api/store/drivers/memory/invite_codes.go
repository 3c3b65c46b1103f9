package memory

import (
	"context"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
)

type inviteCodesRepo struct {
	s *Store
}

func (r *inviteCodesRepo) GetActiveByCode(_ context.Context, code string) (domain.InviteCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.codes {
		if c.Code == code && c.IsActive {
			return cloneCode(c), nil
		}
	}
	return domain.InviteCode{}, store.ErrNotFound
}

func (r *inviteCodesRepo) GetByID(_ context.Context, id string) (domain.InviteCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.codes[id]
	if !ok {
		return domain.InviteCode{}, store.ErrNotFound
	}
	return cloneCode(c), nil
}

func (r *inviteCodesRepo) List(_ context.Context) ([]domain.InviteCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.InviteCode, 0, len(r.s.codes))
	for _, c := range r.s.codes {
		out = append(out, cloneCode(c))
	}
	sortNewestFirst(out,
		func(c domain.InviteCode) time.Time { return c.CreatedAt },
		func(c domain.InviteCode) string { return c.ID },
	)
	return out, nil
}

func (r *inviteCodesRepo) Create(_ context.Context, c domain.InviteCode) (domain.InviteCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.codes {
		if existing.Code == c.Code {
			return domain.InviteCode{}, store.ErrAlreadyExists
		}
	}

	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.s.codes[c.ID] = cloneCode(c)
	return cloneCode(c), nil
}

func (r *inviteCodesRepo) Update(_ context.Context, id string, upd domain.InviteCodeUpdate) (domain.InviteCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.codes[id]
	if !ok {
		return domain.InviteCode{}, store.ErrNotFound
	}

	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.DeviceLimit != nil {
		c.DeviceLimit = *upd.DeviceLimit
	}
	if upd.IsActive != nil {
		c.IsActive = *upd.IsActive
	}
	if upd.UsesRemainingSet {
		c.UsesRemaining = cloneIntPtr(upd.UsesRemaining)
	}

	r.s.codes[id] = cloneCode(c)
	return cloneCode(c), nil
}

func (r *inviteCodesRepo) SetUsesRemaining(_ context.Context, id string, remaining int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.codes[id]
	if !ok {
		return store.ErrNotFound
	}
	c.UsesRemaining = &remaining
	r.s.codes[id] = c
	return nil
}

func (r *inviteCodesRepo) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.codes[id]
	if !ok {
		return store.ErrNotFound
	}
	c.LastUsedAt = &at
	r.s.codes[id] = c
	return nil
}

func (r *inviteCodesRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.codes, id)
	return nil
}

func cloneCode(c domain.InviteCode) domain.InviteCode {
	c.UsesRemaining = cloneIntPtr(c.UsesRemaining)
	c.LastUsedAt = cloneTimePtr(c.LastUsedAt)
	return c
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
