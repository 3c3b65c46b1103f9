package memory

import (
	"context"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
)

type usersRepo struct {
	s *Store
}

func (r *usersRepo) GetByCodeAndDevice(_ context.Context, inviteCodeID, deviceID string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.InviteCodeID == inviteCodeID && u.DeviceID == deviceID {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (r *usersRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) CountDevices(_ context.Context, inviteCodeID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	devices := make(map[string]struct{})
	for _, u := range r.s.users {
		if u.InviteCodeID == inviteCodeID {
			devices[u.DeviceID] = struct{}{}
		}
	}
	return len(devices), nil
}

func (r *usersRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.s.users[u.ID] = u
	return u, nil
}

func (r *usersRepo) UpdateName(_ context.Context, userID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Name = name
	r.s.users[userID] = u
	return nil
}

func (r *usersRepo) List(_ context.Context) ([]domain.UserWithCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.UserWithCode, 0, len(r.s.users))
	for _, u := range r.s.users {
		uc := domain.UserWithCode{User: u}
		if c, ok := r.s.codes[u.InviteCodeID]; ok {
			uc.CodeCode = c.Code
			uc.CodeName = c.Name
		}
		out = append(out, uc)
	}
	sortNewestFirst(out,
		func(u domain.UserWithCode) time.Time { return u.CreatedAt },
		func(u domain.UserWithCode) string { return u.ID },
	)
	return out, nil
}

func (r *usersRepo) ListByInviteCode(_ context.Context, inviteCodeID string) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.User
	for _, u := range r.s.users {
		if u.InviteCodeID == inviteCodeID {
			out = append(out, u)
		}
	}
	sortNewestFirst(out,
		func(u domain.User) time.Time { return u.CreatedAt },
		func(u domain.User) string { return u.ID },
	)
	return out, nil
}

func (r *usersRepo) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.users, userID)
	return nil
}
