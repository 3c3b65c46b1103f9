package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/slogx"
)

var ErrUserNotFound = errors.New("user not found")

// UserService is the admin-facing user listing and lifecycle.
type UserService struct {
	Store store.Store
}

// List returns every user joined with its invite code, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.UserWithCode, error) {
	return s.Store.Users().List(ctx)
}

// Rename overwrites a user's display name. The name survives only until
// the user's next login, which re-syncs it from the invite code.
func (s *UserService) Rename(ctx context.Context, userID, name string) error {
	if err := s.Store.Users().UpdateName(ctx, userID, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// CascadeDelete removes a user's sessions, then the user row. Not atomic;
// sessions go first so an interruption leaves an orphaned user rather than
// sessions pointing at nothing.
func (s *UserService) CascadeDelete(ctx context.Context, userID string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Sessions().DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.Store.Users().Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Info("user deleted", slog.String("user_id", userID))
	return nil
}
