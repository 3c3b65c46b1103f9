package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/slogx"
)

// SessionService resolves and revokes user sessions.
type SessionService struct {
	Store store.Store
}

// Validate resolves a bearer token to its session and user. A missing,
// expired, revoked, or orphaned token all come back as (nil, nil): the
// caller learns only that the token does not resolve, never why.
func (s *SessionService) Validate(ctx context.Context, token string) (*domain.SessionUser, error) {
	if token == "" {
		return nil, nil
	}

	su, err := s.Store.Sessions().GetActiveByToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &su, nil
}

// Logout revokes a session by token. Deliberately fail-open: an unknown
// token, an empty token, even a store failure all report success, because
// the client is discarding its credential either way.
func (s *SessionService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.Store.Sessions().DeleteByToken(ctx, token); err != nil {
		slogx.FromContext(ctx).Warn("failed to delete session on logout",
			slog.Any("error", err),
		)
	}
}
