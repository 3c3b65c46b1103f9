package service

import (
	"context"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/cryptox"
	"github.com/traveltalk/server/pkg/idx"
)

// TokenService mints the two bearer credentials the API hands out: long
// lived user sessions and short lived admin tokens. Both are opaque random
// tokens looked up verbatim in the store.
type TokenService struct {
	Store store.Store

	// SessionTTL is how long a minted user session stays valid.
	SessionTTL time.Duration

	// AdminTokenTTL is how long a minted admin token stays valid.
	AdminTokenTTL time.Duration
}

// MintSession creates and persists a session for a user, returning the
// stored session so callers can hand the token and expiry to the client.
func (s *TokenService) MintSession(ctx context.Context, userID string) (domain.Session, error) {
	token, err := cryptox.GenerateToken()
	if err != nil {
		return domain.Session{}, err
	}

	now := time.Now().UTC()
	sess := domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.SessionTTL),
		CreatedAt: now,
	}
	if err := s.Store.Sessions().Create(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// MintAdminToken creates and persists an admin token.
func (s *TokenService) MintAdminToken(ctx context.Context) (domain.AdminToken, error) {
	token, err := cryptox.GenerateToken()
	if err != nil {
		return domain.AdminToken{}, err
	}

	now := time.Now().UTC()
	t := domain.AdminToken{
		ID:        idx.New().String(),
		Token:     token,
		ExpiresAt: now.Add(s.AdminTokenTTL),
		CreatedAt: now,
	}
	if err := s.Store.AdminTokens().Create(ctx, t); err != nil {
		return domain.AdminToken{}, err
	}
	return t, nil
}
