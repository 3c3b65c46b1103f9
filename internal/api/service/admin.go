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

var ErrInvalidPassword = errors.New("invalid admin password")

// AdminService authenticates the single shared administrator. There are no
// admin accounts: one password, configured at deploy time, mints short
// lived admin tokens.
type AdminService struct {
	Store  store.Store
	Tokens *TokenService

	// Secret is the shared admin password. Empty disables admin login
	// entirely.
	Secret string
}

// Login exchanges the admin password for a fresh admin token.
func (s *AdminService) Login(ctx context.Context, password string) (domain.AdminToken, error) {
	log := slogx.FromContext(ctx)

	if s.Secret == "" || password != s.Secret {
		log.Warn("admin login with wrong password")
		return domain.AdminToken{}, ErrInvalidPassword
	}

	t, err := s.Tokens.MintAdminToken(ctx)
	if err != nil {
		log.Error("failed to mint admin token", slog.Any("error", err))
		return domain.AdminToken{}, err
	}

	log.Info("admin logged in")
	return t, nil
}

// Validate reports whether a bearer token is a live admin token.
func (s *AdminService) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, err := s.Store.AdminTokens().GetActiveByToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Logout revokes an admin token. Fail-open, like user logout.
func (s *AdminService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.Store.AdminTokens().DeleteByToken(ctx, token); err != nil {
		slogx.FromContext(ctx).Warn("failed to delete admin token on logout",
			slog.Any("error", err),
		)
	}
}
