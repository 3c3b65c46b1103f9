package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/traveltalk/server/internal/api/store/drivers/memory"
)

func newAdmin(t *testing.T, secret string) *AdminService {
	t.Helper()
	st := memory.NewStore()
	return &AdminService{
		Store:  st,
		Secret: secret,
		Tokens: &TokenService{
			Store:         st,
			SessionTTL:    30 * 24 * time.Hour,
			AdminTokenTTL: 8 * time.Hour,
		},
	}
}

func TestAdminLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("correct password mints an 8 hour token", func(t *testing.T) {
		t.Parallel()
		svc := newAdmin(t, "hunter2")

		before := time.Now().UTC()
		tok, err := svc.Login(ctx, "hunter2")
		require.NoError(t, err)
		require.Len(t, tok.Token, 64)
		require.WithinDuration(t, before.Add(8*time.Hour), tok.ExpiresAt, time.Minute)

		valid, err := svc.Validate(ctx, tok.Token)
		require.NoError(t, err)
		require.True(t, valid)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		t.Parallel()
		svc := newAdmin(t, "hunter2")

		_, err := svc.Login(ctx, "guess")
		require.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("unset secret fails closed", func(t *testing.T) {
		t.Parallel()
		svc := newAdmin(t, "")

		_, err := svc.Login(ctx, "")
		require.ErrorIs(t, err, ErrInvalidPassword)
	})
}

func TestAdminValidateAndLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAdmin(t, "hunter2")
	tok, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)

	valid, err := svc.Validate(ctx, "bogus")
	require.NoError(t, err)
	require.False(t, valid)

	valid, err = svc.Validate(ctx, "")
	require.NoError(t, err)
	require.False(t, valid)

	svc.Logout(ctx, tok.Token)
	valid, err = svc.Validate(ctx, tok.Token)
	require.NoError(t, err)
	require.False(t, valid)

	// Revoking again is a quiet no-op.
	svc.Logout(ctx, tok.Token)
}
