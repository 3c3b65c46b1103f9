package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/internal/api/store/drivers/memory"
)

func TestCodeCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("explicit code is uppercased", func(t *testing.T) {
		t.Parallel()
		svc := &CodeService{Store: memory.NewStore(), DeviceLimitDefault: 3}

		created, err := svc.Create(ctx, CreateCodeParams{Code: "tt-custom", Name: "Team"})
		require.NoError(t, err)
		require.Equal(t, "TT-CUSTOM", created.Code)
		require.Equal(t, 3, created.DeviceLimit)
		require.True(t, created.IsActive)
		require.Nil(t, created.UsesRemaining)
	})

	t.Run("generated codes match the expected shape", func(t *testing.T) {
		t.Parallel()
		svc := &CodeService{Store: memory.NewStore(), DeviceLimitDefault: 3}
		pattern := regexp.MustCompile(`^TT-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`)

		for i := 0; i < 20; i++ {
			created, err := svc.Create(ctx, CreateCodeParams{Name: "Gen"})
			require.NoError(t, err)
			require.Regexp(t, pattern, created.Code)
		}
	})

	t.Run("explicit limits win over defaults", func(t *testing.T) {
		t.Parallel()
		svc := &CodeService{Store: memory.NewStore(), DeviceLimitDefault: 3}

		created, err := svc.Create(ctx, CreateCodeParams{
			Name: "Metered", DeviceLimit: 10, UsesRemaining: intPtr(7),
		})
		require.NoError(t, err)
		require.Equal(t, 10, created.DeviceLimit)
		require.Equal(t, 7, *created.UsesRemaining)
	})
}

func TestCodeUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := memory.NewStore()
	svc := &CodeService{Store: st, DeviceLimitDefault: 3}

	created, err := svc.Create(ctx, CreateCodeParams{Name: "Team", UsesRemaining: intPtr(5)})
	require.NoError(t, err)

	t.Run("partial update leaves the rest alone", func(t *testing.T) {
		name := "Renamed"
		updated, err := svc.Update(ctx, created.ID, domain.InviteCodeUpdate{Name: &name})
		require.NoError(t, err)
		require.Equal(t, "Renamed", updated.Name)
		require.Equal(t, created.Code, updated.Code)
		require.Equal(t, 5, *updated.UsesRemaining)
	})

	t.Run("uses_remaining can be reset to unlimited", func(t *testing.T) {
		updated, err := svc.Update(ctx, created.ID, domain.InviteCodeUpdate{
			UsesRemaining: nil, UsesRemainingSet: true,
		})
		require.NoError(t, err)
		require.Nil(t, updated.UsesRemaining)
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		name := "x"
		_, err := svc.Update(ctx, "missing", domain.InviteCodeUpdate{Name: &name})
		require.ErrorIs(t, err, ErrCodeNotFound)
	})
}

func TestCodeCascadeDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := memory.NewStore()
	codes := &CodeService{Store: st, DeviceLimitDefault: 3}
	admission := &AdmissionService{
		Store: st,
		Tokens: &TokenService{
			Store:         st,
			SessionTTL:    30 * 24 * time.Hour,
			AdminTokenTTL: 8 * time.Hour,
		},
	}

	created, err := codes.Create(ctx, CreateCodeParams{Name: "Team"})
	require.NoError(t, err)

	first, err := admission.Login(ctx, created.Code, "d1")
	require.NoError(t, err)
	_, err = admission.Login(ctx, created.Code, "d2")
	require.NoError(t, err)

	require.NoError(t, codes.CascadeDelete(ctx, created.ID))

	// Code, users, and sessions are all gone.
	_, err = st.InviteCodes().GetByID(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	users, err := st.Users().ListByInviteCode(ctx, created.ID)
	require.NoError(t, err)
	require.Empty(t, users)

	_, err = st.Sessions().GetActiveByToken(ctx, first.Token, time.Now().UTC())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserCascadeDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := memory.NewStore()
	users := &UserService{Store: st}
	admission := &AdmissionService{
		Store: st,
		Tokens: &TokenService{
			Store:         st,
			SessionTTL:    30 * 24 * time.Hour,
			AdminTokenTTL: 8 * time.Hour,
		},
	}

	_, err := st.InviteCodes().Create(ctx, domain.InviteCode{
		Code: "TT-TEAM01", Name: "Team", DeviceLimit: 3, IsActive: true,
	})
	require.NoError(t, err)

	res, err := admission.Login(ctx, "TT-TEAM01", "d1")
	require.NoError(t, err)

	require.NoError(t, users.CascadeDelete(ctx, res.User.ID))

	_, err = st.Users().GetByID(ctx, res.User.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Sessions().GetActiveByToken(ctx, res.Token, time.Now().UTC())
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, users.CascadeDelete(ctx, res.User.ID), ErrUserNotFound)
}
