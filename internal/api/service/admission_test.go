package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/internal/api/store/drivers/memory"
)

func newAdmission(t *testing.T) (*AdmissionService, store.Store) {
	t.Helper()
	st := memory.NewStore()
	tokens := &TokenService{
		Store:         st,
		SessionTTL:    30 * 24 * time.Hour,
		AdminTokenTTL: 8 * time.Hour,
	}
	return &AdmissionService{Store: st, Tokens: tokens}, st
}

func seedCode(t *testing.T, st store.Store, c domain.InviteCode) domain.InviteCode {
	t.Helper()
	created, err := st.InviteCodes().Create(context.Background(), c)
	require.NoError(t, err)
	return created
}

func intPtr(n int) *int { return &n }

func TestAdmissionLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown code is rejected", func(t *testing.T) {
		t.Parallel()
		svc, _ := newAdmission(t)

		_, err := svc.Login(ctx, "TT-NOPE99", "d1")
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("inactive code is rejected", func(t *testing.T) {
		t.Parallel()
		svc, st := newAdmission(t)
		seedCode(t, st, domain.InviteCode{
			Code: "TT-DEAD00", Name: "Old", DeviceLimit: 3, IsActive: false,
		})

		_, err := svc.Login(ctx, "TT-DEAD00", "d1")
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("code match is case-insensitive", func(t *testing.T) {
		t.Parallel()
		svc, st := newAdmission(t)
		seedCode(t, st, domain.InviteCode{
			Code: "TT-CASE77", Name: "Case", DeviceLimit: 3, IsActive: true,
		})

		res, err := svc.Login(ctx, "  tt-case77 ", "d1")
		require.NoError(t, err)
		require.Equal(t, "Case", res.User.Name)
	})

	t.Run("first login creates user and session and decrements uses", func(t *testing.T) {
		t.Parallel()
		svc, st := newAdmission(t)
		code := seedCode(t, st, domain.InviteCode{
			Code: "TT-FRESH1", Name: "Team", DeviceLimit: 3,
			UsesRemaining: intPtr(5), IsActive: true,
		})

		before := time.Now().UTC()
		res, err := svc.Login(ctx, "TT-FRESH1", "d1")
		require.NoError(t, err)
		require.Len(t, res.Token, 64)
		require.Equal(t, "Team", res.User.Name)
		require.Equal(t, "d1", res.User.DeviceID)
		require.WithinDuration(t, before.Add(30*24*time.Hour), res.ExpiresAt, time.Minute)

		// The session resolves back to the user.
		su, err := st.Sessions().GetActiveByToken(ctx, res.Token, time.Now().UTC())
		require.NoError(t, err)
		require.Equal(t, res.User.ID, su.UserID)

		// One use consumed, last_used_at stamped.
		got, err := st.InviteCodes().GetByID(ctx, code.ID)
		require.NoError(t, err)
		require.NotNil(t, got.UsesRemaining)
		require.Equal(t, 4, *got.UsesRemaining)
		require.NotNil(t, got.LastUsedAt)
	})

	t.Run("unlimited code never decrements", func(t *testing.T) {
		t.Parallel()
		svc, st := newAdmission(t)
		code := seedCode(t, st, domain.InviteCode{
			Code: "TT-NOCAP1", Name: "Open", DeviceLimit: 3, IsActive: true,
		})

		_, err := svc.Login(ctx, "TT-NOCAP1", "d1")
		require.NoError(t, err)

		got, err := st.InviteCodes().GetByID(ctx, code.ID)
		require.NoError(t, err)
		require.Nil(t, got.UsesRemaining)
	})

	t.Run("repeat login reuses user without consuming a use", func(t *testing.T) {
		t.Parallel()
		svc, st := newAdmission(t)
		code := seedCode(t, st, domain.InviteCode{
			Code: "TT-AGAIN1", Name: "Team", DeviceLimit: 3,
			UsesRemaining: intPtr(5), IsActive: true,
		})

		first, err := svc.Login(ctx, "TT-AGAIN1", "d1")
		require.NoError(t, err)
		second, err := svc.Login(ctx, "TT-AGAIN1", "d1")
		require.NoError(t, err)

		require.Equal(t, first.User.ID, second.User.ID)
		require.NotEqual(t, first.Token, second.Token, "each login mints a fresh session")

		got, err := st.InviteCodes().GetByID(ctx, code.ID)
		require.NoError(t, err)
		require.Equal(t, 4, *got.UsesRemaining, "only the first device consumed a use")

		users, err := st.Users().ListByInviteCode(ctx, code.ID)
		require.NoError(t, err)
		require.Len(t, users, 1)
	})

	t.Run("exhausted code rejects everyone", func(t *testing.T) {
		t.Parallel()
		svc, st := newAdmission(t)
		code := seedCode(t, st, domain.InviteCode{
			Code: "TT-EMPTY1", Name: "Spent", DeviceLimit: 3,
			UsesRemaining: intPtr(1), IsActive: true,
		})

		_, err := svc.Login(ctx, "TT-EMPTY1", "d1")
		require.NoError(t, err)

		got, err := st.InviteCodes().GetByID(ctx, code.ID)
		require.NoError(t, err)
		require.Equal(t, 0, *got.UsesRemaining)

		// New device: exhausted.
		_, err = svc.Login(ctx, "TT-EMPTY1", "d2")
		require.ErrorIs(t, err, ErrCodeExhausted)

		// Even the registered device is turned away once the code is spent.
		_, err = svc.Login(ctx, "TT-EMPTY1", "d1")
		require.ErrorIs(t, err, ErrCodeExhausted)
	})

	t.Run("renamed code re-syncs the user name on next login", func(t *testing.T) {
		t.Parallel()
		svc, st := newAdmission(t)
		code := seedCode(t, st, domain.InviteCode{
			Code: "TT-RENAME", Name: "Before", DeviceLimit: 3, IsActive: true,
		})

		first, err := svc.Login(ctx, "TT-RENAME", "d1")
		require.NoError(t, err)
		require.Equal(t, "Before", first.User.Name)

		newName := "After"
		_, err = st.InviteCodes().Update(ctx, code.ID, domain.InviteCodeUpdate{Name: &newName})
		require.NoError(t, err)

		second, err := svc.Login(ctx, "TT-RENAME", "d1")
		require.NoError(t, err)
		require.Equal(t, first.User.ID, second.User.ID)
		require.Equal(t, "After", second.User.Name)

		stored, err := st.Users().GetByID(ctx, first.User.ID)
		require.NoError(t, err)
		require.Equal(t, "After", stored.Name)
	})
}

func TestAdmissionDeviceLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, st := newAdmission(t)
	seedCode(t, st, domain.InviteCode{
		Code: "TT-ABC123", Name: "Team", DeviceLimit: 2, IsActive: true,
	})

	// d1 registers.
	first, err := svc.Login(ctx, "TT-ABC123", "d1")
	require.NoError(t, err)
	require.Equal(t, "Team", first.User.Name)

	// d2 registers, filling the limit.
	second, err := svc.Login(ctx, "TT-ABC123", "d2")
	require.NoError(t, err)
	require.NotEqual(t, first.User.ID, second.User.ID)

	// d3 is one device too many.
	_, err = svc.Login(ctx, "TT-ABC123", "d3")
	require.ErrorIs(t, err, ErrDeviceLimitReached)

	// d1 returns: same user, fresh token, no new row.
	again, err := svc.Login(ctx, "TT-ABC123", "d1")
	require.NoError(t, err)
	require.Equal(t, first.User.ID, again.User.ID)
	require.NotEqual(t, first.Token, again.Token)

	code, err := st.InviteCodes().GetActiveByCode(ctx, "TT-ABC123")
	require.NoError(t, err)
	users, err := st.Users().ListByInviteCode(ctx, code.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
