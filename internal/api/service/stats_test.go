package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store/drivers/memory"
	"github.com/traveltalk/server/pkg/idx"
)

func TestStatsAggregate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := memory.NewStore()
	svc := &StatsService{Store: st}
	now := time.Now().UTC()

	_, err := st.InviteCodes().Create(ctx, domain.InviteCode{
		Code: "TT-LIVE01", Name: "Live", DeviceLimit: 3, IsActive: true,
	})
	require.NoError(t, err)
	_, err = st.InviteCodes().Create(ctx, domain.InviteCode{
		Code: "TT-DEAD01", Name: "Dead", DeviceLimit: 3, IsActive: false,
	})
	require.NoError(t, err)

	alice, err := st.Users().Create(ctx, domain.User{InviteCodeID: "c1", Name: "Alice", DeviceID: "d1"})
	require.NoError(t, err)
	bob, err := st.Users().Create(ctx, domain.User{InviteCodeID: "c1", Name: "Bob", DeviceID: "d2"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, st.Translations().Insert(ctx, domain.Translation{
			ID: idx.New().String(), UserID: alice.ID, Mode: "text",
			SourceLang: "en", TargetLang: "ru", CreatedAt: now,
		}))
	}
	require.NoError(t, st.Translations().Insert(ctx, domain.Translation{
		ID: idx.New().String(), UserID: bob.ID, Mode: "voice",
		SourceLang: "en", TargetLang: "es", CreatedAt: now,
	}))
	// Outside the period: must not count.
	require.NoError(t, st.Translations().Insert(ctx, domain.Translation{
		ID: idx.New().String(), UserID: alice.ID, Mode: "text",
		SourceLang: "en", TargetLang: "ru", CreatedAt: now.AddDate(0, 0, -40),
	}))

	_, err = st.Dialogs().CreateSession(ctx, domain.DialogSession{
		UserID: alice.ID, SourceLang: "en", TargetLang: "ru", CreatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, st.Sessions().Create(ctx, domain.Session{
		ID: "s1", UserID: alice.ID, Token: "tok1", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}))
	require.NoError(t, st.Sessions().Create(ctx, domain.Session{
		ID: "s2", UserID: bob.ID, Token: "tok2", ExpiresAt: now.Add(-time.Hour), CreatedAt: now,
	}))

	stats, err := svc.Aggregate(ctx, 0)
	require.NoError(t, err)

	require.Equal(t, 30, stats.PeriodDays, "zero days falls back to the default period")
	require.Equal(t, 2, stats.Totals.Codes)
	require.Equal(t, 1, stats.Totals.ActiveCodes)
	require.Equal(t, 2, stats.Totals.Users)
	require.Equal(t, 3, stats.Totals.Translations)
	require.Equal(t, 1, stats.Totals.Dialogs)
	require.Equal(t, 1, stats.Totals.ActiveSessions)

	require.Equal(t, map[string]int{"text": 2, "voice": 1}, stats.ByMode)
	require.Equal(t, StatsPerUser{Translations: 2, Dialogs: 1}, stats.ByUser["Alice"])
	require.Equal(t, StatsPerUser{Translations: 1}, stats.ByUser["Bob"])
	require.Equal(t, 2, stats.LangPairs["en → ru"])
	require.Equal(t, 1, stats.LangPairs["en → es"])
	require.Equal(t, 4, stats.ByDay[now.Format("2006-01-02")])
}
