package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
)

const (
	statsDefaultPeriodDays = 30
	statsSessionSample     = 100
)

// StatsService aggregates usage numbers for the admin dashboard.
type StatsService struct {
	Store store.Store
}

// Stats is the aggregated dashboard payload.
type Stats struct {
	PeriodDays int                     `json:"period_days"`
	Totals     StatsTotals             `json:"totals"`
	ByMode     map[string]int          `json:"by_mode"`
	ByUser     map[string]StatsPerUser `json:"by_user"`
	ByDay      map[string]int          `json:"by_day"`
	LangPairs  map[string]int          `json:"lang_pairs"`
}

type StatsTotals struct {
	Codes          int `json:"codes"`
	ActiveCodes    int `json:"active_codes"`
	Users          int `json:"users"`
	Translations   int `json:"translations"`
	Dialogs        int `json:"dialogs"`
	ActiveSessions int `json:"active_sessions"`
}

type StatsPerUser struct {
	Translations int `json:"translations"`
	Dialogs      int `json:"dialogs"`
}

// Aggregate computes usage stats over the trailing period. The five source
// reads are independent of each other and issued concurrently; only the
// in-memory aggregation afterwards is sequential.
func (s *StatsService) Aggregate(ctx context.Context, days int) (Stats, error) {
	if days <= 0 {
		days = statsDefaultPeriodDays
	}
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)

	var (
		codes        []domain.InviteCode
		users        []domain.UserWithCode
		translations []domain.Translation
		dialogs      []domain.DialogSession
		sessions     []domain.Session
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		codes, err = s.Store.InviteCodes().List(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.Store.Users().List(gctx)
		return err
	})
	g.Go(func() (err error) {
		translations, err = s.Store.Translations().ListSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		dialogs, err = s.Store.Dialogs().ListSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.Store.Sessions().ListRecent(gctx, statsSessionSample)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	userName := make(map[string]string, len(users))
	for _, u := range users {
		userName[u.ID] = u.Name
	}
	nameOf := func(userID string) string {
		if n, ok := userName[userID]; ok {
			return n
		}
		return "Unknown"
	}

	st := Stats{
		PeriodDays: days,
		ByMode:     map[string]int{},
		ByUser:     map[string]StatsPerUser{},
		ByDay:      map[string]int{},
		LangPairs:  map[string]int{},
	}

	for _, c := range codes {
		if c.IsActive {
			st.Totals.ActiveCodes++
		}
	}
	st.Totals.Codes = len(codes)
	st.Totals.Users = len(users)
	st.Totals.Translations = len(translations)
	st.Totals.Dialogs = len(dialogs)
	for _, sess := range sessions {
		if sess.ExpiresAt.After(now) {
			st.Totals.ActiveSessions++
		}
	}

	for _, t := range translations {
		st.ByMode[t.Mode]++
		per := st.ByUser[nameOf(t.UserID)]
		per.Translations++
		st.ByUser[nameOf(t.UserID)] = per
		st.ByDay[t.CreatedAt.UTC().Format("2006-01-02")]++
		st.LangPairs[t.SourceLang+" → "+t.TargetLang]++
	}
	for _, d := range dialogs {
		per := st.ByUser[nameOf(d.UserID)]
		per.Dialogs++
		st.ByUser[nameOf(d.UserID)] = per
		st.ByDay[d.CreatedAt.UTC().Format("2006-01-02")]++
	}

	return st, nil
}
