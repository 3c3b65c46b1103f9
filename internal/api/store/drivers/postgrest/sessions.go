package postgrest

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
)

type sessionsRepo struct {
	c *Store
}

type sessionRow struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Embedded join when selected as users(id,name,invite_code_id).
	User *struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		InviteCodeID string `json:"invite_code_id"`
	} `json:"users,omitempty"`
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.Session) error {
	_, _, err := r.c.do(ctx, "POST", "sessions", sessionRow{
		UserID:    s.UserID,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC(),
	}, "return=minimal")
	return err
}

func (r *sessionsRepo) GetActiveByToken(ctx context.Context, token string, now time.Time) (domain.SessionUser, error) {
	row, err := getOne[sessionRow](ctx, r.c,
		"sessions?token=eq."+url.QueryEscape(token)+
			"&expires_at=gt."+url.QueryEscape(now.UTC().Format(time.RFC3339))+
			"&select=id,user_id,users(id,name,invite_code_id)")
	if err != nil {
		return domain.SessionUser{}, err
	}
	// A session whose user was cascaded away comes back with a null
	// embed; treat it as no session at all.
	if row.User == nil {
		return domain.SessionUser{}, store.ErrNotFound
	}
	return domain.SessionUser{
		SessionID:    row.ID,
		UserID:       row.User.ID,
		UserName:     row.User.Name,
		InviteCodeID: row.User.InviteCodeID,
	}, nil
}

func (r *sessionsRepo) ListRecent(ctx context.Context, limit int) ([]domain.Session, error) {
	rows, err := getRows[sessionRow](ctx, r.c,
		"sessions?select=id,user_id,token,expires_at,created_at&order=created_at.desc&limit="+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Session{
			ID:        row.ID,
			UserID:    row.UserID,
			Token:     row.Token,
			ExpiresAt: row.ExpiresAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *sessionsRepo) DeleteByToken(ctx context.Context, token string) error {
	return r.c.delete(ctx, "sessions?token=eq."+url.QueryEscape(token))
}

func (r *sessionsRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.c.delete(ctx, "sessions?user_id=eq."+url.QueryEscape(userID))
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.c.delete(ctx,
		"sessions?expires_at=lte."+url.QueryEscape(now.UTC().Format(time.RFC3339)))
}
