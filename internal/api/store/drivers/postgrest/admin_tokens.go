package postgrest

import (
	"context"
	"net/url"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
)

type adminTokensRepo struct {
	c *Store
}

type adminTokenRow struct {
	ID        string    `json:"id,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (r *adminTokensRepo) Create(ctx context.Context, t domain.AdminToken) error {
	_, _, err := r.c.do(ctx, "POST", "admin_tokens", adminTokenRow{
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt.UTC(),
	}, "return=minimal")
	return err
}

func (r *adminTokensRepo) GetActiveByToken(ctx context.Context, token string, now time.Time) (domain.AdminToken, error) {
	row, err := getOne[adminTokenRow](ctx, r.c,
		"admin_tokens?token=eq."+url.QueryEscape(token)+
			"&expires_at=gt."+url.QueryEscape(now.UTC().Format(time.RFC3339))+
			"&select=*")
	if err != nil {
		return domain.AdminToken{}, err
	}
	return domain.AdminToken{
		ID:        row.ID,
		Token:     row.Token,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *adminTokensRepo) DeleteByToken(ctx context.Context, token string) error {
	return r.c.delete(ctx, "admin_tokens?token=eq."+url.QueryEscape(token))
}

func (r *adminTokensRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.c.delete(ctx,
		"admin_tokens?expires_at=lte."+url.QueryEscape(now.UTC().Format(time.RFC3339)))
}
