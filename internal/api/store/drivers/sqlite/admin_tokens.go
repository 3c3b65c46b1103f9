package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/pkg/idx"
)

type adminTokensRepo struct {
	db *sql.DB
}

func (r *adminTokensRepo) Create(ctx context.Context, t domain.AdminToken) error {
	if t.ID == "" {
		t.ID = idx.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_tokens (id, token, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Token, t.ExpiresAt, t.CreatedAt)
	return err
}

func (r *adminTokensRepo) GetActiveByToken(ctx context.Context, token string, now time.Time) (domain.AdminToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, token, expires_at, created_at FROM admin_tokens WHERE token = ? AND expires_at > ?`,
		token, now)

	var t domain.AdminToken
	err := row.Scan(&t.ID, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.AdminToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *adminTokensRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_tokens WHERE token = ?`, token)
	return err
}

func (r *adminTokensRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_tokens WHERE expires_at <= ?`, now)
	return err
}
