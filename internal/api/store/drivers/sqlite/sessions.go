package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/pkg/idx"
)

type sessionsRepo struct {
	db *sql.DB
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.Session) error {
	if s.ID == "" {
		s.ID = idx.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Token, s.ExpiresAt, s.CreatedAt)
	return err
}

func (r *sessionsRepo) GetActiveByToken(ctx context.Context, token string, now time.Time) (domain.SessionUser, error) {
	// Inner join drops orphaned sessions whose user was already cascaded
	// away, so they resolve the same as unknown tokens.
	row := r.db.QueryRowContext(ctx,
		`SELECT s.id, u.id, u.name, u.invite_code_id
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token = ? AND s.expires_at > ?`, token, now)

	var su domain.SessionUser
	err := row.Scan(&su.SessionID, &su.UserID, &su.UserName, &su.InviteCodeID)
	if err != nil {
		return domain.SessionUser{}, mapNotFound(err)
	}
	return su, nil
}

func (r *sessionsRepo) ListRecent(ctx context.Context, limit int) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, token, expires_at, created_at
		 FROM sessions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func (r *sessionsRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	return err
}
