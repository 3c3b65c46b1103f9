package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/idx"
)

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) GetByCodeAndDevice(ctx context.Context, inviteCodeID, deviceID string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, invite_code_id, name, device_id, created_at
		 FROM users WHERE invite_code_id = ? AND device_id = ?`, inviteCodeID, deviceID)
	return scanUser(row)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, invite_code_id, name, device_id, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) CountDevices(ctx context.Context, inviteCodeID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT device_id) FROM users WHERE invite_code_id = ?`, inviteCodeID).Scan(&count)
	return count, err
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = idx.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, invite_code_id, name, device_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.InviteCodeID, u.Name, u.DeviceID, u.CreatedAt)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) UpdateName(ctx context.Context, userID, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) List(ctx context.Context) ([]domain.UserWithCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.invite_code_id, u.name, u.device_id, u.created_at,
		        COALESCE(c.code, ''), COALESCE(c.name, '')
		 FROM users u
		 LEFT JOIN invite_codes c ON c.id = u.invite_code_id
		 ORDER BY u.created_at DESC, u.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserWithCode
	for rows.Next() {
		var uc domain.UserWithCode
		if err := rows.Scan(&uc.ID, &uc.InviteCodeID, &uc.Name, &uc.DeviceID,
			&uc.CreatedAt, &uc.CodeCode, &uc.CodeName); err != nil {
			return nil, err
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}

func (r *usersRepo) ListByInviteCode(ctx context.Context, inviteCodeID string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, invite_code_id, name, device_id, created_at
		 FROM users WHERE invite_code_id = ? ORDER BY created_at DESC, id DESC`, inviteCodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.InviteCodeID, &u.Name, &u.DeviceID, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}
