package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/idx"
)

type inviteCodesRepo struct {
	db *sql.DB
}

const inviteCodeColumns = `id, code, name, description, uses_remaining, device_limit, is_active, created_at, last_used_at`

func (r *inviteCodesRepo) GetActiveByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteCodeColumns+` FROM invite_codes WHERE code = ? AND is_active = 1`, code)
	return scanInviteCode(row)
}

func (r *inviteCodesRepo) GetByID(ctx context.Context, id string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteCodeColumns+` FROM invite_codes WHERE id = ?`, id)
	return scanInviteCode(row)
}

func (r *inviteCodesRepo) List(ctx context.Context) ([]domain.InviteCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteCodeColumns+` FROM invite_codes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InviteCode
	for rows.Next() {
		c, err := scanInviteCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *inviteCodesRepo) Create(ctx context.Context, c domain.InviteCode) (domain.InviteCode, error) {
	if c.ID == "" {
		c.ID = idx.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invite_codes (id, code, name, description, uses_remaining, device_limit, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Code, c.Name, c.Description, mapOptionalInt(c.UsesRemaining), c.DeviceLimit, c.IsActive, c.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.InviteCode{}, store.ErrAlreadyExists
		}
		return domain.InviteCode{}, err
	}
	return c, nil
}

func (r *inviteCodesRepo) Update(ctx context.Context, id string, upd domain.InviteCodeUpdate) (domain.InviteCode, error) {
	var (
		sets []string
		args []any
	)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.DeviceLimit != nil {
		sets = append(sets, "device_limit = ?")
		args = append(args, *upd.DeviceLimit)
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *upd.IsActive)
	}
	if upd.UsesRemainingSet {
		sets = append(sets, "uses_remaining = ?")
		args = append(args, mapOptionalInt(upd.UsesRemaining))
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := r.db.ExecContext(ctx,
			`UPDATE invite_codes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return domain.InviteCode{}, err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.InviteCode{}, store.ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *inviteCodesRepo) SetUsesRemaining(ctx context.Context, id string, remaining int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invite_codes SET uses_remaining = ? WHERE id = ?`, remaining, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *inviteCodesRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invite_codes SET last_used_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *inviteCodesRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM invite_codes WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInviteCode(row rowScanner) (domain.InviteCode, error) {
	var (
		c          domain.InviteCode
		uses       sql.NullInt64
		lastUsedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &uses,
		&c.DeviceLimit, &c.IsActive, &c.CreatedAt, &lastUsedAt)
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	c.UsesRemaining = mapNullInt(uses)
	c.LastUsedAt = mapNullTimePtr(lastUsedAt)
	return c, nil
}
