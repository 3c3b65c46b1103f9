package postgrest

import (
	"context"
	"net/url"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
)

type usersRepo struct {
	c *Store
}

type userRow struct {
	ID           string    `json:"id,omitempty"`
	InviteCodeID string    `json:"invite_code_id"`
	Name         string    `json:"name"`
	DeviceID     string    `json:"device_id"`
	CreatedAt    time.Time `json:"created_at,omitempty"`

	// Embedded join when selected as invite_codes(code,name).
	InviteCode *struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"invite_codes,omitempty"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		InviteCodeID: r.InviteCodeID,
		Name:         r.Name,
		DeviceID:     r.DeviceID,
		CreatedAt:    r.CreatedAt,
	}
}

func (r *usersRepo) GetByCodeAndDevice(ctx context.Context, inviteCodeID, deviceID string) (domain.User, error) {
	row, err := getOne[userRow](ctx, r.c,
		"users?invite_code_id=eq."+url.QueryEscape(inviteCodeID)+
			"&device_id=eq."+url.QueryEscape(deviceID)+"&select=*")
	if err != nil {
		return domain.User{}, err
	}
	return row.toDomain(), nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	row, err := getOne[userRow](ctx, r.c, "users?id=eq."+url.QueryEscape(id)+"&select=*")
	if err != nil {
		return domain.User{}, err
	}
	return row.toDomain(), nil
}

func (r *usersRepo) CountDevices(ctx context.Context, inviteCodeID string) (int, error) {
	// The store cannot count distinct values server side, so fetch the
	// device_id column and reduce here. Device counts per code are small
	// by construction (bounded by device_limit plus the race window).
	rows, err := getRows[struct {
		DeviceID string `json:"device_id"`
	}](ctx, r.c, "users?invite_code_id=eq."+url.QueryEscape(inviteCodeID)+"&select=device_id")
	if err != nil {
		return 0, err
	}

	distinct := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		distinct[row.DeviceID] = struct{}{}
	}
	return len(distinct), nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	row, err := insertOne[userRow](ctx, r.c, "users", userRow{
		InviteCodeID: u.InviteCodeID,
		Name:         u.Name,
		DeviceID:     u.DeviceID,
	})
	if err != nil {
		return domain.User{}, err
	}
	return row.toDomain(), nil
}

func (r *usersRepo) UpdateName(ctx context.Context, userID, name string) error {
	return r.c.patch(ctx, "users?id=eq."+url.QueryEscape(userID),
		map[string]any{"name": name})
}

func (r *usersRepo) List(ctx context.Context) ([]domain.UserWithCode, error) {
	rows, err := getRows[userRow](ctx, r.c,
		"users?select=id,invite_code_id,name,device_id,created_at,invite_codes(code,name)&order=created_at.desc")
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserWithCode, 0, len(rows))
	for _, row := range rows {
		uc := domain.UserWithCode{User: row.toDomain()}
		if row.InviteCode != nil {
			uc.CodeCode = row.InviteCode.Code
			uc.CodeName = row.InviteCode.Name
		}
		out = append(out, uc)
	}
	return out, nil
}

func (r *usersRepo) ListByInviteCode(ctx context.Context, inviteCodeID string) ([]domain.User, error) {
	rows, err := getRows[userRow](ctx, r.c,
		"users?invite_code_id=eq."+url.QueryEscape(inviteCodeID)+"&select=*&order=created_at.desc")
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *usersRepo) Delete(ctx context.Context, userID string) error {
	return r.c.delete(ctx, "users?id=eq."+url.QueryEscape(userID))
}
