package postgrest

import (
	"context"
	"net/url"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
)

type inviteCodesRepo struct {
	c *Store
}

type inviteCodeRow struct {
	ID            string     `json:"id,omitempty"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	UsesRemaining *int       `json:"uses_remaining"`
	DeviceLimit   int        `json:"device_limit"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
}

func (r inviteCodeRow) toDomain() domain.InviteCode {
	return domain.InviteCode{
		ID:            r.ID,
		Code:          r.Code,
		Name:          r.Name,
		Description:   r.Description,
		UsesRemaining: r.UsesRemaining,
		DeviceLimit:   r.DeviceLimit,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		LastUsedAt:    r.LastUsedAt,
	}
}

func (r *inviteCodesRepo) GetActiveByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	row, err := getOne[inviteCodeRow](ctx, r.c,
		"invite_codes?code=eq."+url.QueryEscape(code)+"&is_active=eq.true&select=*")
	if err != nil {
		return domain.InviteCode{}, err
	}
	return row.toDomain(), nil
}

func (r *inviteCodesRepo) GetByID(ctx context.Context, id string) (domain.InviteCode, error) {
	row, err := getOne[inviteCodeRow](ctx, r.c,
		"invite_codes?id=eq."+url.QueryEscape(id)+"&select=*")
	if err != nil {
		return domain.InviteCode{}, err
	}
	return row.toDomain(), nil
}

func (r *inviteCodesRepo) List(ctx context.Context) ([]domain.InviteCode, error) {
	rows, err := getRows[inviteCodeRow](ctx, r.c,
		"invite_codes?select=*&order=created_at.desc")
	if err != nil {
		return nil, err
	}
	out := make([]domain.InviteCode, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *inviteCodesRepo) Create(ctx context.Context, c domain.InviteCode) (domain.InviteCode, error) {
	row, err := insertOne[inviteCodeRow](ctx, r.c, "invite_codes", inviteCodeRow{
		Code:          c.Code,
		Name:          c.Name,
		Description:   c.Description,
		UsesRemaining: c.UsesRemaining,
		DeviceLimit:   c.DeviceLimit,
		IsActive:      c.IsActive,
	})
	if err != nil {
		return domain.InviteCode{}, err
	}
	return row.toDomain(), nil
}

func (r *inviteCodesRepo) Update(ctx context.Context, id string, upd domain.InviteCodeUpdate) (domain.InviteCode, error) {
	patch := map[string]any{}
	if upd.Name != nil {
		patch["name"] = *upd.Name
	}
	if upd.Description != nil {
		patch["description"] = *upd.Description
	}
	if upd.DeviceLimit != nil {
		patch["device_limit"] = *upd.DeviceLimit
	}
	if upd.IsActive != nil {
		patch["is_active"] = *upd.IsActive
	}
	if upd.UsesRemainingSet {
		patch["uses_remaining"] = upd.UsesRemaining // nil marshals to null
	}

	if len(patch) > 0 {
		if err := r.c.patch(ctx, "invite_codes?id=eq."+url.QueryEscape(id), patch); err != nil {
			return domain.InviteCode{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *inviteCodesRepo) SetUsesRemaining(ctx context.Context, id string, remaining int) error {
	return r.c.patch(ctx, "invite_codes?id=eq."+url.QueryEscape(id),
		map[string]any{"uses_remaining": remaining})
}

func (r *inviteCodesRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	return r.c.patch(ctx, "invite_codes?id=eq."+url.QueryEscape(id),
		map[string]any{"last_used_at": at.UTC()})
}

func (r *inviteCodesRepo) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, "invite_codes?id=eq."+url.QueryEscape(id))
}
