package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"strings"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/idx"
	"github.com/traveltalk/server/pkg/slogx"
)

var ErrCodeNotFound = errors.New("invite code not found")

// codeCharset deliberately omits I, O, 0 and 1. 32 characters, so a random
// byte mod len is unbiased.
const (
	codePrefix  = "TT-"
	codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength  = 6
)

// CodeService is the admin-facing invite code CRUD.
type CodeService struct {
	Store store.Store

	// DeviceLimitDefault is applied when a new code does not specify its
	// own device limit.
	DeviceLimitDefault int
}

// CodeWithUsers is an invite code together with the users registered under
// it, as the admin listing shows them.
type CodeWithUsers struct {
	domain.InviteCode
	Users []domain.User
}

// CreateCodeParams carries the admin's create request. Code is optional;
// when empty one is generated. UsesRemaining nil means unlimited.
type CreateCodeParams struct {
	Code          string
	Name          string
	Description   string
	UsesRemaining *int
	DeviceLimit   int
}

// List returns every invite code, newest first, each with its users.
func (s *CodeService) List(ctx context.Context) ([]CodeWithUsers, error) {
	codes, err := s.Store.InviteCodes().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CodeWithUsers, 0, len(codes))
	for _, c := range codes {
		users, err := s.Store.Users().ListByInviteCode(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CodeWithUsers{InviteCode: c, Users: users})
	}
	return out, nil
}

// Create inserts a new invite code. The code string is uppercased; when
// absent a fresh TT-XXXXXX code is generated.
func (s *CodeService) Create(ctx context.Context, p CreateCodeParams) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	code := strings.ToUpper(strings.TrimSpace(p.Code))
	if code == "" {
		var err error
		code, err = generateInviteCode()
		if err != nil {
			return domain.InviteCode{}, err
		}
	}

	deviceLimit := p.DeviceLimit
	if deviceLimit <= 0 {
		deviceLimit = s.DeviceLimitDefault
	}

	created, err := s.Store.InviteCodes().Create(ctx, domain.InviteCode{
		ID:            idx.New().String(),
		Code:          code,
		Name:          p.Name,
		Description:   p.Description,
		UsesRemaining: p.UsesRemaining,
		DeviceLimit:   deviceLimit,
		IsActive:      true,
	})
	if err != nil {
		log.Error("failed to create invite code",
			slog.String("code", code),
			slog.Any("error", err),
		)
		return domain.InviteCode{}, err
	}

	log.Info("invite code created",
		slog.String("invite_code_id", created.ID),
		slog.String("code", created.Code),
	)
	return created, nil
}

// Update applies a partial update to a code.
func (s *CodeService) Update(ctx context.Context, id string, upd domain.InviteCodeUpdate) (domain.InviteCode, error) {
	updated, err := s.Store.InviteCodes().Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.InviteCode{}, ErrCodeNotFound
		}
		return domain.InviteCode{}, err
	}
	return updated, nil
}

// CascadeDelete removes a code and everything under it: sessions first,
// then users, then the code row. The steps are not atomic; deleting
// children first means an interruption strands an orphan instead of a
// dangling reference.
func (s *CodeService) CascadeDelete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	users, err := s.Store.Users().ListByInviteCode(ctx, id)
	if err != nil {
		return err
	}

	for _, u := range users {
		if err := s.Store.Sessions().DeleteByUser(ctx, u.ID); err != nil {
			return err
		}
	}
	for _, u := range users {
		if err := s.Store.Users().Delete(ctx, u.ID); err != nil {
			return err
		}
	}
	if err := s.Store.InviteCodes().Delete(ctx, id); err != nil {
		return err
	}

	log.Info("invite code deleted",
		slog.String("invite_code_id", id),
		slog.Int("users_removed", len(users)),
	)
	return nil
}

// generateInviteCode produces a TT-XXXXXX code from the charset. The
// charset length divides 256, so mod is uniform.
func generateInviteCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(codePrefix)
	for _, v := range buf {
		b.WriteByte(codeCharset[int(v)%len(codeCharset)])
	}
	return b.String(), nil
}
