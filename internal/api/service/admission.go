package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/idx"
	"github.com/traveltalk/server/pkg/slogx"
)

var (
	ErrInvalidCode        = errors.New("invalid invite code")
	ErrCodeExhausted      = errors.New("invite code exhausted")
	ErrDeviceLimitReached = errors.New("device limit reached for this code")
)

// AdmissionService admits devices into the system via shared invite codes.
// There is no registration flow: presenting a valid code from a device is
// the whole identity ceremony, and the same (code, device) pair always
// resolves to the same user.
type AdmissionService struct {
	Store  store.Store
	Tokens *TokenService
}

// LoginResult is what a successful admission hands back to the client.
type LoginResult struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

// Login admits a device using an invite code. The code is matched
// case-insensitively. A device already registered under the code is
// re-admitted without consuming a use; a new device consumes one use (when
// the code is metered) and counts against the code's device limit.
//
// The device-limit check and the user insert are separate store calls, so
// two simultaneous first logins on a full code can both pass the check.
// The store is non-transactional; the window is accepted.
func (s *AdmissionService) Login(ctx context.Context, code, deviceID string) (LoginResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Resolve the active invite code, case-insensitively.
	normalized := strings.ToUpper(strings.TrimSpace(code))
	invite, err := s.Store.InviteCodes().GetActiveByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login with unknown or inactive invite code",
				slog.String("code", normalized),
			)
			return LoginResult{}, ErrInvalidCode
		}
		log.Error("failed to fetch invite code", slog.Any("error", err))
		return LoginResult{}, err
	}

	// 2. Reject exhausted metered codes. This gates returning devices too:
	// an exhausted code admits nobody.
	if invite.UsesRemaining != nil && *invite.UsesRemaining <= 0 {
		log.Warn("login with exhausted invite code",
			slog.String("invite_code_id", invite.ID),
		)
		return LoginResult{}, ErrCodeExhausted
	}

	// Every user under a code carries the code's display name.
	userName := invite.Name

	// 3. Returning device: reuse the existing user, syncing its name if
	// the code was renamed since last login.
	user, err := s.Store.Users().GetByCodeAndDevice(ctx, invite.ID, deviceID)
	switch {
	case err == nil:
		if user.Name != userName {
			if err := s.Store.Users().UpdateName(ctx, user.ID, userName); err != nil {
				log.Warn("failed to sync user name from invite code",
					slog.String("user_id", user.ID),
					slog.Any("error", err),
				)
			} else {
				user.Name = userName
			}
		}

	case errors.Is(err, store.ErrNotFound):
		// 4. New device: enforce the distinct-device limit.
		count, err := s.Store.Users().CountDevices(ctx, invite.ID)
		if err != nil {
			log.Error("failed to count devices", slog.Any("error", err))
			return LoginResult{}, err
		}
		if count >= invite.DeviceLimit {
			log.Warn("login rejected, device limit reached",
				slog.String("invite_code_id", invite.ID),
				slog.Int("device_limit", invite.DeviceLimit),
			)
			return LoginResult{}, ErrDeviceLimitReached
		}

		// 5. Register the device as a new user.
		user, err = s.Store.Users().Create(ctx, domain.User{
			ID:           idx.New().String(),
			InviteCodeID: invite.ID,
			Name:         userName,
			DeviceID:     deviceID,
		})
		if err != nil {
			log.Error("failed to create user", slog.Any("error", err))
			return LoginResult{}, err
		}

		// 6. Consume one use of a metered code. Best effort: the user
		// already exists, so a failure here leaks a use rather than an
		// identity.
		if invite.UsesRemaining != nil {
			if err := s.Store.InviteCodes().SetUsesRemaining(ctx, invite.ID, *invite.UsesRemaining-1); err != nil {
				log.Warn("failed to decrement invite code uses",
					slog.String("invite_code_id", invite.ID),
					slog.Any("error", err),
				)
			}
		}

	default:
		log.Error("failed to fetch user", slog.Any("error", err))
		return LoginResult{}, err
	}

	// 7. Stamp the code's last use. Best effort.
	if err := s.Store.InviteCodes().TouchLastUsed(ctx, invite.ID, time.Now().UTC()); err != nil {
		log.Warn("failed to touch invite code",
			slog.String("invite_code_id", invite.ID),
			slog.Any("error", err),
		)
	}

	// 8. Mint the session.
	sess, err := s.Tokens.MintSession(ctx, user.ID)
	if err != nil {
		log.Error("failed to mint session", slog.Any("error", err))
		return LoginResult{}, err
	}

	log.Info("device admitted",
		slog.String("invite_code_id", invite.ID),
		slog.String("user_id", user.ID),
	)
	return LoginResult{
		Token:     sess.Token,
		User:      user,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}
