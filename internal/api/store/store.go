package store

import (
	"context"
	"errors"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (postgrest,
// sqlite, memory) implement this. It exposes sub-repositories to keep
// concerns tidy and testable.
//
// There is deliberately no transaction surface: the production credential
// store is driven over plain REST and offers row-level atomicity only.
// Multi-step operations (cascading deletes, the device-limit count before a
// user insert) are ordered sequential calls in the service layer, children
// deleted before parents so an interruption leaves a tolerated orphan
// rather than a dangling reference. Adding WithTx here would silently grant
// atomicity the system is specified not to have.
type Store interface {
	InviteCodes() InviteCodes
	Users() Users
	Sessions() Sessions
	AdminTokens() AdminTokens
	Translations() Translations
	Dialogs() Dialogs
	Phrases() Phrases

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

type InviteCodes interface {
	// GetActiveByCode returns the active invite code with the exact
	// (already-uppercased) code string.
	GetActiveByCode(ctx context.Context, code string) (domain.InviteCode, error)

	// GetByID returns a code regardless of active state.
	GetByID(ctx context.Context, id string) (domain.InviteCode, error)

	// List returns all codes, newest first.
	List(ctx context.Context) ([]domain.InviteCode, error)

	// Create inserts a new code and returns it with store-assigned fields.
	Create(ctx context.Context, c domain.InviteCode) (domain.InviteCode, error)

	// Update applies a partial update and returns the updated row.
	Update(ctx context.Context, id string, upd domain.InviteCodeUpdate) (domain.InviteCode, error)

	// SetUsesRemaining overwrites uses_remaining with an explicit value.
	SetUsesRemaining(ctx context.Context, id string, remaining int) error

	// TouchLastUsed sets last_used_at.
	TouchLastUsed(ctx context.Context, id string, at time.Time) error

	// Delete removes the code row only. Callers must delete children first.
	Delete(ctx context.Context, id string) error
}

type Users interface {
	// GetByCodeAndDevice resolves the (invite_code_id, device_id) natural key.
	GetByCodeAndDevice(ctx context.Context, inviteCodeID, deviceID string) (domain.User, error)

	// GetByID returns a user by id.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// CountDevices returns the number of distinct device_id values
	// registered under a code.
	CountDevices(ctx context.Context, inviteCodeID string) (int, error)

	// Create inserts a new user and returns it with store-assigned fields.
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// UpdateName overwrites a user's display name.
	UpdateName(ctx context.Context, userID, name string) error

	// List returns all users joined with their invite code, newest first.
	List(ctx context.Context) ([]domain.UserWithCode, error)

	// ListByInviteCode returns the users under one code.
	ListByInviteCode(ctx context.Context, inviteCodeID string) ([]domain.User, error)

	// Delete removes the user row only. Callers must delete sessions first.
	Delete(ctx context.Context, userID string) error
}

type Sessions interface {
	// Create persists a new session.
	Create(ctx context.Context, s domain.Session) error

	// GetActiveByToken resolves a token to a live session joined with its
	// user. Returns ErrNotFound uniformly for unknown, expired, and revoked
	// tokens, and for sessions whose user no longer resolves.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (domain.SessionUser, error)

	// ListRecent returns up to limit sessions, newest first. Used by the
	// stats aggregator.
	ListRecent(ctx context.Context, limit int) ([]domain.Session, error)

	// DeleteByToken removes the matching session. Deleting a nonexistent
	// token is not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUser removes every session owned by a user.
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired removes sessions past their expiry. Housekeeping.
	DeleteExpired(ctx context.Context, now time.Time) error
}

type AdminTokens interface {
	// Create persists a new admin token.
	Create(ctx context.Context, t domain.AdminToken) error

	// GetActiveByToken returns the live token row, ErrNotFound otherwise.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (domain.AdminToken, error)

	// DeleteByToken removes the matching token, idempotently.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpired removes tokens past their expiry. Housekeeping.
	DeleteExpired(ctx context.Context, now time.Time) error
}

// TranslationFilter narrows a history listing.
type TranslationFilter struct {
	Mode   string // empty = all modes
	Limit  int
	Offset int
}

type Translations interface {
	// Insert appends a history entry.
	Insert(ctx context.Context, t domain.Translation) error

	// ListByUser returns a page of a user's history, newest first, along
	// with the total row count for that filter.
	ListByUser(ctx context.Context, userID string, f TranslationFilter) ([]domain.Translation, int, error)

	// ListSince returns all entries created at or after since, newest
	// first. Used by the stats aggregator.
	ListSince(ctx context.Context, since time.Time) ([]domain.Translation, error)
}

type Dialogs interface {
	// CreateSession starts a dialog session and returns it with
	// store-assigned fields.
	CreateSession(ctx context.Context, d domain.DialogSession) (domain.DialogSession, error)

	// InsertMessages appends a batch of messages to a session.
	InsertMessages(ctx context.Context, msgs []domain.DialogMessage) error

	// ListByUser returns a page of a user's dialog sessions, newest first,
	// each with its messages in seq order.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.DialogWithMessages, error)

	// ListSince returns all dialog sessions created at or after since,
	// newest first. Used by the stats aggregator.
	ListSince(ctx context.Context, since time.Time) ([]domain.DialogSession, error)
}

type Phrases interface {
	// Insert adds a phrasebook entry and returns it with store-assigned
	// fields.
	Insert(ctx context.Context, p domain.CustomPhrase) (domain.CustomPhrase, error)

	// ListByInviteCode returns a code's phrasebook, newest first.
	ListByInviteCode(ctx context.Context, inviteCodeID string) ([]domain.CustomPhrase, error)

	// Delete removes a phrase, scoped to the invite code so one code's
	// users cannot delete another's entries.
	Delete(ctx context.Context, id, inviteCodeID string) error
}
