// Package memory is an in-process Store used by tests and local
// development. It mirrors the semantics of the REST-backed drivers,
// including the lack of cross-call atomicity: every method takes the lock
// independently, so multi-step service sequences interleave exactly as
// they would against the real credential store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/pkg/idx"
)

type Store struct {
	mu sync.Mutex

	codes        map[string]domain.InviteCode
	users        map[string]domain.User
	sessions     map[string]domain.Session
	adminTokens  map[string]domain.AdminToken
	translations map[string]domain.Translation
	dialogs      map[string]domain.DialogSession
	messages     map[string]domain.DialogMessage
	phrases      map[string]domain.CustomPhrase
}

func NewStore() *Store {
	return &Store{
		codes:        make(map[string]domain.InviteCode),
		users:        make(map[string]domain.User),
		sessions:     make(map[string]domain.Session),
		adminTokens:  make(map[string]domain.AdminToken),
		translations: make(map[string]domain.Translation),
		dialogs:      make(map[string]domain.DialogSession),
		messages:     make(map[string]domain.DialogMessage),
		phrases:      make(map[string]domain.CustomPhrase),
	}
}

func (s *Store) InviteCodes() store.InviteCodes   { return &inviteCodesRepo{s: s} }
func (s *Store) Users() store.Users               { return &usersRepo{s: s} }
func (s *Store) Sessions() store.Sessions         { return &sessionsRepo{s: s} }
func (s *Store) AdminTokens() store.AdminTokens   { return &adminTokensRepo{s: s} }
func (s *Store) Translations() store.Translations { return &translationsRepo{s: s} }
func (s *Store) Dialogs() store.Dialogs           { return &dialogsRepo{s: s} }
func (s *Store) Phrases() store.Phrases           { return &phrasesRepo{s: s} }

func (s *Store) Close() error                 { return nil }
func (s *Store) Ping(_ context.Context) error { return nil }

func newID() string { return idx.New().String() }

// sortNewestFirst orders by CreatedAt descending with ID as tiebreak so
// listings are stable within one timestamp.
func sortNewestFirst[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ti, tj := createdAt(items[i]), createdAt(items[j])
		if ti.Equal(tj) {
			return id(items[i]) > id(items[j])
		}
		return ti.After(tj)
	})
}
