// Package sqlite is an embedded credential store for single-node
// deployments where no external REST store is available.
//
// Queries are hand-written and every call is self-contained; the driver
// exposes no transaction surface on purpose, matching the semantics of the
// REST-backed production store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/traveltalk/server/internal/api/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) InviteCodes() store.InviteCodes   { return &inviteCodesRepo{db: s.db} }
func (s *Store) Users() store.Users               { return &usersRepo{db: s.db} }
func (s *Store) Sessions() store.Sessions         { return &sessionsRepo{db: s.db} }
func (s *Store) AdminTokens() store.AdminTokens   { return &adminTokensRepo{db: s.db} }
func (s *Store) Translations() store.Translations { return &translationsRepo{db: s.db} }
func (s *Store) Dialogs() store.Dialogs           { return &dialogsRepo{db: s.db} }
func (s *Store) Phrases() store.Phrases           { return &phrasesRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapNullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func mapOptionalInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		v := nt.Time
		return &v
	}
	return nil
}

func mapOptionalString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		v := ns.String
		return &v
	}
	return nil
}
