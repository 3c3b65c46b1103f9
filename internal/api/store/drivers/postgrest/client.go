// Package postgrest is the production credential store driver. It speaks
// the PostgREST dialect Supabase exposes: filters as query parameters
// (eq., gt., in.), Prefer headers to select representation vs. minimal
// responses, and exact row counts via the Content-Range header.
//
// Every call is one self-contained HTTP round trip. The store offers
// row-level atomicity only; nothing here holds a transaction open.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/traveltalk/server/internal/api/store"
)

const preferCountExact = "count=exact"

type Store struct {
	baseURL string
	key     string
	http    *http.Client
}

type Config struct {
	// URL is the store root, e.g. https://xyz.supabase.co
	URL string
	// Key is the service key sent as both apikey and bearer credential.
	Key string
	// Timeout bounds each store round trip.
	Timeout time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		baseURL: strings.TrimSuffix(cfg.URL, "/") + "/rest/v1/",
		key:     cfg.Key,
		http:    &http.Client{Timeout: timeout},
	}
}

func (s *Store) InviteCodes() store.InviteCodes   { return &inviteCodesRepo{c: s} }
func (s *Store) Users() store.Users               { return &usersRepo{c: s} }
func (s *Store) Sessions() store.Sessions         { return &sessionsRepo{c: s} }
func (s *Store) AdminTokens() store.AdminTokens   { return &adminTokensRepo{c: s} }
func (s *Store) Translations() store.Translations { return &translationsRepo{c: s} }
func (s *Store) Dialogs() store.Dialogs           { return &dialogsRepo{c: s} }
func (s *Store) Phrases() store.Phrases           { return &phrasesRepo{c: s} }

func (s *Store) Close() error { return nil }

// Ping issues a cheap HEAD-equivalent read to verify the store answers.
func (s *Store) Ping(ctx context.Context) error {
	_, _, err := s.do(ctx, http.MethodGet, "invite_codes?select=id&limit=1", nil, "")
	return err
}

// do performs one store round trip. prefer, when non-empty, is sent as the
// Prefer header; otherwise PostgREST's return=representation is requested
// so writes echo the stored row back.
func (s *Store) do(ctx context.Context, method, path string, body any, prefer string) ([]byte, http.Header, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
	if prefer == "" {
		prefer = "return=representation"
	}
	req.Header.Set("Prefer", prefer)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("store request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("store response %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("store %s %s: status %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return respBody, resp.Header, nil
}

// getRows fetches and decodes a result set.
func getRows[T any](ctx context.Context, s *Store, path string) ([]T, error) {
	body, _, err := s.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("store decode %s: %w", path, err)
	}
	return rows, nil
}

// getOne fetches a result set and returns its first row, or ErrNotFound
// for an empty set.
func getOne[T any](ctx context.Context, s *Store, path string) (T, error) {
	var zero T
	rows, err := getRows[T](ctx, s, path)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, store.ErrNotFound
	}
	return rows[0], nil
}

// getRowsCounted fetches a page together with the exact total from the
// Content-Range header ("0-19/134").
func getRowsCounted[T any](ctx context.Context, s *Store, path string) ([]T, int, error) {
	body, headers, err := s.do(ctx, http.MethodGet, path, nil, preferCountExact+",return=representation")
	if err != nil {
		return nil, 0, err
	}
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("store decode %s: %w", path, err)
	}

	total := len(rows)
	if cr := headers.Get("Content-Range"); cr != "" {
		if i := strings.LastIndexByte(cr, '/'); i >= 0 {
			if n, err := strconv.Atoi(cr[i+1:]); err == nil {
				total = n
			}
		}
	}
	return rows, total, nil
}

// insertOne posts a row and decodes the stored representation.
func insertOne[T any](ctx context.Context, s *Store, path string, row any) (T, error) {
	var zero T
	body, _, err := s.do(ctx, http.MethodPost, path, row, "")
	if err != nil {
		return zero, err
	}
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return zero, fmt.Errorf("store decode %s: %w", path, err)
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("store %s: empty representation", path)
	}
	return rows[0], nil
}

func (s *Store) patch(ctx context.Context, path string, body any) error {
	_, _, err := s.do(ctx, http.MethodPatch, path, body, "return=minimal")
	return err
}

func (s *Store) delete(ctx context.Context, path string) error {
	_, _, err := s.do(ctx, http.MethodDelete, path, nil, "return=minimal")
	return err
}
