package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/internal/api/store/drivers/memory"
	"github.com/traveltalk/server/internal/api/upstream/azurespeech"
	"github.com/traveltalk/server/internal/api/upstream/gemini"
)

const testAdminSecret = "test-secret"

// newTestRouter wires a fully routed Router over the in-memory store.
// opts run before the routes are registered, so tests can swap in
// upstream clients pointed at local fakes.
func newTestRouter(t *testing.T, opts ...func(*Router)) (*Router, store.Store) {
	t.Helper()

	st := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := &service.TokenService{
		Store:         st,
		SessionTTL:    30 * 24 * time.Hour,
		AdminTokenTTL: 8 * time.Hour,
	}

	r := NewRouter(testAdminSecret, "test", st, nil, logger)
	r.AdmissionService = &service.AdmissionService{Store: st, Tokens: tokens}
	r.SessionService = &service.SessionService{Store: st}
	r.AdminService = &service.AdminService{Store: st, Tokens: tokens, Secret: testAdminSecret}
	r.CodeService = &service.CodeService{Store: st, DeviceLimitDefault: 3}
	r.UserService = &service.UserService{Store: st}
	r.StatsService = &service.StatsService{Store: st}
	r.HistoryService = &service.HistoryService{Store: st}
	r.PhrasebookService = &service.PhrasebookService{Store: st}
	r.Gemini = gemini.NewClient(gemini.Config{})
	r.Azure = azurespeech.NewClient(azurespeech.Config{})

	for _, opt := range opts {
		opt(r)
	}
	r.ApplyRoutes()

	return r, st
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func seedActiveCode(t *testing.T, st store.Store, code, name string, limit int) domain.InviteCode {
	t.Helper()
	created, err := st.InviteCodes().Create(context.Background(), domain.InviteCode{
		Code: code, Name: name, DeviceLimit: limit, IsActive: true,
	})
	require.NoError(t, err)
	return created
}

func login(t *testing.T, r http.Handler, code, deviceID string) loginResponse {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/auth/login", "", loginRequest{Code: code, DeviceID: deviceID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[loginResponse](t, rec)
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("login issues a usable session", func(t *testing.T) {
		t.Parallel()
		r, st := newTestRouter(t)
		seedActiveCode(t, st, "TT-AAAA11", "Team", 2)

		res := login(t, r, "tt-aaaa11", "d1")
		require.Len(t, res.Token, 64)
		require.Equal(t, "Team", res.User.Name)

		rec := doJSON(t, r, http.MethodPost, "/auth/validate", res.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		v := decode[validateResponse](t, rec)
		require.True(t, v.Valid)
		require.Equal(t, res.User.ID, v.User.ID)
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		t.Parallel()
		r, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/auth/login", "", loginRequest{Code: "TT-AAAA11"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admission errors carry the localized messages", func(t *testing.T) {
		t.Parallel()
		r, st := newTestRouter(t)
		seedActiveCode(t, st, "TT-FULL11", "Full", 1)
		login(t, r, "TT-FULL11", "d1")

		rec := doJSON(t, r, http.MethodPost, "/auth/login", "", loginRequest{Code: "TT-MISSING", DeviceID: "d1"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, msgInvalidCode, decode[ErrorResponse](t, rec).Error)

		rec = doJSON(t, r, http.MethodPost, "/auth/login", "", loginRequest{Code: "TT-FULL11", DeviceID: "d2"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, msgDeviceLimitReached, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("logout always answers ok and kills the session", func(t *testing.T) {
		t.Parallel()
		r, st := newTestRouter(t)
		seedActiveCode(t, st, "TT-BBBB22", "Team", 2)
		res := login(t, r, "TT-BBBB22", "d1")

		rec := doJSON(t, r, http.MethodPost, "/auth/logout", res.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, decode[okResponse](t, rec).OK)

		rec = doJSON(t, r, http.MethodPost, "/auth/validate", res.Token, nil)
		require.False(t, decode[validateResponse](t, rec).Valid)

		// No token, revoked token: still ok.
		rec = doJSON(t, r, http.MethodPost, "/auth/logout", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = doJSON(t, r, http.MethodPost, "/auth/logout", res.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("login validate logout round trip", func(t *testing.T) {
		t.Parallel()
		r, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/admin/login", "", adminLoginRequest{Password: "wrong"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, msgInvalidPassword, decode[ErrorResponse](t, rec).Error)

		rec = doJSON(t, r, http.MethodPost, "/admin/login", "", adminLoginRequest{Password: testAdminSecret})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[adminLoginResponse](t, rec)
		require.True(t, res.Success)
		require.Len(t, res.Token, 64)

		rec = doJSON(t, r, http.MethodPost, "/admin/validate", res.Token, nil)
		require.True(t, decode[adminValidateResponse](t, rec).Valid)

		rec = doJSON(t, r, http.MethodPost, "/admin/logout", res.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodPost, "/admin/validate", res.Token, nil)
		require.False(t, decode[adminValidateResponse](t, rec).Valid)
	})

	t.Run("codes require the shared secret", func(t *testing.T) {
		t.Parallel()
		r, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/admin/codes", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/admin/codes", nil)
		req.Header.Set(adminSecretHeader, testAdminSecret)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("code lifecycle over HTTP", func(t *testing.T) {
		t.Parallel()
		r, _ := newTestRouter(t)

		post := func(method, path string, body any) *httptest.ResponseRecorder {
			var reqBody io.Reader
			if body != nil {
				buf, err := json.Marshal(body)
				require.NoError(t, err)
				reqBody = bytes.NewReader(buf)
			}
			req := httptest.NewRequest(method, path, reqBody)
			req.Header.Set(adminSecretHeader, testAdminSecret)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			return rec
		}

		rec := post(http.MethodPost, "/admin/codes", createCodeRequest{Name: "Team"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		created := decode[map[string]codeJSON](t, rec)["code"]
		require.Regexp(t, `^TT-`, created.Code)
		require.Equal(t, 3, created.DeviceLimit)

		// Nameless create is rejected.
		rec = post(http.MethodPost, "/admin/codes", createCodeRequest{})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = post(http.MethodPatch, "/admin/codes", map[string]any{"id": created.ID, "name": "Renamed"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Renamed", decode[map[string]codeJSON](t, rec)["code"].Name)

		rec = post(http.MethodPatch, "/admin/codes", map[string]any{"id": created.ID, "uses_remaining": nil})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Nil(t, decode[map[string]codeJSON](t, rec)["code"].UsesRemaining)

		rec = post(http.MethodDelete, "/admin/codes?id="+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = post(http.MethodGet, "/admin/codes", nil)
		codes := decode[map[string][]codeJSON](t, rec)["codes"]
		require.Empty(t, codes)
	})

	t.Run("users accept secret or admin token", func(t *testing.T) {
		t.Parallel()
		r, st := newTestRouter(t)
		seedActiveCode(t, st, "TT-CCCC33", "Team", 2)
		login(t, r, "TT-CCCC33", "d1")

		// With a minted admin token.
		rec := doJSON(t, r, http.MethodPost, "/admin/login", "", adminLoginRequest{Password: testAdminSecret})
		adminToken := decode[adminLoginResponse](t, rec).Token

		rec = doJSON(t, r, http.MethodGet, "/admin/users", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		users := decode[map[string][]adminUserJSON](t, rec)["users"]
		require.Len(t, users, 1)
		require.Equal(t, "TT-CCCC33", users[0].InviteCodes.Code)

		// Without any credential.
		rec = doJSON(t, r, http.MethodGet, "/admin/users", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("stats aggregates over HTTP", func(t *testing.T) {
		t.Parallel()
		r, st := newTestRouter(t)
		seedActiveCode(t, st, "TT-DDDD44", "Team", 2)
		login(t, r, "TT-DDDD44", "d1")

		req := httptest.NewRequest(http.MethodGet, "/admin/stats?days=7", nil)
		req.Header.Set(adminSecretHeader, testAdminSecret)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		stats := decode[service.Stats](t, rec)
		require.Equal(t, 7, stats.PeriodDays)
		require.Equal(t, 1, stats.Totals.Users)
		require.Equal(t, 1, stats.Totals.ActiveSessions)
	})
}

func TestHistoryAndPhrasebookEndpoints(t *testing.T) {
	t.Parallel()

	r, st := newTestRouter(t)
	seedActiveCode(t, st, "TT-EEEE55", "Team", 2)
	res := login(t, r, "TT-EEEE55", "d1")

	t.Run("history requires a session", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/history/list", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("save and list", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/history/save", res.Token, saveHistoryRequest{
			Mode: "text", SourceLang: "en", TargetLang: "ru",
			SourceText: "hello", TranslatedText: "привет",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = doJSON(t, r, http.MethodGet, "/history/list", res.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		page := decode[historyListResponse](t, rec)
		require.Equal(t, 1, page.Total)
		require.Equal(t, "привет", page.Translations[0].TranslatedText)
	})

	t.Run("dialog round trip", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/history/dialog-start", res.Token, dialogStartRequest{
			SourceLang: "en", TargetLang: "ru",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		sessionID := decode[dialogStartResponse](t, rec).SessionID
		require.NotEmpty(t, sessionID)

		rec = doJSON(t, r, http.MethodPost, "/history/dialog-message", res.Token, dialogMessagesRequest{
			DialogSessionID: sessionID,
			Messages: []dialogMessageJSON{
				{LangCode: "en", Role: "a", Text: "hi", SeqOrder: 1},
				{LangCode: "ru", Role: "b", Text: "привет", SeqOrder: 2},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/history/dialogs", res.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		dialogs := decode[dialogListResponse](t, rec).Dialogs
		require.Len(t, dialogs, 1)
		require.Len(t, dialogs[0].Messages, 2)
		require.Equal(t, "hi", dialogs[0].Messages[0].Text)
	})

	t.Run("phrasebook round trip", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/phrasebook/add", res.Token, addPhraseRequest{
			SourceLang: "en", TargetLang: "ru",
			SourceText: "thank you", TargetText: "спасибо",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		phrase := decode[map[string]phraseJSON](t, rec)["phrase"]
		require.Equal(t, "custom", phrase.Category)

		rec = doJSON(t, r, http.MethodGet, "/phrasebook/list", res.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		phrases := decode[map[string][]phraseJSON](t, rec)["phrases"]
		require.Len(t, phrases, 1)

		rec = doJSON(t, r, http.MethodPost, "/phrasebook/delete", res.Token, deletePhraseRequest{ID: phrase.ID})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/phrasebook/list", res.Token, nil)
		phrases = decode[map[string][]phraseJSON](t, rec)["phrases"]
		require.Empty(t, phrases)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
