package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

// User-facing admission errors, verbatim from the web client's locale.
const (
	msgInvalidCode        = "Неверный код приглашения"
	msgCodeExhausted      = "Код приглашения исчерпан"
	msgDeviceLimitReached = "Достигнут лимит устройств для этого кода"
	msgInvalidPassword    = "Неверный пароль"
)

// LoginHandler admits a device with an invite code and issues a session.
type LoginHandler struct {
	Admission *service.AdmissionService
	Metrics   *Metrics
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.DeviceID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Code and device_id are required"})
		return
	}

	res, err := h.Admission.Login(ctx, req.Code, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			h.Metrics.LoginRejected("invalid_code")
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: msgInvalidCode})
		case errors.Is(err, service.ErrCodeExhausted):
			h.Metrics.LoginRejected("code_exhausted")
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: msgCodeExhausted})
		case errors.Is(err, service.ErrDeviceLimitReached):
			h.Metrics.LoginRejected("device_limit")
			httpx.WriteJSON(w, http.StatusForbidden, ErrorResponse{Error: msgDeviceLimitReached})
		default:
			log.Error("login failed", "error", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		}
		return
	}

	h.Metrics.LoginAccepted()
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		User:      userJSON{ID: res.User.ID, Name: res.User.Name},
		ExpiresAt: res.ExpiresAt,
	})
}

// LogoutHandler revokes the presented session. Always answers ok: from
// the client's point of view discarding the token is logout, whatever the
// store says.
type LogoutHandler struct {
	Sessions *service.SessionService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context(), httpx.BearerToken(r))
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// ValidateHandler reports whether the presented session token resolves,
// and to whom.
type ValidateHandler struct {
	Sessions *service.SessionService
}

func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	su, err := h.Sessions.Validate(r.Context(), httpx.BearerToken(r))
	if err != nil || su == nil {
		// Store trouble and a dead token look the same here: not valid.
		httpx.WriteJSON(w, http.StatusOK, validateResponse{Valid: false})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, validateResponse{
		Valid: true,
		User:  &userJSON{ID: su.UserID, Name: su.UserName},
	})
}
