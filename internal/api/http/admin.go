package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

// AdminLoginHandler exchanges the shared admin password for an admin
// token.
type AdminLoginHandler struct {
	Admin *service.AdminService
}

func (h *AdminLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Password is required"})
		return
	}

	token, err := h.Admin.Login(ctx, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: msgInvalidPassword})
			return
		}
		slogx.FromContext(ctx).Error("admin login failed", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to create admin session"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminLoginResponse{
		Success:   true,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	})
}

// AdminLogoutHandler revokes the presented admin token, always answering
// ok.
type AdminLogoutHandler struct {
	Admin *service.AdminService
}

func (h *AdminLogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Admin.Logout(r.Context(), httpx.BearerToken(r))
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// AdminValidateHandler reports whether the presented admin token is live.
type AdminValidateHandler struct {
	Admin *service.AdminService
}

func (h *AdminValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	valid, err := h.Admin.Validate(r.Context(), httpx.BearerToken(r))
	if err != nil {
		valid = false
	}
	httpx.WriteJSON(w, http.StatusOK, adminValidateResponse{Valid: valid})
}
