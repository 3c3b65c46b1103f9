package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

// UsersHandler is the admin user listing and lifecycle surface.
type UsersHandler struct {
	Users *service.UserService
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Users.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	out := make([]adminUserJSON, 0, len(users))
	for _, u := range users {
		j := adminUserJSON{
			ID:        u.ID,
			Name:      u.Name,
			DeviceID:  u.DeviceID,
			CreatedAt: u.CreatedAt,
		}
		j.InviteCodes.Code = u.CodeCode
		j.InviteCodes.Name = u.CodeName
		out = append(out, j)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (h *UsersHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req renameUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" || req.Name == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "id and name are required"})
		return
	}

	if err := h.Users.Rename(ctx, req.ID, req.Name); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "User not found"})
			return
		}
		slogx.FromContext(ctx).Error("failed to rename user", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "id query param is required"})
		return
	}

	if err := h.Users.CascadeDelete(ctx, id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "User not found"})
			return
		}
		slogx.FromContext(ctx).Error("failed to delete user", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
