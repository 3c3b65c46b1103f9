package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

// CodesHandler is the admin invite-code CRUD surface.
type CodesHandler struct {
	Codes *service.CodeService
}

func (h *CodesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	codes, err := h.Codes.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invite codes", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	out := make([]codeJSON, 0, len(codes))
	for _, c := range codes {
		out = append(out, toCodeJSON(c.InviteCode, c.Users))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"codes": out})
}

func (h *CodesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}
	if req.Name == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Name is required"})
		return
	}

	created, err := h.Codes.Create(ctx, service.CreateCodeParams{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		UsesRemaining: req.UsesRemaining,
		DeviceLimit:   req.DeviceLimit,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to create invite code", "error", err)
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Failed to create code"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"code": toCodeJSON(created, nil)})
}

func (h *CodesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}
	if req.ID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "id is required"})
		return
	}

	upd := domain.InviteCodeUpdate{
		Name:        req.Name,
		Description: req.Description,
		DeviceLimit: req.DeviceLimit,
		IsActive:    req.IsActive,
	}
	if len(req.UsesRemaining) > 0 {
		upd.UsesRemainingSet = true
		if string(req.UsesRemaining) != "null" {
			var n int
			if err := json.Unmarshal(req.UsesRemaining, &n); err != nil {
				httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "uses_remaining must be a number or null"})
				return
			}
			upd.UsesRemaining = &n
		}
	}

	updated, err := h.Codes.Update(ctx, req.ID, upd)
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "Code not found"})
			return
		}
		slogx.FromContext(ctx).Error("failed to update invite code", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Update failed"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"code": toCodeJSON(updated, nil)})
}

func (h *CodesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "id query param is required"})
		return
	}

	if err := h.Codes.CascadeDelete(ctx, id); err != nil {
		slogx.FromContext(ctx).Error("failed to delete invite code", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
