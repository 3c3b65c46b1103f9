package http

import (
	"encoding/json"
	"net/http"

	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

// PhrasebookHandler covers the invite-code shared phrasebook.
type PhrasebookHandler struct {
	Phrasebook *service.PhrasebookService
}

func (h *PhrasebookHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	su, _ := sessionUserFrom(ctx)

	var req addPhraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}
	if req.SourceLang == "" || req.TargetLang == "" || req.SourceText == "" || req.TargetText == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	}

	phrase, err := h.Phrasebook.Add(ctx, su.InviteCodeID, service.PhraseParams{
		Category:   req.Category,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		SourceText: req.SourceText,
		TargetText: req.TargetText,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to add phrase", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"phrase": toPhraseJSON(phrase)})
}

func (h *PhrasebookHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	su, _ := sessionUserFrom(ctx)

	phrases, err := h.Phrasebook.List(ctx, su.InviteCodeID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list phrases", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	out := make([]phraseJSON, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, toPhraseJSON(p))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"phrases": out})
}

func (h *PhrasebookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	su, _ := sessionUserFrom(ctx)

	var req deletePhraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing phrase id"})
		return
	}

	if err := h.Phrasebook.Delete(ctx, req.ID, su.InviteCodeID); err != nil {
		slogx.FromContext(ctx).Error("failed to delete phrase", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
