package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

// HistoryHandler covers translation history and dialog transcripts for
// the session user.
type HistoryHandler struct {
	History *service.HistoryService
}

func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	su, _ := sessionUserFrom(ctx)

	var req saveHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}
	if req.Mode == "" || req.SourceLang == "" || req.TargetLang == "" ||
		req.SourceText == "" || req.TranslatedText == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	}

	err := h.History.Save(ctx, su.UserID, service.SaveParams{
		Mode:           req.Mode,
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
		SourceText:     req.SourceText,
		TranslatedText: req.TranslatedText,
		Metadata:       req.Metadata,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to save history entry", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	su, _ := sessionUserFrom(ctx)

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.History.List(ctx, su.UserID, page, limit, q.Get("mode"))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list history", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	out := historyListResponse{
		Translations: make([]translationJSON, 0, len(res.Translations)),
		Total:        res.Total,
		Page:         res.Page,
		Pages:        res.Pages,
	}
	for _, t := range res.Translations {
		out.Translations = append(out.Translations, translationJSON{
			ID:             t.ID,
			Mode:           t.Mode,
			SourceLang:     t.SourceLang,
			TargetLang:     t.TargetLang,
			SourceText:     t.SourceText,
			TranslatedText: t.TranslatedText,
			Metadata:       t.Metadata,
			CreatedAt:      t.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *HistoryHandler) DialogStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	su, _ := sessionUserFrom(ctx)

	var req dialogStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.SourceLang == "" || req.TargetLang == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "source_lang and target_lang are required"})
		return
	}

	id, err := h.History.StartDialog(ctx, su.UserID, req.SourceLang, req.TargetLang)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to start dialog", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to create dialog session"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dialogStartResponse{SessionID: id})
}

func (h *HistoryHandler) DialogMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dialogMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.DialogSessionID == "" || len(req.Messages) == 0 {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "dialog_session_id and messages are required"})
		return
	}

	msgs := make([]service.DialogMessageParams, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, service.DialogMessageParams{
			LangCode:       m.LangCode,
			Role:           m.Role,
			Text:           m.Text,
			DetectedGender: m.DetectedGender,
			SeqOrder:       m.SeqOrder,
		})
	}

	if err := h.History.AppendMessages(ctx, req.DialogSessionID, msgs); err != nil {
		slogx.FromContext(ctx).Error("failed to append dialog messages", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *HistoryHandler) Dialogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	su, _ := sessionUserFrom(ctx)

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	dialogs, err := h.History.ListDialogs(ctx, su.UserID, page, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list dialogs", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	out := dialogListResponse{Dialogs: make([]dialogJSON, 0, len(dialogs))}
	for _, d := range dialogs {
		dj := dialogJSON{
			ID:         d.ID,
			SourceLang: d.SourceLang,
			TargetLang: d.TargetLang,
			CreatedAt:  d.CreatedAt,
			Messages:   make([]dialogMessageJSON, 0, len(d.Messages)),
		}
		for _, m := range d.Messages {
			dj.Messages = append(dj.Messages, dialogMessageJSON{
				ID:             m.ID,
				LangCode:       m.LangCode,
				Role:           m.Role,
				Text:           m.Text,
				DetectedGender: m.DetectedGender,
				SeqOrder:       m.SeqOrder,
				CreatedAt:      m.CreatedAt,
			})
		}
		out.Dialogs = append(out.Dialogs, dj)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
