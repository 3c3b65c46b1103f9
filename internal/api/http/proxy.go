package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/traveltalk/server/internal/api/upstream/azurespeech"
	"github.com/traveltalk/server/internal/api/upstream/gemini"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
	"github.com/traveltalk/server/pkg/wavx"
)

// TTS output from the synthesis model: raw PCM, 24 kHz, mono, 16-bit.
const (
	ttsSampleRate = 24000
	ttsChannels   = 1
	ttsBitDepth   = 16
)

// TranslateHandler proxies translation requests to the generative model.
type TranslateHandler struct {
	Gemini  *gemini.Client
	Metrics *Metrics
}

func (h *TranslateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.Gemini.Configured() {
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "API key not configured on server"})
		return
	}

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	text, err := h.Gemini.Translate(ctx, gemini.TranslateParams{
		System:    req.System,
		Content:   req.Content,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		h.Metrics.UpstreamError("translate")
		writeUpstreamError(w, ctx, err, "Translation failed")
		return
	}

	h.Metrics.UpstreamOK("translate")
	httpx.WriteJSON(w, http.StatusOK, translateResponse{Text: text})
}

// TTSHandler proxies speech synthesis and serves the result as a WAV file.
// Accepts GET with query params so the client can point an <audio> element
// straight at it, and POST with a JSON body.
type TTSHandler struct {
	Gemini  *gemini.Client
	Metrics *Metrics
}

func (h *TTSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.Gemini.Configured() {
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Gemini API key not configured"})
		return
	}

	var req ttsRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Text = q.Get("text")
		req.Voice = q.Get("voice")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}
	if req.Text == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Text is required"})
		return
	}

	pcm, err := h.Gemini.Synthesize(ctx, req.Text, req.Voice)
	if err != nil {
		h.Metrics.UpstreamError("tts")
		writeUpstreamError(w, ctx, err, "TTS failed")
		return
	}

	h.Metrics.UpstreamOK("tts")
	wav := wavx.Wrap(pcm, ttsSampleRate, ttsChannels, ttsBitDepth)
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	_, _ = w.Write(wav)
}

// SpeechTokenHandler hands the browser a short-lived Azure speech token.
type SpeechTokenHandler struct {
	Azure   *azurespeech.Client
	Metrics *Metrics
}

func (h *SpeechTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.Azure.Configured() {
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Azure Speech key not configured"})
		return
	}

	token, err := h.Azure.IssueToken(ctx)
	if err != nil {
		h.Metrics.UpstreamError("speech_token")
		slogx.FromContext(ctx).Error("failed to issue speech token", "error", err)
		httpx.WriteJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Failed to get speech token"})
		return
	}

	h.Metrics.UpstreamOK("speech_token")
	httpx.WriteJSON(w, http.StatusOK, speechTokenResponse{Token: token, Region: h.Azure.Region()})
}

// PronunciationHandler proxies pronunciation assessment of a recorded
// utterance.
type PronunciationHandler struct {
	Azure   *azurespeech.Client
	Metrics *Metrics
}

func (h *PronunciationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.Azure.Configured() {
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Azure Speech key not configured"})
		return
	}

	var req pronunciationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.ReferenceText == "" || req.Language == "" || req.Audio == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing referenceText, language, or audio"})
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "audio must be base64"})
		return
	}

	result, err := h.Azure.Assess(ctx, azurespeech.AssessParams{
		ReferenceText: req.ReferenceText,
		Language:      req.Language,
		Audio:         audio,
	})
	if err != nil {
		h.Metrics.UpstreamError("pronunciation")
		slogx.FromContext(ctx).Error("pronunciation assessment failed", "error", err)
		httpx.WriteJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Azure Speech API error"})
		return
	}

	h.Metrics.UpstreamOK("pronunciation")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}

// writeUpstreamError surfaces the upstream status and message when the
// model API answered with one, and a plain 500 otherwise.
func writeUpstreamError(w http.ResponseWriter, ctx context.Context, err error, fallback string) {
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		httpx.WriteJSON(w, apiErr.StatusCode, ErrorResponse{Error: apiErr.Message})
		return
	}
	slogx.FromContext(ctx).Error("upstream call failed", "error", err)
	httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: fallback})
}
