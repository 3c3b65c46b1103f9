package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Бон"},{"text":"жур"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL})

	out, err := c.Translate(context.Background(), TranslateParams{
		System:  "translate to french",
		Content: json.RawMessage(`"hello"`),
	})
	require.NoError(t, err)
	require.Equal(t, "Бонжур", out)

	require.Equal(t, "/models/"+translateModel+":generateContent", gotPath)
	require.Equal(t, "k", gotKey)
	require.Equal(t, "translate to french", gotBody.SystemInstruction.Parts[0].Text)
	require.Equal(t, "hello", gotBody.Contents[0].Parts[0].Text)
	require.Equal(t, float64(1024), gotBody.GenerationConfig["maxOutputTokens"])
}

func TestTranslateUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL})

	_, err := c.Translate(context.Background(), TranslateParams{Content: json.RawMessage(`"hi"`)})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, "quota exceeded", apiErr.Message)
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	pcm := []byte{1, 2, 3, 4}
	var gotPath string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{
						"inlineData": map[string]any{
							"mimeType": "audio/pcm",
							"data":     base64.StdEncoding.EncodeToString(pcm),
						},
					}},
				},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL})

	out, err := c.Synthesize(context.Background(), "привет", "male")
	require.NoError(t, err)
	require.Equal(t, pcm, out)

	require.Equal(t, "/models/"+ttsModel+":generateContent", gotPath)
	require.Equal(t, []any{"AUDIO"}, gotBody.GenerationConfig["responseModalities"].([]any))
	voice := gotBody.GenerationConfig["speechConfig"].(map[string]any)["voiceConfig"].(map[string]any)["prebuiltVoiceConfig"].(map[string]any)["voiceName"]
	require.Equal(t, "Puck", voice)
}

func TestSynthesizeWithoutAudio(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"no audio here"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL})

	_, err := c.Synthesize(context.Background(), "hi", "female")
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestConvertContent(t *testing.T) {
	t.Parallel()

	t.Run("plain string", func(t *testing.T) {
		parts := convertContent(json.RawMessage(`"hello"`))
		require.Equal(t, []generatePart{{Text: "hello"}}, parts)
	})

	t.Run("typed blocks", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"type":"text","text":"what does this sign say"},
			{"type":"image","source":{"media_type":"image/jpeg","data":"QUJD"}}
		]`)
		parts := convertContent(raw)
		require.Len(t, parts, 2)
		require.Equal(t, "what does this sign say", parts[0].Text)
		require.Equal(t, "image/jpeg", parts[1].InlineData.MimeType)
		require.Equal(t, "QUJD", parts[1].InlineData.Data)
	})

	t.Run("unknown block types are skipped", func(t *testing.T) {
		raw := json.RawMessage(`[{"type":"tool_use"},{"type":"text","text":"kept"}]`)
		parts := convertContent(raw)
		require.Equal(t, []generatePart{{Text: "kept"}}, parts)
	})

	t.Run("empty content becomes an empty text part", func(t *testing.T) {
		parts := convertContent(nil)
		require.Equal(t, []generatePart{{Text: ""}}, parts)
	})
}

func TestConfigured(t *testing.T) {
	t.Parallel()

	require.False(t, NewClient(Config{}).Configured())
	require.True(t, NewClient(Config{APIKey: "k"}).Configured())
}
