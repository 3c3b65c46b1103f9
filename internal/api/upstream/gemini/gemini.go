// Package gemini is a thin client for the Google Generative Language API,
// covering the two calls the app proxies: text generation for translation
// and speech synthesis.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	translateModel = "gemini-3-flash-preview"
	ttsModel       = "gemini-2.5-flash-tts"
)

// TTS voice names per requested gender. Kore is a warm female voice, Puck
// a friendly male one.
var ttsVoices = map[string]string{
	"female": "Kore",
	"male":   "Puck",
}

// APIError is a non-2xx answer from the API, carrying the upstream status
// so handlers can surface it instead of a generic 502.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

type Config struct {
	APIKey string
	// BaseURL overrides the production endpoint. Tests point it at a
	// local server.
	BaseURL string
	// Timeout bounds each upstream round trip.
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// TranslateParams is a translation request as the web client sends it:
// an optional system prompt and either a plain string or a list of typed
// content blocks (text, image, document) in Content.
type TranslateParams struct {
	System    string
	Content   json.RawMessage
	MaxTokens int
}

// contentBlock is one typed block of the incoming content array. Image
// and document blocks carry base64 payloads in Source.
type contentBlock struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Source *struct {
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
	} `json:"source"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents          []generateContent `json:"contents"`
	SystemInstruction *generateContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  map[string]any    `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Translate sends a generateContent request with thinking disabled and
// returns the concatenated text parts of the first candidate.
func (c *Client) Translate(ctx context.Context, p TranslateParams) (string, error) {
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	req := generateRequest{
		Contents: []generateContent{{Role: "user", Parts: convertContent(p.Content)}},
		GenerationConfig: map[string]any{
			"maxOutputTokens": maxTokens,
			"thinkingConfig":  map[string]any{"thinkingBudget": 0},
		},
	}
	if p.System != "" {
		req.SystemInstruction = &generateContent{
			Parts: []generatePart{{Text: p.System}},
		}
	}

	var resp generateResponse
	if err := c.generate(ctx, translateModel, req, &resp); err != nil {
		return "", err
	}

	var b strings.Builder
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

// Synthesize sends a TTS generateContent request and returns the raw PCM
// audio: 24000 Hz, mono, 16-bit. Callers wrap it into a playable
// container. voice is "female" or "male"; anything else falls back to
// female.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	voiceName, ok := ttsVoices[voice]
	if !ok {
		voiceName = ttsVoices["female"]
	}

	req := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: text}}}},
		GenerationConfig: map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]any{"voiceName": voiceName},
				},
			},
		},
	}

	var resp generateResponse
	if err := c.generate(ctx, ttsModel, req, &resp); err != nil {
		return nil, err
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil {
				return base64.StdEncoding.DecodeString(part.InlineData.Data)
			}
		}
	}
	return nil, fmt.Errorf("gemini: no audio in response")
}

func (c *Client) generate(ctx context.Context, model string, reqBody generateRequest, out *generateResponse) error {
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	url := c.baseURL + "/models/" + model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "API error"
		var parsed generateResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("gemini: decode response: %w", err)
	}
	return nil
}

// convertContent turns the client's content payload into request parts.
// Content is either a JSON string or an array of typed blocks; text
// blocks map to text parts, image and document blocks to inline data.
// Anything unparseable is passed through as literal text.
func convertContent(content json.RawMessage) []generatePart {
	if len(content) == 0 {
		return []generatePart{{Text: ""}}
	}

	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err == nil {
		parts := make([]generatePart, 0, len(blocks))
		for _, blk := range blocks {
			switch blk.Type {
			case "text":
				parts = append(parts, generatePart{Text: blk.Text})
			case "image", "document":
				if blk.Source == nil {
					continue
				}
				parts = append(parts, generatePart{InlineData: &inlineData{
					MimeType: blk.Source.MediaType,
					Data:     blk.Source.Data,
				}})
			}
		}
		if len(parts) > 0 {
			return parts
		}
		return []generatePart{{Text: ""}}
	}

	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return []generatePart{{Text: text}}
	}
	return []generatePart{{Text: string(content)}}
}
