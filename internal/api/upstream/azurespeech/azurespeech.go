// Package azurespeech is a thin client for the Azure Cognitive Services
// speech surface: short-lived token issuance for the browser SDK, and
// server-side pronunciation assessment.
package azurespeech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx answer from Azure, carrying the upstream status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("azurespeech: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	key    string
	region string
	// tokenBaseURL and sttBaseURL override the regional endpoints, for
	// tests.
	tokenBaseURL string
	sttBaseURL   string
	http         *http.Client
}

type Config struct {
	Key    string
	Region string
	// TokenBaseURL and STTBaseURL override the regional endpoints.
	TokenBaseURL string
	STTBaseURL   string
	// Timeout bounds each upstream round trip.
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	region := cfg.Region
	if region == "" {
		region = "eastus"
	}
	tokenBaseURL := cfg.TokenBaseURL
	if tokenBaseURL == "" {
		tokenBaseURL = "https://" + region + ".api.cognitive.microsoft.com"
	}
	sttBaseURL := cfg.STTBaseURL
	if sttBaseURL == "" {
		sttBaseURL = "https://" + region + ".stt.speech.microsoft.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		key:          cfg.Key,
		region:       region,
		tokenBaseURL: strings.TrimSuffix(tokenBaseURL, "/"),
		sttBaseURL:   strings.TrimSuffix(sttBaseURL, "/"),
		http:         &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a subscription key is present.
func (c *Client) Configured() bool { return c.key != "" }

// Region returns the configured Azure region.
func (c *Client) Region() string { return c.region }

// IssueToken exchanges the subscription key for a short-lived bearer
// token the browser speech SDK can hold.
func (c *Client) IssueToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tokenBaseURL+"/sts/v1.0/issueToken", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("azurespeech: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("azurespeech: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "failed to get speech token"}
	}
	return string(body), nil
}

// AssessParams is one pronunciation assessment request: what the speaker
// was supposed to say, the BCP-47 language, and the recorded WAV audio.
type AssessParams struct {
	ReferenceText string
	Language      string
	Audio         []byte
}

// Assess runs pronunciation assessment over a recorded utterance and
// returns Azure's detailed recognition result verbatim. en-US gets the
// richer extras (prosody, IPA phonemes) the service only supports there.
func (c *Client) Assess(ctx context.Context, p AssessParams) (json.RawMessage, error) {
	cfg := map[string]any{
		"ReferenceText": p.ReferenceText,
		"GradingSystem": "HundredMark",
		"Granularity":   "Phoneme",
		"Dimension":     "Comprehensive",
		"EnableMiscue":  "True",
	}
	if p.Language == "en-US" {
		cfg["EnableProsodyAssessment"] = "True"
		cfg["PhonemeAlphabet"] = "IPA"
		cfg["NBestPhonemeCount"] = 3
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	endpoint := c.sttBaseURL +
		"/speech/recognition/conversation/cognitiveservices/v1?language=" +
		url.QueryEscape(p.Language) + "&format=detailed"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(p.Audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "audio/wav; codecs=audio/pcm; samplerate=16000")
	req.Header.Set("Accept", "application/json;text/xml")
	req.Header.Set("Pronunciation-Assessment", base64.StdEncoding.EncodeToString(cfgJSON))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azurespeech: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azurespeech: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "speech recognition error"}
	}
	return json.RawMessage(body), nil
}
