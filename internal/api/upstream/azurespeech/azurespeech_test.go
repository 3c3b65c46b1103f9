package azurespeech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueToken(t *testing.T) {
	t.Parallel()

	t.Run("returns the raw token body", func(t *testing.T) {
		t.Parallel()
		var gotKey, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
			gotPath = r.URL.Path
			_, _ = w.Write([]byte("jwt-token"))
		}))
		defer srv.Close()

		c := NewClient(Config{Key: "sub-key", TokenBaseURL: srv.URL})
		token, err := c.IssueToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, "jwt-token", token)
		require.Equal(t, "sub-key", gotKey)
		require.Equal(t, "/sts/v1.0/issueToken", gotPath)
	})

	t.Run("non-2xx becomes an APIError", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c := NewClient(Config{Key: "bad", TokenBaseURL: srv.URL})
		_, err := c.IssueToken(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})
}

func TestAssess(t *testing.T) {
	t.Parallel()

	audio := []byte("RIFF....WAVE")
	var gotQuery, gotContentType string
	var gotCfg map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		raw, err := base64.StdEncoding.DecodeString(r.Header.Get("Pronunciation-Assessment"))
		require.NoError(t, err)
		gotCfg = nil
		require.NoError(t, json.Unmarshal(raw, &gotCfg))
		_, _ = w.Write([]byte(`{"RecognitionStatus":"Success","NBest":[{"PronScore":87.5}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Key: "k", Region: "westeurope", STTBaseURL: srv.URL})

	t.Run("en-US enables the richer assessment extras", func(t *testing.T) {
		out, err := c.Assess(context.Background(), AssessParams{
			ReferenceText: "hello world",
			Language:      "en-US",
			Audio:         audio,
		})
		require.NoError(t, err)
		require.JSONEq(t, `{"RecognitionStatus":"Success","NBest":[{"PronScore":87.5}]}`, string(out))

		require.Equal(t, "language=en-US&format=detailed", gotQuery)
		require.Equal(t, "audio/wav; codecs=audio/pcm; samplerate=16000", gotContentType)
		require.Equal(t, "hello world", gotCfg["ReferenceText"])
		require.Equal(t, "True", gotCfg["EnableMiscue"])
		require.Equal(t, "True", gotCfg["EnableProsodyAssessment"])
		require.Equal(t, "IPA", gotCfg["PhonemeAlphabet"])
	})

	t.Run("other languages skip the en-US extras", func(t *testing.T) {
		_, err := c.Assess(context.Background(), AssessParams{
			ReferenceText: "bonjour",
			Language:      "fr-FR",
			Audio:         audio,
		})
		require.NoError(t, err)
		require.NotContains(t, gotCfg, "EnableProsodyAssessment")
		require.NotContains(t, gotCfg, "PhonemeAlphabet")
	})

	t.Run("non-2xx becomes an APIError", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer bad.Close()

		c := NewClient(Config{Key: "k", STTBaseURL: bad.URL})
		_, err := c.Assess(context.Background(), AssessParams{Language: "en-US", Audio: audio})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})
}

func TestClientDefaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{Key: "k"})
	require.True(t, c.Configured())
	require.Equal(t, "eastus", c.Region())

	require.False(t, NewClient(Config{}).Configured())
	require.Equal(t, "westus", NewClient(Config{Region: "westus"}).Region())
}
