package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("LEXRAG_TEST_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "LEXRAG_TEST_KEY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEXRAG_TEST_KEY")
}

func TestGenerate(t *testing.T) {
	var gotPrompt, gotModel, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		if len(body.Messages) > 0 {
			gotPrompt = body.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"forty-two"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	t.Setenv("LEXRAG_TEST_KEY", "secret")
	c, err := NewClient(Config{BaseURL: srv.URL + "/v1/", APIKeyEnv: "LEXRAG_TEST_KEY", Model: "test-model"})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "what is the answer?")

	require.NoError(t, err)
	assert.Equal(t, "forty-two", out)
	assert.Equal(t, "what is the answer?", gotPrompt)
	assert.Equal(t, "test-model", gotModel)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	t.Setenv("LEXRAG_TEST_KEY", "secret")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "LEXRAG_TEST_KEY"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "hi")
	assert.Error(t, err)
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	t.Setenv("LEXRAG_TEST_KEY", "secret")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "LEXRAG_TEST_KEY"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "hi")
	assert.Error(t, err)
}
