package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObiAU/newsfanout/internal/models"
)

const completion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "finish_reason": "stop",
    "logprobs": null,
    "message": {"role": "assistant", "content": "  Polls closed across the country.  ", "refusal": null}
  }]
}`

var results = []models.Article{
	{Title: "Election results announced", Source: "BBC News", Timestamp: 1_600_000_000.5},
	{Description: "Turnout was high", Source: "Reuters"},
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient("test-key", "", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
}

func TestDigest(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion))
	})

	digest, err := client.Digest(context.Background(), "election", results)

	require.NoError(t, err)
	assert.Equal(t, "Polls closed across the country.", digest)
	body := <-bodies
	assert.Equal(t, DefaultModel, body["model"])
	assert.Len(t, body["messages"], 2)
}

func TestDigest_NoArticlesSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	digest, err := client.Digest(context.Background(), "election", nil)

	require.NoError(t, err)
	assert.Empty(t, digest)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDigest_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})

	_, err := client.Digest(context.Background(), "election", results)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai request failed")
}

func TestDigest_NoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	})

	_, err := client.Digest(context.Background(), "election", results)

	assert.EqualError(t, err, "no response from openai")
}

func TestBuildDigestPrompt(t *testing.T) {
	prompt := buildDigestPrompt("election", results)

	assert.Contains(t, prompt, `about "election"`)
	assert.Contains(t, prompt, "Article 1:\nSource: BBC News\nTitle: Election results announced\n")
	assert.Contains(t, prompt, "Published: 2020-09-13T12:26:40Z")
	assert.Contains(t, prompt, "Article 2:\nSource: Reuters\nDescription: Turnout was high\n\n")
}
