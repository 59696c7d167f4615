package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/observability"
)

func completionBody(content string) string {
	b, _ := json.Marshal(Response{
		ID: "chatcmpl-test",
		Choices: []Choice{
			{Message: ChoiceMessage{Role: "assistant", Content: content}, FinishReason: "stop"},
		},
	})
	return string(b)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("key", "", nil)
	assert.Equal(t, defaultModel, c.model)
	assert.Equal(t, openAIURL, c.baseURL)

	c = NewClient("key", "gpt-4o-mini", nil)
	assert.Equal(t, "gpt-4o-mini", c.model)
}

func TestBuildRequest(t *testing.T) {
	c := NewClient("key", "", nil)
	req := c.buildRequest("explain this", []byte{0x89, 0x50, 0x4e, 0x47})

	assert.Equal(t, defaultModel, req.Model)
	assert.Equal(t, maxCompletionTokens, req.MaxTokens)
	assert.Equal(t, float64(0), req.Temperature)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, "json_object", req.ResponseFormat.Type)

	require.Len(t, req.Messages, 1)
	msg := req.Messages[0]
	assert.Equal(t, "user", msg.Role)
	require.Len(t, msg.Content, 2)
	assert.Equal(t, "text", msg.Content[0].Type)
	assert.Equal(t, "explain this", msg.Content[0].Text)
	assert.Equal(t, "image_url", msg.Content[1].Type)
	require.NotNil(t, msg.Content[1].ImageURL)
	assert.True(t, strings.HasPrefix(msg.Content[1].ImageURL.URL, "data:image/png;base64,"))
	assert.Equal(t, "high", msg.Content[1].ImageURL.Detail)
}

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultModel, req.Model)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody(`{"titulo": "ok"}`)))
	}))
	defer srv.Close()

	c := NewClient("test-key", "", observability.NopLogger()).WithBaseURL(srv.URL)
	content, err := c.Complete(context.Background(), "prompt", []byte{1, 2, 3})

	require.NoError(t, err)
	assert.Equal(t, `{"titulo": "ok"}`, content)
}

func TestComplete_RetriesOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionBody("recovered")))
	}))
	defer srv.Close()

	c := NewClient("k", "", observability.NopLogger()).WithBaseURL(srv.URL)
	content, err := c.Complete(context.Background(), "p", []byte{1})

	require.NoError(t, err)
	assert.Equal(t, "recovered", content)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestComplete_NonRetryableStatus(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "bad key"}`))
	}))
	defer srv.Close()

	c := NewClient("k", "", observability.NopLogger()).WithBaseURL(srv.URL)
	_, err := c.Complete(context.Background(), "p", []byte{1})

	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ErrorTypeAPI))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer srv.Close()

	c := NewClient("k", "", observability.NopLogger()).WithBaseURL(srv.URL)
	_, err := c.Complete(context.Background(), "p", []byte{1})

	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ErrorTypeAPI))
}

func TestShouldRetry(t *testing.T) {
	retryable := []int{429, 500, 502, 503, 504}
	for _, code := range retryable {
		assert.True(t, shouldRetry(code), "expected %d to be retryable", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404} {
		assert.False(t, shouldRetry(code), "expected %d to be non-retryable", code)
	}
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, initialBackoff, calculateBackoff(0))
	assert.Equal(t, 2*initialBackoff, calculateBackoff(1))
	assert.Equal(t, 4*initialBackoff, calculateBackoff(2))
	assert.Equal(t, maxBackoff, calculateBackoff(10))
}
