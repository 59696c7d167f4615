package callback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/observability"
)

func newTestNotifier(url, secret string) *Notifier {
	n := NewNotifier(url, secret, observability.NopLogger())
	n.baseDelay = 10 * time.Millisecond
	return n
}

func TestSign_KnownVector(t *testing.T) {
	body := []byte(`{"jobId":"x","status":"completed"}`)
	sig := Sign("s3cr3t", body)
	assert.Equal(t, "6faa25fbc9d59f8267ebf3a058a0320680e7bb312392c0185ab51f705fb9df83", sig)
}

func TestSign_Deterministic(t *testing.T) {
	body := []byte(`{"jobId":"abc","status":"failed"}`)
	assert.Equal(t, Sign("secret", body), Sign("secret", body))
	assert.NotEqual(t, Sign("secret", body), Sign("other", body))
}

func TestNotify_SignatureVerifiesAgainstWireBytes(t *testing.T) {
	const secret = "test-secret"

	var gotPayload Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// The receiver recomputes the HMAC over the exact wire bytes.
		assert.Equal(t, Sign(secret, body), r.Header.Get(SignatureHeader))
		assert.NotEmpty(t, r.Header.Get(DeliveryHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.Unmarshal(body, &gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, secret)
	outputs := &domain.JobOutputs{
		SummaryURL:   "https://example.com/summary",
		DocumentURL:  "https://example.com/docx",
		FlashcardURL: "https://example.com/apkg",
		TotalSlides:  7,
	}

	err := n.Notify(context.Background(), "job-1", domain.JobStatusCompleted, outputs, nil)
	require.NoError(t, err)

	assert.Equal(t, "job-1", gotPayload.JobID)
	assert.Equal(t, domain.JobStatusCompleted, gotPayload.Status)
	require.NotNil(t, gotPayload.Outputs)
	assert.Equal(t, 7, gotPayload.Outputs.TotalSlides)
	assert.Nil(t, gotPayload.Error)
}

func TestNotify_FailurePayload(t *testing.T) {
	var gotPayload Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, "s")
	errInfo := &domain.ErrorInfo{Message: "boom", Code: "PROCESSING_ERROR"}

	err := n.Notify(context.Background(), "job-2", domain.JobStatusFailed, nil, errInfo)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusFailed, gotPayload.Status)
	assert.Nil(t, gotPayload.Outputs)
	require.NotNil(t, gotPayload.Error)
	assert.Equal(t, "PROCESSING_ERROR", gotPayload.Error.Code)
}

func TestNotify_RetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, "s")
	err := n.Notify(context.Background(), "job-3", domain.JobStatusCompleted, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestNotify_GivesUpAfterThreeAttempts(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, "s")
	err := n.Notify(context.Background(), "job-4", domain.JobStatusCompleted, nil, nil)

	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ErrorTypeCallback))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestNotify_MissingConfiguration(t *testing.T) {
	n := newTestNotifier("", "s")
	err := n.Notify(context.Background(), "j", domain.JobStatusCompleted, nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ErrorTypeCallback))

	n = newTestNotifier("http://localhost:1", "")
	err = n.Notify(context.Background(), "j", domain.JobStatusCompleted, nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ErrorTypeCallback))
}

func TestNotify_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "s", observability.NopLogger())
	n.baseDelay = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := n.Notify(ctx, "job-5", domain.JobStatusCompleted, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
