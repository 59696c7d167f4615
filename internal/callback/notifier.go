// Package callback delivers signed job-completion notifications to the
// configured webhook.
package callback

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/observability"
)

const (
	maxAttempts    = 3
	requestTimeout = 30 * time.Second
)

// Header names recognized by the receiving API.
const (
	SignatureHeader = "X-Worker-Signature"
	DeliveryHeader  = "X-Worker-Delivery"
)

// Payload is the callback body. Outputs and Error are mutually
// exclusive, keyed by Status.
type Payload struct {
	JobID   string             `json:"jobId"`
	Status  domain.JobStatus   `json:"status"`
	Outputs *domain.JobOutputs `json:"outputs,omitempty"`
	Error   *domain.ErrorInfo  `json:"error,omitempty"`
}

// Notifier posts signed callbacks with bounded retries.
type Notifier struct {
	url        string
	secret     string
	httpClient *http.Client
	logger     *observability.Logger

	// baseDelay is the unit for the exponential backoff between
	// attempts. Overridden in tests.
	baseDelay time.Duration
}

// NewNotifier creates a Notifier for the given webhook URL and shared
// secret.
func NewNotifier(url, secret string, logger *observability.Logger) *Notifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Notifier{
		url:        url,
		secret:     secret,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		baseDelay:  time.Second,
	}
}

// Sign returns the hex HMAC-SHA256 of body under secret. The receiver
// must verify against the exact bytes it reads off the wire.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Notify sends the callback, retrying up to three times with delays of
// one then two seconds. The payload is marshaled once so the signature
// always matches the delivered bytes.
func (n *Notifier) Notify(ctx context.Context, jobID string, status domain.JobStatus, outputs *domain.JobOutputs, errInfo *domain.ErrorInfo) error {
	if n.url == "" {
		return domain.CallbackError("callback URL not configured", nil)
	}
	if n.secret == "" {
		return domain.CallbackError("callback secret not configured", nil)
	}

	body, err := json.Marshal(Payload{
		JobID:   jobID,
		Status:  status,
		Outputs: outputs,
		Error:   errInfo,
	})
	if err != nil {
		return domain.CallbackError("failed to marshal callback payload", err)
	}

	signature := Sign(n.secret, body)
	deliveryID := uuid.NewString()

	n.logger.Info().
		Str("job_id", jobID).
		Str("status", string(status)).
		Str("delivery_id", deliveryID).
		Msg("Sending callback")

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = n.deliver(ctx, body, signature, deliveryID)
		if lastErr == nil {
			n.logger.Info().Str("job_id", jobID).Msg("Callback delivered")
			return nil
		}

		n.logger.Warn().
			Str("job_id", jobID).
			Int("attempt", attempt+1).
			Err(lastErr).
			Msg("Callback attempt failed")

		if attempt < maxAttempts-1 {
			delay := n.baseDelay << attempt
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return domain.CallbackError("callback failed after retries", lastErr)
}

func (n *Notifier) deliver(ctx context.Context, body []byte, signature, deliveryID string) error {
	req, err := http.NewRequestWithContext(ctx, "POST", n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, signature)
	req.Header.Set(DeliveryHeader, deliveryID)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.CallbackError("callback returned "+resp.Status+": "+string(respBody), nil)
	}
	return nil
}
