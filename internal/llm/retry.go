package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/lecturalab/slide-worker/internal/domain"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// shouldRetry determines if a status code is retryable
func shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusInternalServerError: // 500
		return true
	case http.StatusBadGateway: // 502
		return true
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	default:
		return false
	}
}

// calculateBackoff calculates exponential backoff duration
func calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: initialBackoff * 2^attempt
	backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))

	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}

	return time.Duration(backoff)
}

// retryWithBackoff wraps an HTTP request with retry logic
func (c *Client) retryWithBackoff(ctx context.Context, reqFunc func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := reqFunc()

		if err == nil && resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else if resp != nil {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)

			// Non-retryable statuses go straight back to the caller.
			if !shouldRetry(resp.StatusCode) {
				return resp, nil
			}

			if resp.Body != nil {
				resp.Body.Close()
			}
		}

		if attempt == maxRetries {
			break
		}

		backoff := calculateBackoff(attempt)
		c.logger.Warn().
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Dur("backoff", backoff).
			Err(lastErr).
			Msg("Model request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, domain.APIError(fmt.Sprintf("request failed after %d retries", maxRetries), lastErr)
}
