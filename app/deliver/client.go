package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrNonRetryable marks a delivery rejected by the endpoint for a
// reason retrying cannot fix (4xx other than 429).
var ErrNonRetryable = errors.New("delivery rejected")

// Client posts messages to a webhook endpoint. Transient failures
// (network errors, 5xx, 429) are retried with jittered exponential
// backoff; a 429 Retry-After header overrides the computed delay.
// Outbound posts are paced by a shared rate limiter so bursts of
// alerts do not trip the endpoint's own throttling.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	baseDelay    time.Duration
	messageLimit int

	// Injectable for tests.
	sleep  func(context.Context, time.Duration) error
	jitter func(time.Duration) time.Duration
}

func NewClient(requestsPerSecond float64, maxRetries int, baseDelay time.Duration, messageLimit int) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		maxRetries:   maxRetries,
		baseDelay:    baseDelay,
		messageLimit: messageLimit,
		sleep:        sleepContext,
		jitter:       defaultJitter,
	}
}

// Deliver posts message to webhookURL, truncated to the message limit.
// It makes up to 1+maxRetries attempts and returns nil on the first
// 2xx response.
func (c *Client) Deliver(ctx context.Context, webhookURL, message string) error {
	message = Truncate(message, c.messageLimit)

	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for rate limiter: %w", err)
		}

		retryAfter, err := c.post(ctx, webhookURL, body)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNonRetryable) {
			return err
		}
		lastErr = err

		if attempt == c.maxRetries+1 {
			break
		}

		delay := c.jitter(c.baseDelay << (attempt - 1))
		if retryAfter > 0 {
			delay = retryAfter
		}
		slog.Debug("Delivery attempt failed, retrying", "attempt", attempt, "delay", delay, "error", err)

		if err := c.sleep(ctx, delay); err != nil {
			return fmt.Errorf("failed to wait before retry: %w", err)
		}
	}

	return fmt.Errorf("delivery failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// post makes a single attempt. On 429 it also reports the server's
// Retry-After delay, if any.
func (c *Client) post(ctx context.Context, webhookURL string, body []byte) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return parseRetryAfter(resp.Header.Get("Retry-After")), fmt.Errorf("webhook throttled: %s", resp.Status)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return 0, fmt.Errorf("%w: %s", ErrNonRetryable, resp.Status)
	default:
		return 0, fmt.Errorf("webhook error: %s", resp.Status)
	}
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds > 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	return 0
}

func defaultJitter(d time.Duration) time.Duration {
	// ±25% spread keeps concurrent senders from retrying in step.
	spread := float64(d) * 0.25
	return time.Duration(float64(d) - spread + rand.Float64()*2*spread)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
