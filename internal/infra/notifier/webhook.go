package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/resilience/circuitbreaker"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/resilience/retry"
)

// ErrCircuitOpen is returned while a webhook's circuit breaker is open.
var ErrCircuitOpen = errors.New("notifier: webhook circuit open")

// webhookClient posts JSON payloads to one webhook URL.
//
// Each post waits on a token bucket sized to the provider's documented limit,
// retries 429 and 5xx responses with backoff and runs inside a circuit breaker.
// The webhook URL embeds a secret and is never logged.
type webhookClient struct {
	channel    string
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retry.Policy
	breaker    *circuitbreaker.Breaker
}

func newWebhookClient(channel, url string, timeout time.Duration, limit rate.Limit, burst int) *webhookClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhookClient{
		channel:    channel,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		retry:      retry.WebhookPolicy(),
		breaker:    circuitbreaker.New(circuitbreaker.ForWebhook(channel)),
	}
}

// post delivers payload. ctx carries the request id used in logs; a new one
// is generated when absent.
func (c *webhookClient) post(ctx context.Context, payload any) error {
	requestID, _ := ctx.Value(requestIDKey).(string)
	if requestID == "" {
		requestID = uuid.New().String()
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", c.channel, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", c.channel, err)
	}

	start := time.Now()
	err = c.breaker.Run(func() error {
		return c.retry.Do(ctx, c.channel+" webhook", func(ctx context.Context) error {
			return c.send(ctx, body)
		})
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, c.channel)
	}
	if err != nil {
		slog.Warn("webhook delivery failed",
			slog.String("request_id", requestID),
			slog.String("channel", c.channel),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return fmt.Errorf("%s webhook: %w", c.channel, err)
	}

	slog.Info("webhook delivered",
		slog.String("request_id", requestID),
		slog.String("channel", c.channel),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// send performs one POST and maps non-2xx responses to retry.StatusError.
func (c *webhookClient) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &retry.StatusError{
		Code: resp.StatusCode,
		Body: fmt.Sprintf("%s API error: %s", c.channel, bytes.TrimSpace(respBody)),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		statusErr.RetryAfter = extractRetryAfter(resp, respBody)
	}
	return statusErr
}

// breakerOpen reports whether deliveries are currently short-circuited.
func (c *webhookClient) breakerOpen() bool {
	return c.breaker.Open()
}
