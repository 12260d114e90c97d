package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

type timeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout bounds every Complete call of next by d. A zero d returns next unchanged.
func WithTimeout(next Client, d time.Duration) Client {
	if d <= 0 {
		return next
	}
	return &timeoutClient{next: next, timeout: d}
}

func (c *timeoutClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.next.Complete(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("llm call exceeded %s: %w", c.timeout, err)
	}
	return resp, err
}

func (c *timeoutClient) Model() string {
	return c.next.Model()
}

type retryClient struct {
	next     Client
	attempts int
	backoff  time.Duration
}

// WithRetry retries a failed Complete call of next up to attempts times in
// total while IsRetryable reports the error as transient. The wait doubles
// after each failure starting at backoff. attempts below 2 returns next.
func WithRetry(next Client, attempts int, backoff time.Duration) Client {
	if attempts < 2 {
		return next
	}
	return &retryClient{next: next, attempts: attempts, backoff: backoff}
}

func (c *retryClient) Complete(ctx context.Context, req Request) (*Response, error) {
	var err error
	for attempt := range c.attempts {
		var resp *Response
		resp, err = c.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsRetryable(ctx, err) || attempt == c.attempts-1 {
			break
		}

		wait := c.backoff << attempt
		slog.WarnContext(ctx, "llm call failed, retrying",
			"attempt", attempt+1,
			"wait_ms", wait.Milliseconds(),
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("llm retry interrupted: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return nil, err
}

func (c *retryClient) Model() string {
	return c.next.Model()
}

func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.DebugContext(ctx, "llm error not retryable: context cancelled or deadline exceeded")
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			slog.WarnContext(ctx, "llm rate limited, will retry",
				"status_code", apiErr.StatusCode)
			return true
		case apiErr.StatusCode >= 500:
			slog.WarnContext(ctx, "llm server error, will retry",
				"status_code", apiErr.StatusCode)
			return true
		default:
			slog.ErrorContext(ctx, "llm client error, not retryable",
				"status_code", apiErr.StatusCode,
				"error_type", apiErr.Type,
				"error_code", apiErr.Code)
			return false
		}
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		retry := anthropicErr.StatusCode == 429 || anthropicErr.StatusCode >= 500
		slog.WarnContext(ctx, "llm api error",
			"status_code", anthropicErr.StatusCode,
			"retry", retry)
		return retry
	}

	if errors.Is(err, ErrEmptyCompletion) {
		return false
	}

	slog.WarnContext(ctx, "llm network error, will retry", "error", err)
	return true
}
