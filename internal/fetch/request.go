package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// StatusError represents a non-success HTTP response.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch error %d: %s", e.StatusCode, e.Message)
}

// Retryable returns true if the error should trigger a retry.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// Get fetches endpoint with the given query values and returns the raw
// response body. The body is passed through verbatim.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	return c.doWithRetry(ctx, endpoint, query)
}

// doRequest performs a single GET against endpoint.
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int63n(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"endpoint", endpoint,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, endpoint, query)
		if err == nil {
			return body, nil
		}

		lastErr = err

		// Check if error is retryable
		statusErr, ok := err.(*StatusError)
		if !ok || !statusErr.Retryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
