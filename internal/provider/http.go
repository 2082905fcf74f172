package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "fabsearch/1.0 (+https://github.com/praxisllmlab/fabsearch)"

var httpClient = &http.Client{Timeout: 12 * time.Second}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// fetchJSON performs an upstream call and decodes the JSON body into out.
// Transient failures (429, 5xx, transport errors) are retried twice with
// exponential backoff.
func fetchJSON(ctx context.Context, method, url string, headers http.Header, body string, out any) error {
	const retries = 2
	backoff := 350 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json, text/plain, */*")
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet := string(data)
			if len(snippet) > 200 {
				snippet = snippet[:200]
			}
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
			if retryable(resp.StatusCode) {
				continue
			}
			return lastErr
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return lastErr
}
