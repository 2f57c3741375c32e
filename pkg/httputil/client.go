package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryableError marks an error as transient. [Retry] attempts the
// operation again only for errors carrying this wrapper; everything else
// fails fast.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, fails with a non-retryable error, or
// attempts are exhausted. The delay doubles between attempts; cancelling
// the context ends the wait with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var transient *RetryableError
		if !errors.As(err, &transient) || attempt == attempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}

// RetryWithBackoff runs fn with the default policy of 3 attempts starting
// at a 1 second delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// GetJSON fetches url and returns the response body. Connection errors
// and 5xx responses are retried with backoff; any other non-200 status
// fails immediately. The optional header is applied to every attempt. A
// nil client falls back to http.DefaultClient.
func GetJSON(ctx context.Context, client *http.Client, url string, header http.Header) (json.RawMessage, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var body json.RawMessage
	err := RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		for name, values := range header {
			for _, value := range values {
				req.Header.Add(name, value)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500:
			return &RetryableError{Err: fmt.Errorf("status %d from %s", resp.StatusCode, url)}
		default:
			return fmt.Errorf("status %d from %s", resp.StatusCode, url)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	return body, err
}
