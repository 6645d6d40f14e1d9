package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	xhttp "FinPulse/pkg/http"
)

// HTTPServiceBase is the shared client for the model service.
type HTTPServiceBase struct {
	baseURL string
	retries int
	client  *xhttp.Client
}

func NewHTTPServiceBase(baseURL string, timeout time.Duration, retries int) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPServiceBase{
		baseURL: strings.TrimRight(baseURL, "/"),
		retries: retries,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// PostJSON posts the given payload to `path` under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b.baseURL == "" {
		return fmt.Errorf("analytics service url not configured")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// PostJSONWithRetry retries transient failures (transport errors, 429, 5xx)
// up to the configured number of extra attempts with linear backoff.
func (b *HTTPServiceBase) PostJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	var err error
	for i := 0; i <= b.retries; i++ {
		err = b.PostJSON(ctx, path, payload, dest)
		if err == nil || !retryable(err) {
			return err
		}
		select {
		case <-time.After(time.Duration(i+1) * 100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, context.Canceled)
}
