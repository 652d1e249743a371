package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	timeout     = time.Second * 15
	baseBackoff = time.Millisecond * 200
)

var ErrFailedCloseResponseBody = errors.New("failed close response body")

//go:generate mockgen -source=http_client.go -destination=mock_http_client.go -package=clients
type HTTPClientI interface {
	Do(req *http.Request) (*http.Response, error)
	Get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error)
	Post(ctx context.Context, url string, headers http.Header, body []byte) (statusCode int, respBody []byte, respHeaders http.Header, err error)
}

type HTTPClientAdapter struct {
	client *http.Client
}

func (h *HTTPClientAdapter) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *HTTPClientAdapter) Get(ctx context.Context, url string, headers http.Header) (int, []byte, http.Header, error) {
	return h.send(ctx, http.MethodGet, url, headers, nil)
}

func (h *HTTPClientAdapter) Post(ctx context.Context, url string, headers http.Header, body []byte) (int, []byte, http.Header, error) {
	return h.send(ctx, http.MethodPost, url, headers, body)
}

func (h *HTTPClientAdapter) send(ctx context.Context, method, url string, headers http.Header, body []byte) (statusCode int, respBody []byte, respHeaders http.Header, err error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return
	}
	if headers != nil {
		req.Header = headers.Clone()
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}

	defer func() {
		if e := resp.Body.Close(); e != nil {
			err = errors.Join(err, ErrFailedCloseResponseBody)
		}
	}()

	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	statusCode = resp.StatusCode
	respHeaders = resp.Header

	return
}

// HTTPClient retries transport errors, 429 and 5xx responses with exponential backoff.
type HTTPClient struct {
	client  HTTPClientI
	retries uint64
	base    time.Duration
}

func NewHTTPClient(retries uint64) *HTTPClient {
	return &HTTPClient{
		client: &HTTPClientAdapter{
			client: &http.Client{Timeout: timeout},
		},
		retries: retries,
		base:    baseBackoff,
	}
}

func (h *HTTPClient) Get(ctx context.Context, url string, headers http.Header) (int, []byte, http.Header, error) {
	return h.withRetry(ctx, url, func(ctx context.Context) (int, []byte, http.Header, error) {
		return h.client.Get(ctx, url, headers)
	})
}

func (h *HTTPClient) Post(ctx context.Context, url string, headers http.Header, body []byte) (int, []byte, http.Header, error) {
	return h.withRetry(ctx, url, func(ctx context.Context) (int, []byte, http.Header, error) {
		return h.client.Post(ctx, url, headers, body)
	})
}

func (h *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *HTTPClient) SetClient(mock HTTPClientI) {
	h.client = mock
}

type call func(ctx context.Context) (int, []byte, http.Header, error)

func (h *HTTPClient) withRetry(ctx context.Context, url string, fn call) (statusCode int, respBody []byte, respHeaders http.Header, err error) {
	backoff := retry.WithMaxRetries(h.retries, retry.NewExponential(h.base))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		statusCode, respBody, respHeaders, err = fn(ctx)
		switch {
		case err != nil:
			zap.L().Warn("request failed", zap.String("url", url), zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		case statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError:
			zap.L().Warn("retryable response", zap.String("url", url), zap.Int("attempt", attempt), zap.Int("status", statusCode))
			return retry.RetryableError(fmt.Errorf("unexpected status %d", statusCode))
		}
		return nil
	})
	if err != nil && statusCode != 0 {
		// retries exhausted on an HTTP response: let the caller interpret the status
		err = nil
	}
	return statusCode, respBody, respHeaders, err
}
