package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// URLReader fetches the raw content of a URL
type URLReader interface {
	ReadURL(ctx context.Context, url string) ([]byte, error)
}

// HTTPReader reads URLs with plain GET requests: no auth, no retries
type HTTPReader struct {
	client *resty.Client
}

var ErrReadFailed = errors.New("failed to read url")

var _ URLReader = (*HTTPReader)(nil)

// NewHTTPReader creates an HTTPReader using client, or a default resty
// client when nil
func NewHTTPReader(client *resty.Client) *HTTPReader {
	if client == nil {
		client = resty.New()
	}
	return &HTTPReader{client: client}
}

// ReadURL returns the body of a successful GET to url
func (r *HTTPReader) ReadURL(ctx context.Context, url string) ([]byte, error) {
	resp, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrReadFailed, url, resp.StatusCode())
	}
	return resp.Body(), nil
}
