package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Options configures a Fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// InsecureSkipVerify disables TLS certificate verification. Some school
	// sites serve broken certificate chains.
	InsecureSkipVerify bool
	MaxBodyBytes       int64
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// Response is a successful page fetch.
type Response struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}

func NewFetcher(opts Options) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 5 << 20
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
		maxBody:   maxBody,
	}
}

// Fetch performs a GET and returns the body of a 200 response. Any other
// status is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{
		URL:        url,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s, status code: %d", e.URL, e.StatusCode)
}
