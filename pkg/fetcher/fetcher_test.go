package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(Options{UserAgent: "schoolbot-test", Timeout: time.Second})
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "schoolbot-test", gotUA)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "ok")
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewFetcher(Options{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewFetcher(Options{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchSelfSignedTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer srv.Close()

	strict := NewFetcher(Options{Timeout: time.Second})
	_, err := strict.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)

	lenient := NewFetcher(Options{Timeout: time.Second, InsecureSkipVerify: true})
	resp, err := lenient.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "secure", string(resp.Body))
}

func TestFetchLimitsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	f := NewFetcher(Options{Timeout: time.Second, MaxBodyBytes: 4})
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(resp.Body))
}
