package httpsession

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_HeadersAndAuth(t *testing.T) {
	t.Parallel()

	type seen struct {
		agent, accept string
		user, pass    string
		ok            bool
	}
	got := make(chan seen, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		got <- seen{agent: r.Header.Get("User-Agent"), accept: r.Header.Get("Accept"), user: user, pass: pass, ok: ok}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	s := New(
		WithHeader("User-Agent", "swarmflow"),
		WithHeader("Accept", "application/json"),
		WithBasicAuth("admin", "hunter2"),
	)

	status, err := s.Check(context.Background(), ts.URL+"/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	r := <-got
	assert.Equal(t, "swarmflow", r.agent)
	assert.Equal(t, "application/json", r.accept)
	assert.True(t, r.ok)
	assert.Equal(t, "admin", r.user)
	assert.Equal(t, "hunter2", r.pass)
}

func TestSession_RequestHeaderWins(t *testing.T) {
	t.Parallel()

	got := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("Accept")
	}))
	t.Cleanup(ts.Close)

	s := New(WithHeader("Accept", "application/json"))
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/html")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "text/html", <-got)
}

func TestSession_CheckFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)

	status, err := New().Check(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	_, err = New().Check(context.Background(), "http://127.0.0.1:1/unreachable")
	require.Error(t, err)
}
