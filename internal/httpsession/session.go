// Package httpsession provides an HTTP client that sends a fixed set of
// headers and optional basic auth with every request.
package httpsession

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Session is an HTTP client with default headers and credentials.
type Session struct {
	client *http.Client
}

type settings struct {
	headers   http.Header
	username  string
	password  string
	basicAuth bool
	timeout   time.Duration
	transport http.RoundTripper
}

// Option configures a Session.
type Option func(*settings)

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(s *settings) { s.headers.Add(key, value) }
}

// WithBasicAuth sets HTTP basic auth credentials.
func WithBasicAuth(username, password string) Option {
	return func(s *settings) {
		s.username, s.password, s.basicAuth = username, password, true
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithTransport replaces the underlying transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.transport = rt }
}

// New returns a Session.
func New(opts ...Option) *Session {
	s := &settings{headers: http.Header{}, timeout: defaultTimeout, transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(s)
	}
	return &Session{
		client: &http.Client{
			Timeout:   s.timeout,
			Transport: &transport{next: s.transport, settings: s},
		},
	}
}

// Client returns the underlying client.
func (s *Session) Client() *http.Client {
	return s.client
}

// Get issues a GET request.
func (s *Session) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

// Check succeeds when url answers with a status below 400.
func (s *Session) Check(ctx context.Context, url string) (int, error) {
	resp, err := s.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return resp.StatusCode, nil
}

type transport struct {
	next     http.RoundTripper
	settings *settings
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, vs := range t.settings.headers {
		if req.Header.Get(k) != "" {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if t.settings.basicAuth {
		if _, _, ok := req.BasicAuth(); !ok {
			req.SetBasicAuth(t.settings.username, t.settings.password)
		}
	}
	return t.next.RoundTrip(req)
}
