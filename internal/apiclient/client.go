// Package apiclient talks to the inventory REST API on behalf of one operator.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBodyBytes = 4 << 20

// Config describes where the API lives.
type Config struct {
	BaseURL    string
	APIPrefix  string
	AuthPrefix string
	Timeout    time.Duration
}

// Observer receives one call per upstream request. Status is 0 when the
// request failed before a response arrived.
type Observer interface {
	ObserveUpstream(name string, status int, elapsed time.Duration)
}

// Client holds the shared transport. It carries no credentials; Bind attaches
// a TokenStore for one operator.
type Client struct {
	baseURL    string
	apiPrefix  string
	authPrefix string
	httpClient *http.Client
	observer   Observer
	now        func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New constructs a Client.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	apiPrefix := cfg.APIPrefix
	if apiPrefix == "" {
		apiPrefix = "/api"
	}
	authPrefix := cfg.AuthPrefix
	if authPrefix == "" {
		authPrefix = "/auth"
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiPrefix:  "/" + strings.Trim(apiPrefix, "/"),
		authPrefix: authPrefix,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind returns a Session whose requests carry the token held by store.
func (c *Client) Bind(store TokenStore) *Session {
	if store == nil {
		store = NewMemoryStore("")
	}
	return &Session{client: c, store: store}
}

// URL resolves an API path. Auth paths bypass the API prefix.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if strings.HasPrefix(path, c.authPrefix) {
		return c.baseURL + path
	}
	return c.baseURL + c.apiPrefix + path
}

// Request describes one upstream call.
type Request struct {
	// Name labels the call for metrics, e.g. "orders.list".
	Name        string
	Method      string
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string
}

// Response is an upstream answer other than 401, returned as received.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Session is a Client bound to one operator's token.
type Session struct {
	client *Client
	store  TokenStore
}

// Store exposes the bound token store.
func (s *Session) Store() TokenStore {
	return s.store
}

// Authenticated reports whether a token is currently stored.
func (s *Session) Authenticated() bool {
	return s.store.AccessToken() != ""
}

// Do sends req. A 401 clears the stored token and yields ErrUnauthorized with
// no response. Every other status is returned untouched.
func (s *Session) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := s.client.URL(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, req.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build %s: %w", req.Name, err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if token := s.store.AccessToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := s.client.now()
	resp, err := s.client.httpClient.Do(httpReq)
	if err != nil {
		s.observe(req.Name, 0, start)
		return nil, fmt.Errorf("apiclient: %s: %w", req.Name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	s.observe(req.Name, resp.StatusCode, start)

	if resp.StatusCode == http.StatusUnauthorized {
		s.store.ClearAccessToken()
		return nil, ErrUnauthorized
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("apiclient: read %s: %w", req.Name, err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (s *Session) observe(name string, status int, start time.Time) {
	if s.client.observer == nil {
		return
	}
	s.client.observer.ObserveUpstream(name, status, s.client.now().Sub(start))
}

// call performs req and decodes a 2xx JSON body into out when out is non-nil.
func (s *Session) call(ctx context.Context, req Request, out any) error {
	resp, err := s.Do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{Status: resp.Status, Body: resp.Text()}
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("apiclient: decode %s: %w", req.Name, err)
	}
	return nil
}

func (s *Session) sendJSON(ctx context.Context, name, method, path string, query url.Values, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("apiclient: encode %s: %w", name, err)
	}
	return s.call(ctx, Request{
		Name:        name,
		Method:      method,
		Path:        path,
		Query:       query,
		Body:        bytes.NewReader(data),
		ContentType: "application/json",
	}, out)
}
