// Package client is a typed Go client for the alumni network API. GET
// responses are cached per path and dropped whenever a mutation touches the
// same resource prefix, so reads after a write always reach the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultCacheTTL = 30 * time.Second

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// Client talks to one API server on behalf of one signed-in user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	ttl        time.Duration

	mu    sync.Mutex
	token string
	cache map[string]cacheEntry
	gen   uint64 // bumped whenever cached entries are dropped
	now   func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCacheTTL sets how long GET responses are reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// New returns a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		ttl:        defaultCacheTTL,
		cache:      make(map[string]cacheEntry),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken changes the bearer token and clears the cache, since cached
// replies may depend on who asked.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.cache = make(map[string]cacheEntry)
	c.gen++
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Invalidate drops every cached response whose path starts with one of the
// prefixes.
func (c *Client) Invalidate(prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for key := range c.cache {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				delete(c.cache, key)
				break
			}
		}
	}
}

func (c *Client) cached(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[path]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		delete(c.cache, path)
		return nil, false
	}
	return entry.body, true
}

func (c *Client) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// store caches body unless the cache was invalidated after gen was read, so a
// reply that raced a mutation is never kept.
func (c *Client) store(path string, body []byte, gen uint64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.cache[path] = cacheEntry{body: body, expires: c.now().Add(c.ttl)}
}

// get fetches path, serving it from the cache when fresh.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if body, ok := c.cached(path); ok {
		return decode(body, out)
	}
	gen := c.generation()
	body, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	c.store(path, body, gen)
	return decode(body, out)
}

// send performs a mutation and invalidates the given prefixes afterwards,
// even when the server rejected it.
func (c *Client) send(ctx context.Context, method, path string, in, out any, invalidate ...string) error {
	defer c.Invalidate(invalidate...)

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	body, err := c.do(ctx, method, path, payload, "application/json")
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Message != "" {
			apiErr.Message = errBody.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}
	return body, nil
}

func decode(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
