// Package httpclient is the authenticated JSON client used to reach the tuition backend.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoCredential is returned when a request is attempted by a client that was never bound to a user.
var ErrNoCredential = errors.New("httpclient: no credential bound")

// StatusError reports a completed request that came back with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}

// Client issues JSON requests against a base URL. A Client carrying a credential is bound to one user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	credential string
	userAgent  string
}

// New builds an unbound client. Use WithCredential before issuing requests.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "tuition-web/1.0",
	}
}

// WithHTTPClient swaps the transport client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	clone := *c
	clone.httpClient = hc
	return &clone
}

// WithCredential returns a copy that authenticates every request with the bearer token.
func (c *Client) WithCredential(token string) *Client {
	clone := *c
	clone.credential = token
	return &clone
}

// Authenticated reports whether a credential is bound.
func (c *Client) Authenticated() bool {
	return c != nil && c.credential != ""
}

// Do sends the request and decodes a JSON response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if !c.Authenticated() {
		return ErrNoCredential
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.credential)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
