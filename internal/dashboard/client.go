// Package dashboard aggregates statistics from the business module APIs.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a module response is read
const maxBodyBytes = 8 << 20

// Client issues authenticated GETs against the module API
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client for baseURL (e.g. http://localhost:3000/api).
// timeout bounds every single request; zero means no per-request bound.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
		http:    &http.Client{},
	}
}

// WithHTTPClient replaces the underlying http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

// WithToken returns a copy of the client that sends token as its bearer credential
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

var errUnsuccessful = errors.New("module responded with success=false")

// getJSON fetches path and decodes the payload of the module envelope into T.
// Both {success, data: {data: T}} and {success, data: T} are accepted.
func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, fmt.Errorf("get %s: status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("decode %s: %w", path, err)
	}
	if !env.Success {
		return zero, fmt.Errorf("get %s: %w", path, errUnsuccessful)
	}

	payload := unwrapData(env.Data)
	if len(payload) == 0 {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, fmt.Errorf("decode %s payload: %w", path, err)
	}
	return out, nil
}

// unwrapData returns the inner "data" member when the payload is itself a
// {data: ...} wrapper, otherwise the payload unchanged
func unwrapData(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] != '{' {
		return raw
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return raw
	}
	inner, ok := wrapper["data"]
	if !ok {
		return raw
	}
	inner = bytes.TrimSpace(inner)
	if bytes.Equal(inner, []byte("null")) {
		return nil
	}
	return inner
}
