// Package diag runs smoke checks against a running storefront server.
package diag

import (
	"bytes"         // Request body
	"context"       // Request cancellation
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Error formatting
	"io"            // Response reading
	"net/http"      // HTTP client
	"strings"       // URL and body trimming
	"time"          // Client timeout
)

// Client is a thin JSON client for the storefront API
type Client struct {
	Base string       // Server root without trailing slash
	HTTP *http.Client // Underlying HTTP client
}

// NewClient returns a client for the server at base, e.g. http://localhost:8080
func NewClient(base string) *Client {
	return &Client{
		Base: strings.TrimRight(base, "/"),
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusError is returned when the server answers with an unexpected status
type StatusError struct {
	Method string // Request method
	Path   string // Request path
	Status int    // Status received
	Body   string // Trimmed response body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Do sends body as JSON and decodes the response into out when the status is want
func (c *Client) Do(ctx context.Context, method, path, token string, body, out any, want int) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // Cap at 1 MiB
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
