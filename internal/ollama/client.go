// Package ollama is a small HTTP client for a local Ollama inference server.
package ollama

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

const (
	tagsPath     = "/api/tags"
	generatePath = "/api/generate"

	// maxErrorBody bounds how much of a non-2xx body is kept in a StatusError
	maxErrorBody = 1024
)

// Client talks to the listing and generation endpoints of an Ollama server
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient creates a Client for baseURL (scheme + host + port).
// A nil httpClient is replaced by one with the given timeout.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must include scheme and host", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: parsed,
		http:    httpClient,
	}, nil
}

// BaseURL returns the configured server address
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// IsAvailable reports whether the listing endpoint answers with a 2xx status.
// Transport failures and error statuses both count as unavailable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	resp, err := c.get(ctx, tagsPath)
	if err != nil {
		return false
	}
	defer drainAndClose(resp.Body)
	return checkStatus(resp) == nil
}

// ListModels returns installed model names in server order.
// Failures of any kind yield an empty slice.
func (c *Client) ListModels(ctx context.Context) []string {
	tags, err := c.Tags(ctx)
	if err != nil {
		return []string{}
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names
}

// Tags fetches GET /api/tags
func (c *Client) Tags(ctx context.Context) (*TagsResponse, error) {
	resp, err := c.get(ctx, tagsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var tags TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &tags, nil
}

// Generate sends a non-streamed generation request
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(generatePath), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result GenerateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

// endpoint resolves an absolute API path against the base URL, replacing any base path
func (c *Client) endpoint(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64*1024))
	body.Close()
}
