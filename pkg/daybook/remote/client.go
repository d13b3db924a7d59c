// Package remote is the typed client for the journal sync service:
// JSON over HTTP, bearer-token auth, no retries and no timeout beyond
// the transport default. Any non-2xx response is one uniform failure.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// Store is the operations the sync engine needs from the remote
// service. Client talks to a real service; Bypass short-circuits
// everything for remote-free operation.
type Store interface {
	CreateLog(ctx context.Context, log *LogPayload) (*LogPayload, error)
	UpdateLog(ctx context.Context, log *LogPayload) error
	DeleteLog(ctx context.Context, id uuid.UUID) error
	ListLogs(ctx context.Context) ([]*LogPayload, error)
	CreateTag(ctx context.Context, tag TagPayload) (*TagPayload, error)
	ListTags(ctx context.Context) ([]TagPayload, error)
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// StatusError reports a non-2xx response. Callers treat every status
// the same way; the code and body exist for logs only.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: status=%d, body=%s", e.StatusCode, e.Body)
}

// Client is the HTTP implementation of Store. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// NewClient creates a client for the service at baseURL (protocol and
// host, no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// SetAuthToken sets the bearer token attached to every request.
func (c *Client) SetAuthToken(token string) {
	c.authToken = token
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	return c.httpClient.Do(req)
}

// decodeResponse checks the status and decodes the body into target.
// A nil target or an empty body are both fine (PUT may echo or return
// nothing).
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if target == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CreateLog stores a new entry remotely and returns the canonical
// stored payload.
func (c *Client) CreateLog(ctx context.Context, log *LogPayload) (*LogPayload, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/logs", log)
	if err != nil {
		return nil, err
	}
	var result LogPayload
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateLog replaces an existing remote entry.
func (c *Client) UpdateLog(ctx context.Context, log *LogPayload) error {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/logs/%s", log.ID), log)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// DeleteLog removes a remote entry.
func (c *Client) DeleteLog(ctx context.Context, id uuid.UUID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/logs/%s", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// ListLogs fetches the full remote entry list.
func (c *Client) ListLogs(ctx context.Context) ([]*LogPayload, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/logs", nil)
	if err != nil {
		return nil, err
	}
	var result []*LogPayload
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateTag stores a new tag remotely.
func (c *Client) CreateTag(ctx context.Context, tag TagPayload) (*TagPayload, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/tags", tag)
	if err != nil {
		return nil, err
	}
	var result TagPayload
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTags fetches the full remote tag list.
func (c *Client) ListTags(ctx context.Context) ([]TagPayload, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/tags", nil)
	if err != nil {
		return nil, err
	}
	var result []TagPayload
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Search runs a full-text search remotely.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/search", SearchRequest{Query: query})
	if err != nil {
		return nil, err
	}
	var result SearchResponse
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
