// Package apiclient is the HTTP client for the photo-mapper backend: the
// canonical data source and the batch rename endpoint.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"photomapper/internal/mapping"
)

// DataLoadError reports a failed canonical fetch. Status carries the
// transport status text.
type DataLoadError struct {
	Status string
	Body   string
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load data failed: %s: %s", e.Status, e.Body)
}

// RemoteMutationError reports a rename batch rejected at the transport
// level. The whole batch is one atomic submission; nothing was applied
// client-side.
type RemoteMutationError struct {
	Status string
	Body   string
}

func (e *RemoteMutationError) Error() string {
	return fmt.Sprintf("rename batch failed: %s: %s", e.Status, e.Body)
}

// Client calls the photo-mapper backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client. The generous timeout covers Drive folder listings
// and large rename batches.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// LoadData fetches the canonical mappings and roster.
func (c *Client) LoadData(ctx context.Context) (*mapping.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/load-data", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, &DataLoadError{Status: resp.Status, Body: errorBody(resp.Body)}
	}

	var snap mapping.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// RenameFiles submits the whole operation list as one batch and returns
// the endpoint's own accounting verbatim. Callers must short-circuit on an
// empty list; this method does not.
func (c *Client) RenameFiles(ctx context.Context, renames []mapping.RenameOperation) (*mapping.BatchResult, error) {
	body, _ := json.Marshal(map[string]any{"renames": renames})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/rename-files", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, &RemoteMutationError{Status: resp.Status, Body: errorBody(resp.Body)}
	}

	var result mapping.BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode batch result: %w", err)
	}
	return &result, nil
}

// errorBody extracts the backend's error message when the body is the
// usual {"error": "..."} shape, otherwise returns the raw text.
func errorBody(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
