// Package drive is a thin client for the Google Drive v3 REST API: folder
// listing for the mapped photo folder, and the copy/delete pair the rename
// flow is built on. Authentication is a service-account token source.
package drive

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

const defaultBaseURL = "https://www.googleapis.com/drive/v3"

// Photo is one image file in the mapped folder.
type Photo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MimeType       string `json:"mimeType"`
	WebViewLink    string `json:"webViewLink"`
	WebContentLink string `json:"webContentLink"`
	ThumbnailLink  string `json:"thumbnailLink"`
}

var imageMimes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
	"image/tiff": true,
}

// ExtractFolderID pulls the folder ID out of a Drive share URL. Both the
// /drive/folders/<id> and /open?id=<id> forms are accepted.
func ExtractFolderID(driveURL string) (string, error) {
	if _, after, ok := strings.Cut(driveURL, "folders/"); ok {
		id, _, _ := strings.Cut(after, "?")
		id, _, _ = strings.Cut(id, "&")
		id, _, _ = strings.Cut(id, "/")
		return id, nil
	}
	if _, after, ok := strings.Cut(driveURL, "id="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id, nil
	}
	return "", fmt.Errorf("could not extract folder ID from URL: %s", driveURL)
}

// TokenSource supplies bearer tokens for API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client calls the Drive REST API.
type Client struct {
	BaseURL string
	Tokens  TokenSource
	HTTP    *http.Client
}

// New creates a Drive client.
func New(tokens TokenSource) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		Tokens:  tokens,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ListPhotos returns the image files in a folder, following pagination.
// Non-image files are filtered out.
func (c *Client) ListPhotos(ctx context.Context, folderID string) ([]Photo, error) {
	var photos []Photo
	pageToken := ""

	for {
		params := url.Values{
			"q":        {fmt.Sprintf("'%s' in parents and trashed=false", folderID)},
			"pageSize": {"1000"},
			"fields":   {"nextPageToken, files(id, name, mimeType, webViewLink, webContentLink, thumbnailLink)"},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page struct {
			NextPageToken string  `json:"nextPageToken"`
			Files         []Photo `json:"files"`
		}
		if err := c.do(ctx, http.MethodGet, "/files?"+params.Encode(), nil, &page); err != nil {
			return nil, fmt.Errorf("list folder %s: %w", folderID, err)
		}

		for _, f := range page.Files {
			if imageMimes[f.MimeType] {
				photos = append(photos, f)
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return photos, nil
}

// Copy duplicates a file under a new name and returns the new file ID.
// Shared drives are supported; service accounts typically cannot patch a
// file's name in place, which is why renames go through copy+delete.
func (c *Client) Copy(ctx context.Context, fileID, newName string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	path := "/files/" + url.PathEscape(fileID) + "/copy?supportsAllDrives=true"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"name": newName}, &out); err != nil {
		return "", fmt.Errorf("copy file %s: %w", fileID, err)
	}
	return out.ID, nil
}

// Delete removes a file.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	if err := c.do(ctx, http.MethodDelete, "/files/"+url.PathEscape(fileID), nil, nil); err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	return nil
}

// do issues an authenticated request with an optional JSON body and decodes
// the response into out when provided.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("drive request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("drive api error %s: %s", resp.Status, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
