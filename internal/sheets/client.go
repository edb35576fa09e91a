// Package sheets reads the roster worksheet through the Google Sheets
// values API.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"photomapper/internal/matcher"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Column positions in the coach-sheet roster layout.
const (
	colStudentID    = 1
	colFirstName    = 2
	colLastName     = 3
	colFullName     = 4
	colParent1First = 18
	colParent1Last  = 19
	colParent2First = 22
	colParent2Last  = 23
)

// The sheet carries a header row plus five metadata rows before player
// data starts.
const dataStartRow = 6

// TokenSource supplies bearer tokens for API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client calls the Sheets values API.
type Client struct {
	BaseURL string
	Tokens  TokenSource
	HTTP    *http.Client
}

// New creates a Sheets client.
func New(tokens TokenSource) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		Tokens:  tokens,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// LoadRoster fetches the worksheet and parses players out of it.
func (c *Client) LoadRoster(ctx context.Context, spreadsheetID, worksheet string) ([]matcher.Player, error) {
	path := fmt.Sprintf("/spreadsheets/%s/values/%s",
		url.PathEscape(spreadsheetID), url.PathEscape(worksheet))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("sheets api error %s: %s", resp.Status, string(raw))
	}

	var out struct {
		Values [][]string `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode values: %w", err)
	}
	return ParseRoster(out.Values), nil
}

// ParseRoster extracts players from raw worksheet values: row 0 is the
// header, rows 1-5 are metadata, player rows follow. Rows without both a
// first and last name are skipped.
func ParseRoster(values [][]string) []matcher.Player {
	if len(values) <= dataStartRow {
		return nil
	}

	var players []matcher.Player
	for _, row := range values[dataStartRow:] {
		if col(row, colStudentID) == "" {
			continue
		}
		p := matcher.Player{
			StudentID:    col(row, colStudentID),
			FirstName:    col(row, colFirstName),
			LastName:     col(row, colLastName),
			FullName:     col(row, colFullName),
			Parent1First: col(row, colParent1First),
			Parent1Last:  col(row, colParent1Last),
			Parent2First: col(row, colParent2First),
			Parent2Last:  col(row, colParent2Last),
		}
		if p.FirstName == "" || p.LastName == "" {
			continue
		}
		players = append(players, p)
	}
	return players
}

func col(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
