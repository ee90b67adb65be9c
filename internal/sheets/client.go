// Package sheets fetches raw spreadsheet grids from the Google Sheets API.
// It is the external data source for the score extractor: the core contract
// begins once a grid is in hand, so transport failures surface here as plain
// errors and never reach the hub.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Google Sheets REST endpoint.
	DefaultBaseURL = "https://sheets.googleapis.com"

	valuesEndpoint      = "/v4/spreadsheets/%s/values/%s"
	spreadsheetEndpoint = "/v4/spreadsheets/%s"
)

// Config holds the settings needed to reach one spreadsheet.
type Config struct {
	BaseURL       string
	SpreadsheetID string
	APIKey        string
	Timeout       time.Duration
}

// Client is an HTTP client for a single spreadsheet. Sheet tabs double as
// the score board's categories.
type Client struct {
	baseURL       string
	spreadsheetID string
	apiKey        string
	client        *http.Client
}

// NewClient creates a sheets client from config, filling in defaults.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:       baseURL,
		spreadsheetID: cfg.SpreadsheetID,
		apiKey:        cfg.APIKey,
		client:        &http.Client{Timeout: timeout},
	}
}

type valuesResponse struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

type spreadsheetResponse struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// FetchGrid returns the cell grid of one sheet tab, row-major, with sparse
// cells as empty strings.
func (c *Client) FetchGrid(ctx context.Context, sheet string) ([][]string, error) {
	endpoint := fmt.Sprintf(valuesEndpoint, url.PathEscape(c.spreadsheetID), url.PathEscape(sheet))

	var resp valuesResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch sheet %q: %w", sheet, err)
	}

	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		grid[i] = cells
	}
	return grid, nil
}

// ListSheets returns the titles of all sheet tabs in the spreadsheet, in
// document order. These are the categories a controller can pick from.
func (c *Client) ListSheets(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf(spreadsheetEndpoint, url.PathEscape(c.spreadsheetID)) + "?fields=sheets.properties.title"

	var resp spreadsheetResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		titles = append(titles, s.Properties.Title)
	}
	return titles, nil
}

// getJSON performs a GET against the API and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	u := c.baseURL + endpoint
	if c.apiKey != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		u += sep + "key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API returned status code: %d, response: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// cellString renders an API cell value as the string the extractor expects.
func cellString(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", c)
	}
}
