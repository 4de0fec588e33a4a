// Package notion is a minimal Notion API client used to inspect pages that
// triggered a webhook. It reads just the properties the dispatch decision
// needs: the page title and the "Today" checkbox.
package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
)

// Page is the subset of a Notion page this service cares about.
type Page struct {
	ID    string
	Title string
	// Today mirrors the page's "Today" checkbox property.
	Today bool
}

// PageFetcher fetches page details by id.
type PageFetcher interface {
	GetPage(ctx context.Context, id string) (*Page, error)
}

// Client talks to the Notion REST API with an integration token.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Notion API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewClient creates a Notion client.
func NewClient(token string, httpClient *http.Client, logger logging.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pageResponse is the wire form of a page retrieve call, reduced to the
// properties this service reads.
type pageResponse struct {
	ID         string `json:"id"`
	Properties map[string]struct {
		Type     string `json:"type"`
		Checkbox *bool  `json:"checkbox"`
		Title    []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
	} `json:"properties"`
}

// GetPage implements PageFetcher
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	if c.token == "" {
		return nil, errors.ConfigError("notion api token not configured")
	}

	endpoint := fmt.Sprintf("%s/v1/pages/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.InternalError("building page request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.InternalError("page request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.InternalError(
			fmt.Sprintf("notion returned status %d: %s", resp.StatusCode, string(detail)), nil)
	}

	var payload pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.InternalError("decoding page", err)
	}

	page := &Page{ID: payload.ID}
	for name, prop := range payload.Properties {
		switch {
		case prop.Type == "checkbox" && name == "Today" && prop.Checkbox != nil:
			page.Today = *prop.Checkbox
		case prop.Type == "title" && len(prop.Title) > 0:
			parts := make([]string, 0, len(prop.Title))
			for _, t := range prop.Title {
				parts = append(parts, t.PlainText)
			}
			page.Title = strings.Join(parts, "")
		}
	}
	return page, nil
}
