package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the voxsearch search API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Name() string { return "api" }

func (c *Client) Search(ctx context.Context, query string) (Response, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return Response{}, errors.New("search endpoint is required")
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/api/search?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, fmt.Errorf("build search request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("search %q: %w: %s", query, ErrStatus, resp.Status)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode search response: %w", err)
	}
	return out, nil
}
