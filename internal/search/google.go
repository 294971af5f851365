package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const DefaultGoogleEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleProvider queries the Google Custom Search JSON API.
type GoogleProvider struct {
	APIKey     string
	CX         string
	Endpoint   string
	MaxResults int
	HTTPClient *http.Client
}

func NewGoogleProvider(apiKey, cx string) *GoogleProvider {
	return &GoogleProvider{
		APIKey:     apiKey,
		CX:         cx,
		Endpoint:   DefaultGoogleEndpoint,
		MaxResults: 5,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (g *GoogleProvider) Name() string { return "google" }

func (g *GoogleProvider) Search(ctx context.Context, query string) (Response, error) {
	if g.APIKey == "" || g.CX == "" {
		return Response{}, errors.New("google search requires an API key and a search engine ID")
	}

	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	num := g.MaxResults
	if num <= 0 {
		num = 5
	}

	v := url.Values{}
	v.Set("key", g.APIKey)
	v.Set("cx", g.CX)
	v.Set("q", query)
	v.Set("hl", "id")
	v.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+v.Encode(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("build google search request: %w", err)
	}
	req.Header.Set("User-Agent", "voxsearch/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("google search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("google search: %w: %s", ErrStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Response{}, fmt.Errorf("read google search response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return Response{}, errors.New("google search: invalid JSON response")
	}

	return parseGoogleResponse(body), nil
}

func parseGoogleResponse(body []byte) Response {
	out := Response{Items: []Result{}}
	gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
		link := item.Get("link").String()
		out.Items = append(out.Items, Result{
			Title:   item.Get("title").String(),
			Link:    link,
			Snippet: item.Get("snippet").String(),
			Favicon: FaviconURL(link),
		})
		return true
	})

	if info := gjson.GetBytes(body, "searchInformation"); info.Exists() {
		out.SearchInformation = &Information{
			TotalResults: info.Get("totalResults").String(),
			SearchTime:   info.Get("searchTime").Float(),
		}
	}
	return out
}

// FallbackProvider answers from Primary and falls back to Secondary on any
// error.
type FallbackProvider struct {
	Primary   Provider
	Secondary Provider
	Logger    *zap.Logger
}

func (f *FallbackProvider) Name() string {
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

func (f *FallbackProvider) Search(ctx context.Context, query string) (Response, error) {
	resp, err := f.Primary.Search(ctx, query)
	if err == nil {
		return resp, nil
	}

	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Warn("search provider failed; using fallback",
		zap.String("provider", f.Primary.Name()),
		zap.String("fallback", f.Secondary.Name()),
		zap.Error(err),
	)
	return f.Secondary.Search(ctx, query)
}
