// Package search models search results and the backends that produce them.
package search

import (
	"context"
	"errors"
	"net/url"
)

var ErrStatus = errors.New("unexpected response status")

type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Favicon string `json:"favicon,omitempty"`
}

type Information struct {
	TotalResults string  `json:"totalResults"`
	SearchTime   float64 `json:"searchTime"`
}

type Response struct {
	Items             []Result     `json:"items"`
	SearchInformation *Information `json:"searchInformation,omitempty"`
}

// Provider answers a search query.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (Response, error)
}

// WebURL returns the Google web search URL for keyword in Indonesian.
func WebURL(keyword string) string {
	v := url.Values{}
	v.Set("q", keyword)
	v.Set("hl", "id")
	return "https://www.google.com/search?" + v.Encode()
}

// FaviconURL returns the favicon service URL for the host of link.
func FaviconURL(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return "https://www.google.com/s2/favicons?domain=" + u.Hostname()
}
