package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWebURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://www.google.com/search?hl=id&q=tas+hitam", WebURL("tas hitam"))
	require.Equal(t, "https://www.google.com/search?hl=id&q=kopi+%26+teh", WebURL("kopi & teh"))
}

func TestFaviconURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://www.google.com/s2/favicons?domain=shopee.co.id", FaviconURL("https://shopee.co.id/search?keyword=x"))
	require.Empty(t, FaviconURL("not a url"))
	require.Empty(t, FaviconURL("::"))
}

func TestMockResponse(t *testing.T) {
	t.Parallel()

	resp, err := MockProvider{}.Search(context.Background(), "tas hitam")
	require.NoError(t, err)
	require.Len(t, resp.Items, 5)
	require.Equal(t, "tas hitam - Informasi Terlengkap", resp.Items[0].Title)
	require.Equal(t, "https://www.tokopedia.com/search?q=tas+hitam", resp.Items[0].Link)
	require.Equal(t, "https://id.wikipedia.org/wiki/tas%20hitam", resp.Items[2].Link)
	require.Equal(t, "1000000", resp.SearchInformation.TotalResults)
}

func TestGoogleProviderSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.URL.Query().Get("key"))
		require.Equal(t, "engine", r.URL.Query().Get("cx"))
		require.Equal(t, "tas hitam", r.URL.Query().Get("q"))
		require.Equal(t, "id", r.URL.Query().Get("hl"))
		require.Equal(t, "5", r.URL.Query().Get("num"))
		require.Equal(t, "voxsearch/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"title": "Tas Hitam", "link": "https://example.co.id/tas", "snippet": "Tas hitam murah"},
				{"title": "Tas Kulit", "link": "https://toko.example/kulit", "snippet": "Kulit asli"}
			],
			"searchInformation": {"totalResults": "42", "searchTime": 0.25}
		}`))
	}))
	t.Cleanup(srv.Close)

	g := NewGoogleProvider("secret", "engine")
	g.Endpoint = srv.URL

	resp, err := g.Search(context.Background(), "tas hitam")
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	require.Equal(t, Result{
		Title:   "Tas Hitam",
		Link:    "https://example.co.id/tas",
		Snippet: "Tas hitam murah",
		Favicon: "https://www.google.com/s2/favicons?domain=example.co.id",
	}, resp.Items[0])
	require.Equal(t, &Information{TotalResults: "42", SearchTime: 0.25}, resp.SearchInformation)
}

func TestGoogleProviderErrors(t *testing.T) {
	t.Parallel()

	_, err := NewGoogleProvider("", "").Search(context.Background(), "tas")
	require.ErrorContains(t, err, "requires an API key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "broken") {
			_, _ = w.Write([]byte("not json"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	g := NewGoogleProvider("key", "cx")
	g.Endpoint = srv.URL

	_, err = g.Search(context.Background(), "tas")
	require.ErrorIs(t, err, ErrStatus)

	_, err = g.Search(context.Background(), "broken")
	require.ErrorContains(t, err, "invalid JSON")
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Search(context.Context, string) (Response, error) {
	return Response{}, errors.New("quota exceeded")
}

func TestFallbackProvider(t *testing.T) {
	t.Parallel()

	f := &FallbackProvider{Primary: failingProvider{}, Secondary: MockProvider{}}
	require.Equal(t, "failing+mock", f.Name())

	resp, err := f.Search(context.Background(), "sepatu")
	require.NoError(t, err)
	require.Len(t, resp.Items, 5)

	ok := &FallbackProvider{Primary: MockProvider{}, Secondary: failingProvider{}}
	_, err = ok.Search(context.Background(), "sepatu")
	require.NoError(t, err)
}

func TestClientSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/search", r.URL.Path)
		if r.URL.Query().Get("q") == "rusak" {
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"title":"Sepatu","link":"https://example.com","snippet":"s"}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL + "/")
	resp, err := c.Search(context.Background(), "sepatu lari")
	require.NoError(t, err)
	require.Equal(t, []Result{{Title: "Sepatu", Link: "https://example.com", Snippet: "s"}}, resp.Items)
	require.Nil(t, resp.SearchInformation)

	_, err = c.Search(context.Background(), "rusak")
	require.ErrorIs(t, err, ErrStatus)

	_, err = (&Client{}).Search(context.Background(), "x")
	require.ErrorContains(t, err, "search endpoint is required")
}
