package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fmueller/voxsearch/internal/keyword"
	"github.com/fmueller/voxsearch/internal/lexicon"
	"github.com/fmueller/voxsearch/internal/search"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Search(context.Context, string) (search.Response, error) {
	return search.Response{}, errors.New("quota exceeded")
}

func newTestRouter(t *testing.T, provider search.Provider, opts Options) http.Handler {
	t.Helper()

	e, err := keyword.New(lexicon.Default().WithTriggers("pilih"), keyword.DefaultOptions())
	require.NoError(t, err)

	api := New(nil, provider, e, opts)
	r := chi.NewRouter()
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Instrument)
	}
	r.Use(api.Gate)
	api.RegisterRoutes(r)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("home"))
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSearchRequiresQuery(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, search.MockProvider{}, Options{})
	rec := do(t, h, http.MethodGet, "/api/search", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"Missing query parameter"}`, rec.Body.String())
}

func TestSearchReturnsProviderResults(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, search.MockProvider{}, Options{})
	rec := do(t, h, http.MethodGet, "/api/search?q=tas+hitam", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 5)
	require.Equal(t, "tas hitam - Informasi Terlengkap", resp.Items[0].Title)
}

func TestSearchFallsBackToMock(t *testing.T) {
	t.Parallel()

	provider := &search.FallbackProvider{Primary: failingProvider{}, Secondary: search.MockProvider{}}
	h := newTestRouter(t, provider, Options{})
	rec := do(t, h, http.MethodGet, "/api/search?q=sepatu", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchProviderError(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := newTestRouter(t, failingProvider{}, Options{Metrics: m})

	rec := do(t, h, http.MethodGet, "/api/search?q=sepatu", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.JSONEq(t, `{"error":"search failed"}`, rec.Body.String())
	require.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("failing", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/search", "GET", "502")))
}

func TestExtract(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := newTestRouter(t, search.MockProvider{}, Options{Metrics: m})

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "keyword found",
			body: `{"text":"pilih sepatu yang bagus"}`,
			want: `{"keyword":"sepatu bagus","outcome":"matched","trigger":"pilih","searchUrl":"https://www.google.com/search?hl=id&q=sepatu+bagus"}`,
		},
		{
			name: "no trigger",
			body: `{"text":"saya suka sepak bola"}`,
			want: `{"keyword":null,"outcome":"no_trigger"}`,
		},
		{
			name: "custom triggers",
			body: `{"text":"fix laptop gaming","triggers":["fix"]}`,
			want: `{"keyword":"laptop gaming","outcome":"matched","trigger":"fix","searchUrl":"https://www.google.com/search?hl=id&q=laptop+gaming"}`,
		},
		{
			name: "empty keyword",
			body: `{"text":"pilih ya"}`,
			want: `{"keyword":null,"outcome":"empty_keyword"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/extract", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			require.JSONEq(t, tt.want, rec.Body.String())
		})
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("matched")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("no_trigger")))
}

func TestExtractRejectsBadInput(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, search.MockProvider{}, Options{})

	rec := do(t, h, http.MethodPost, "/api/extract", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/extract", `{"text":"fix tas","triggers":["Fix It!"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid keyword configuration")
}

func TestMagicStatusLifecycle(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, search.MockProvider{}, Options{SecureCookies: true})

	rec := do(t, h, http.MethodGet, "/api/magic-status", "")
	require.JSONEq(t, `{"used":false}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/magic-status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, "magic-used", c.Name)
	require.Equal(t, "true", c.Value)
	require.Equal(t, "/", c.Path)
	require.Equal(t, 365*24*60*60, c.MaxAge)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)

	rec = do(t, h, http.MethodGet, "/api/magic-status", "", c)
	require.JSONEq(t, `{"used":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/reset-magic", "", c)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "magic-used", cookies[0].Name)
	require.Negative(t, cookies[0].MaxAge)
}

func TestGate(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, search.MockProvider{}, Options{})
	used := &http.Cookie{Name: "magic-used", Value: "true"}

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "home", rec.Body.String())
	require.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.Equal(t, "0", rec.Header().Get("Expires"))

	rec = do(t, h, http.MethodGet, "/", "", used)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://www.google.com", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodGet, "/", "", &http.Cookie{Name: "magic-used", Value: "false"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/magic-status", "", used)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	e, err := keyword.New(lexicon.Default(), keyword.DefaultOptions())
	require.NoError(t, err)

	require.Panics(t, func() { New(nil, nil, e, Options{}) })
	require.Panics(t, func() { New(nil, search.MockProvider{}, nil, Options{}) })
}
