// Package searchapi serves search, keyword extraction and the one-shot
// usage gate over HTTP.
package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fmueller/voxsearch/internal/keyword"
	"github.com/fmueller/voxsearch/internal/lexicon"
	"github.com/fmueller/voxsearch/internal/search"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Extractor is the pipeline surface the API needs.
type Extractor interface {
	Extract(text string) keyword.Result
	Options() keyword.Options
}

type Options struct {
	// SecureCookies marks the usage cookie Secure.
	SecureCookies bool
	// Lexicon is the base lexicon for requests that override triggers.
	Lexicon lexicon.Lexicon
	Metrics *Metrics
	Now     func() time.Time
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    *zap.Logger
	provider  search.Provider
	extractor Extractor
	opts      Options
}

// New creates a new API handler.
func New(logger *zap.Logger, provider search.Provider, extractor Extractor, opts Options) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	if provider == nil {
		panic(errors.New("search provider is required"))
	}
	if extractor == nil {
		panic(errors.New("keyword extractor is required"))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Lexicon.Triggers) == 0 {
		opts.Lexicon = lexicon.Default()
	}
	return &API{
		logger:    logger,
		provider:  provider,
		extractor: extractor,
		opts:      opts,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", a.handleSearch)
		r.Post("/extract", a.handleExtract)
		r.Get("/magic-status", a.handleMagicStatus)
		r.Post("/magic-status", a.handleMarkMagicUsed)
		r.Post("/reset-magic", a.handleResetMagic)
	})
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing query parameter"})
		return
	}

	started := a.opts.Now()
	resp, err := a.provider.Search(r.Context(), query)
	if err != nil {
		a.observeSearch("error", started)
		if errors.Is(err, context.Canceled) {
			return
		}
		a.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "search failed"})
		return
	}
	a.observeSearch("ok", started)

	if resp.Items == nil {
		resp.Items = []search.Result{}
	}
	writeJSON(w, http.StatusOK, resp)
}

type extractRequest struct {
	Text     string   `json:"text"`
	Triggers []string `json:"triggers,omitempty"`
}

type extractResponse struct {
	Keyword   *string `json:"keyword"`
	Outcome   string  `json:"outcome"`
	Trigger   string  `json:"trigger,omitempty"`
	Fuzzy     bool    `json:"fuzzy,omitempty"`
	SearchURL string  `json:"searchUrl,omitempty"`
}

func (a *API) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	extractor := a.extractor
	if len(req.Triggers) > 0 {
		custom, err := keyword.New(a.opts.Lexicon.WithTriggers(req.Triggers...), a.extractor.Options())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		extractor = custom
	}

	res := extractor.Extract(req.Text)
	if a.opts.Metrics != nil {
		a.opts.Metrics.ExtractionsTotal.WithLabelValues(string(res.Outcome)).Inc()
	}

	out := extractResponse{Outcome: string(res.Outcome)}
	if res.OK() {
		kw := res.Keyword
		out.Keyword = &kw
		out.Trigger = res.Candidate.Trigger
		out.Fuzzy = res.Candidate.Fuzzy
		out.SearchURL = search.WebURL(kw)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) observeSearch(status string, started time.Time) {
	if a.opts.Metrics == nil {
		return
	}
	a.opts.Metrics.SearchesTotal.WithLabelValues(a.provider.Name(), status).Inc()
	a.opts.Metrics.SearchDuration.WithLabelValues(a.provider.Name()).Observe(a.opts.Now().Sub(started).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
