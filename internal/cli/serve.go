package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fmueller/voxsearch/internal/search"
	"github.com/fmueller/voxsearch/internal/searchapi"
	"github.com/fmueller/voxsearch/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	envGoogleAPIKey = "VOXSEARCH_GOOGLE_API_KEY"
	envGoogleCX     = "VOXSEARCH_GOOGLE_CX"
)

type serveOptions struct {
	addr            string
	googleAPIKey    string
	googleCX        string
	secureCookies   bool
	shutdownTimeout time.Duration
}

func newServeCmd(app *appState) *cobra.Command {
	opts := &serveOptions{
		addr:            ":8080",
		shutdownTimeout: 10 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search API",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.googleAPIKey == "" {
				opts.googleAPIKey = os.Getenv(envGoogleAPIKey)
			}
			if opts.googleCX == "" {
				opts.googleCX = os.Getenv(envGoogleCX)
			}

			ln, err := net.Listen("tcp", opts.addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", opts.addr, err)
			}
			return app.runServe(cmd.Context(), ln, *opts)
		},
	}

	bindLoggingFlags(cmd, app)
	bindPipelineFlags(cmd, app)
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "Listen address")
	cmd.Flags().StringVar(&opts.googleAPIKey, "google-api-key", "", "Google Custom Search API key (env "+envGoogleAPIKey+")")
	cmd.Flags().StringVar(&opts.googleCX, "google-cx", "", "Google Custom Search engine ID (env "+envGoogleCX+")")
	cmd.Flags().BoolVar(&opts.secureCookies, "secure-cookies", false, "Mark the usage cookie Secure; enable behind HTTPS")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", opts.shutdownTimeout, "Grace period for in-flight requests on shutdown")
	return cmd
}

func (a *appState) searchProvider(opts serveOptions) search.Provider {
	if strings.TrimSpace(opts.googleAPIKey) == "" || strings.TrimSpace(opts.googleCX) == "" {
		a.log().Info("google custom search not configured; serving mock results")
		return search.MockProvider{}
	}
	return &search.FallbackProvider{
		Primary:   search.NewGoogleProvider(opts.googleAPIKey, opts.googleCX),
		Secondary: search.MockProvider{},
		Logger:    a.log(),
	}
}

func (a *appState) newServeHandler(opts serveOptions, reg *prometheus.Registry) http.Handler {
	metrics := searchapi.NewMetrics(reg)
	api := searchapi.New(a.log().Named("api"), a.searchProvider(opts), a.extractor, searchapi.Options{
		SecureCookies: opts.secureCookies,
		Lexicon:       a.lexicon,
		Metrics:       metrics,
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(api.Gate)

	api.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"service":"voxsearch","version":%q}`+"\n", version.Resolve())
	})
	return r
}

func (a *appState) runServe(ctx context.Context, ln net.Listener, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Handler:           a.newServeHandler(opts, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.log().Info("search api listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.log().Info("shutting down search api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}
