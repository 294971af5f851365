package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fmueller/voxsearch/internal/browser"
	"github.com/fmueller/voxsearch/internal/search"
	"github.com/fmueller/voxsearch/internal/session"
	"github.com/fmueller/voxsearch/internal/transcript"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfirmTimeout = 1200 * time.Millisecond

type listenOptions struct {
	confirmTimeout time.Duration
	open           bool
	searchEndpoint string
	metricsAddr    string
}

func defaultListenOptions() listenOptions {
	return listenOptions{confirmTimeout: defaultConfirmTimeout}
}

func newListenCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Watch recognizer transcripts on stdin and search confirmed keywords",
		Long: `Reads one recognizer event per line from stdin. A line is either plain
text (a final transcript) or a JSON object such as
{"text": "pilih sepatu", "final": false} or {"restart": true}.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runListen(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindPipelineFlags(cmd, app)
	bindListenFlags(cmd, app)
	return cmd
}

func bindListenFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().DurationVar(&app.debounce, "debounce", app.debounce, "Suppress repeats of the same keyword within this window")
	cmd.Flags().DurationVar(&app.listen.confirmTimeout, "confirm-timeout", app.listen.confirmTimeout, "Wait this long for a newer detection before searching")
	cmd.Flags().BoolVar(&app.listen.open, "open", app.listen.open, "Open confirmed searches in the default browser")
	cmd.Flags().StringVar(&app.listen.searchEndpoint, "search-endpoint", app.listen.searchEndpoint, "Base URL of a voxsearch server whose results are printed, e.g. http://localhost:8080")
	cmd.Flags().StringVar(&app.listen.metricsAddr, "metrics-addr", app.listen.metricsAddr, "Expose session metrics on this address, e.g. :9090")
}

// runListen drives the confirmation loop. At most one detection is pending;
// a newer one replaces it and restarts the countdown. When the input ends
// the pending detection is confirmed immediately.
func (a *appState) runListen(ctx context.Context, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := session.DefaultOptions()
	opts.DebounceWindow = a.debounce
	opts.Logger = a.log()

	if a.listen.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts.Hooks = session.NewMetrics(reg).Hooks()
		stopMetrics := a.serveMetrics(reg)
		defer stopMetrics()
	}

	var client *search.Client
	if a.listen.searchEndpoint != "" {
		client = search.NewClient(a.listen.searchEndpoint)
	}

	src := transcript.NewLineSource(in)
	detections := session.New(a.extractor, opts).Run(ctx, src.Events(ctx))

	a.log().Info("listening for trigger phrases", zap.Strings("triggers", a.extractor.Triggers()))
	stopSpinner := startSpinner(a.progressEnabled(), "listening")
	defer func() { stopSpinner() }()

	var (
		pending   *session.DetectionEvent
		timer     *time.Timer
		timerC    <-chan time.Time
		stopCount = func() {}
	)
	defer func() {
		stopCount()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case det, ok := <-detections:
			if !ok {
				stopCount()
				stopSpinner()
				if pending != nil {
					a.confirm(ctx, out, client, *pending)
				}
				if err := src.Err(); err != nil {
					return fmt.Errorf("read transcripts: %w", err)
				}
				return nil
			}

			if pending != nil {
				a.log().Debug("pending detection replaced", zap.String("previous", pending.Keyword), zap.String("keyword", det.Keyword))
			}
			pending = &det
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(a.listen.confirmTimeout)
			timerC = timer.C
			stopCount()
			stopCount = startCountdown(a.progressEnabled(), fmt.Sprintf("searching %q", det.Keyword), a.listen.confirmTimeout)

		case <-timerC:
			stopCount()
			stopCount = func() {}
			timerC = nil
			if pending != nil {
				a.confirm(ctx, out, client, *pending)
				pending = nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func (a *appState) confirm(ctx context.Context, out io.Writer, client *search.Client, det session.DetectionEvent) {
	url := search.WebURL(det.Keyword)
	fmt.Fprintf(out, "%s\t%s\n", det.Keyword, url)
	a.log().Info("search confirmed",
		zap.String("id", det.ID),
		zap.String("keyword", det.Keyword),
		zap.Bool("final", det.Final),
	)

	if a.listen.open && a.openFn != nil {
		if err := a.openFn(ctx, url); err != nil {
			if errors.Is(err, browser.ErrUnavailable) {
				a.log().Warn("no browser opener available; search URL left on stdout")
			} else {
				a.log().Warn("failed to open browser; search URL left on stdout", zap.Error(err))
			}
		}
	}

	if client == nil {
		return
	}
	resp, err := client.Search(ctx, det.Keyword)
	if err != nil {
		a.log().Warn("search request failed", zap.String("keyword", det.Keyword), zap.Error(err))
		return
	}
	printResults(out, resp)
}

func printResults(out io.Writer, resp search.Response) {
	for i, item := range resp.Items {
		fmt.Fprintf(out, "  %d. %s\n     %s\n", i+1, item.Title, item.Link)
	}
	if resp.SearchInformation != nil {
		fmt.Fprintf(out, "  about %s results (%.2fs)\n", resp.SearchInformation.TotalResults, resp.SearchInformation.SearchTime)
	}
}

func (a *appState) serveMetrics(reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.listen.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log().Warn("metrics listener stopped", zap.String("addr", a.listen.metricsAddr), zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-done
	}
}
