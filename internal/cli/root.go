package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fmueller/voxsearch/internal/browser"
	"github.com/fmueller/voxsearch/internal/dispatch"
	"github.com/fmueller/voxsearch/internal/keyword"
	"github.com/fmueller/voxsearch/internal/lexicon"
	"github.com/fmueller/voxsearch/internal/logging"
	"github.com/fmueller/voxsearch/internal/platform"
	"github.com/fmueller/voxsearch/internal/version"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	verbose        bool
	jsonLogs       bool
	logLevel       string
	noProgress     bool
	lexiconPath    string
	triggers       []string
	maxTokens      int
	fuzzyThreshold float64
	debounce       time.Duration

	listen listenOptions

	logger    *zap.Logger
	lexicon   lexicon.Lexicon
	extractor *keyword.Extractor

	openFn func(ctx context.Context, target string) error
}

func newAppState() *appState {
	defaults := keyword.DefaultOptions()
	return &appState{
		maxTokens:      defaults.MaxTokens,
		fuzzyThreshold: defaults.FuzzyThreshold,
		debounce:       dispatch.DefaultWindow,
		listen:         defaultListenOptions(),
		openFn:         browser.Open,
	}
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newAppState())
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "voxsearch",
		Short:         "Turn spoken Indonesian search commands into search keywords",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs, Level: app.logLevel})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			if cmd.Annotations[annotationSkipPipeline] == "true" {
				return nil
			}
			return app.buildPipeline()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runListen(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.SetFlagErrorFunc(flagUsageError)

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindPipelineFlags(cmd, app)
	bindListenFlags(cmd, app)

	cmd.AddCommand(newExtractCmd(app))
	cmd.AddCommand(newListenCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newLexiconCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

const annotationSkipPipeline = "voxsearch/skip-pipeline"

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	cmd.Flags().StringVar(&app.logLevel, "log-level", app.logLevel, "Log level (debug|info|warn|error); overrides --verbose")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindPipelineFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.lexiconPath, "lexicon", app.lexiconPath, "YAML lexicon file layered over the built-in word lists (default: per-user lexicon.yaml when present)")
	cmd.Flags().StringSliceVar(&app.triggers, "trigger", app.triggers, "Trigger phrase; repeat or comma-separate to replace the lexicon triggers")
	cmd.Flags().IntVar(&app.maxTokens, "max-tokens", app.maxTokens, "Maximum number of keyword tokens")
	cmd.Flags().Float64Var(&app.fuzzyThreshold, "fuzzy-threshold", app.fuzzyThreshold, "Minimum similarity for near-miss trigger matches")
}

// buildPipeline loads the lexicon and constructs the extractor. Every
// configuration problem is reported in a single error.
func (a *appState) buildPipeline() error {
	lex := lexicon.Default()
	path, found, err := platform.ResolveLexiconPath(a.lexiconPath)
	if err != nil {
		return err
	}
	if found {
		loaded, err := lexicon.Load(path)
		if err != nil {
			return err
		}
		a.log().Debug("lexicon file loaded", zap.String("path", path))
		lex = loaded
	}
	lex = lex.WithTriggers(a.triggers...)

	opts := keyword.DefaultOptions()
	opts.MaxTokens = a.maxTokens
	opts.FuzzyThreshold = a.fuzzyThreshold

	extractor, err := keyword.New(lex, opts)
	if err != nil {
		return err
	}

	a.lexicon = lex
	a.extractor = extractor
	a.log().Debug("keyword pipeline ready",
		zap.Strings("triggers", extractor.Triggers()),
		zap.Int("max_tokens", opts.MaxTokens),
		zap.Float64("fuzzy_threshold", opts.FuzzyThreshold),
	)
	return nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
