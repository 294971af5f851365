// Package session runs the keyword pipeline for one listening session.
//
// A Session owns the debounce state for its listener. Concurrent listeners
// each get their own Session; nothing is shared between them.
package session

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fmueller/voxsearch/internal/dispatch"
	"github.com/fmueller/voxsearch/internal/keyword"
	"github.com/fmueller/voxsearch/internal/transcript"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	DefaultMinInterimLength        = 10
	DefaultMinInterimKeywordLength = 3
)

// DetectionEvent is a keyword accepted by the dispatcher. It is handed to
// the confirmation step once and then dropped.
type DetectionEvent struct {
	ID         string
	Keyword    string
	ObservedAt time.Time
	Final      bool
}

type Options struct {
	DebounceWindow time.Duration
	// Interim transcripts are only examined when longer than this many
	// runes and ending in a space.
	MinInterimLength int
	// Keywords from interim transcripts must be longer than this.
	MinInterimKeywordLength int
	Logger                  *zap.Logger
	Hooks                   Hooks
}

func DefaultOptions() Options {
	return Options{
		DebounceWindow:          dispatch.DefaultWindow,
		MinInterimLength:        DefaultMinInterimLength,
		MinInterimKeywordLength: DefaultMinInterimKeywordLength,
	}
}

// Hooks observe the session. Nil hooks are skipped.
type Hooks struct {
	OnTranscript func(final bool)
	OnOutcome    func(outcome keyword.Outcome, final bool)
	OnDecision   func(decision dispatch.Decision)
	OnRestart    func()
}

type Session struct {
	extractor  *keyword.Extractor
	dispatcher *dispatch.Dispatcher
	opts       Options
	logger     *zap.Logger
}

func New(extractor *keyword.Extractor, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{
		extractor:  extractor,
		dispatcher: dispatch.New(opts.DebounceWindow),
		opts:       opts,
		logger:     opts.Logger,
	}
}

// Reset clears the debounce state, as when the listener restarts.
func (s *Session) Reset() {
	s.dispatcher.Reset()
	if s.opts.Hooks.OnRestart != nil {
		s.opts.Hooks.OnRestart()
	}
	s.logger.Debug("session reset")
}

// Observe runs one transcript event through the pipeline and reports the
// detection it produced, if any.
func (s *Session) Observe(ev transcript.Event) (DetectionEvent, bool) {
	if ev.Restart {
		s.Reset()
		return DetectionEvent{}, false
	}
	if s.opts.Hooks.OnTranscript != nil {
		s.opts.Hooks.OnTranscript(ev.Final)
	}

	if !ev.Final && !s.interimReady(ev.Text) {
		s.logger.Debug("interim transcript too short", zap.String("transcript", ev.Text))
		return DetectionEvent{}, false
	}

	res := s.extractor.Extract(ev.Text)
	if s.opts.Hooks.OnOutcome != nil {
		s.opts.Hooks.OnOutcome(res.Outcome, ev.Final)
	}
	if !res.OK() {
		s.logger.Debug("no keyword",
			zap.String("transcript", ev.Text),
			zap.String("outcome", string(res.Outcome)),
			zap.Bool("final", ev.Final),
		)
		return DetectionEvent{}, false
	}

	if !ev.Final && utf8.RuneCountInString(res.Keyword) <= s.opts.MinInterimKeywordLength {
		s.logger.Debug("interim keyword too short", zap.String("keyword", res.Keyword))
		return DetectionEvent{}, false
	}

	now := ev.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	decision := s.dispatcher.Dispatch(res.Keyword, now)
	if s.opts.Hooks.OnDecision != nil {
		s.opts.Hooks.OnDecision(decision)
	}
	if decision == dispatch.Suppress {
		s.logger.Debug("duplicate keyword suppressed", zap.String("keyword", res.Keyword))
		return DetectionEvent{}, false
	}

	det := DetectionEvent{
		ID:         ulid.Make().String(),
		Keyword:    res.Keyword,
		ObservedAt: now,
		Final:      ev.Final,
	}
	s.logger.Info("keyword detected",
		zap.String("id", det.ID),
		zap.String("keyword", det.Keyword),
		zap.String("trigger", res.Candidate.Trigger),
		zap.Bool("fuzzy", res.Candidate.Fuzzy),
		zap.Bool("final", det.Final),
	)
	return det, true
}

func (s *Session) interimReady(text string) bool {
	return utf8.RuneCountInString(text) > s.opts.MinInterimLength && strings.HasSuffix(text, " ")
}

// Run observes events until in is closed or ctx is done. The returned
// channel is closed when Run stops.
func (s *Session) Run(ctx context.Context, in <-chan transcript.Event) <-chan DetectionEvent {
	out := make(chan DetectionEvent, 8)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				det, ok := s.Observe(ev)
				if !ok {
					continue
				}
				select {
				case out <- det:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
