// Package keyword extracts a search keyword from a spoken transcript.
//
// The pipeline normalizes the transcript, locates the rightmost trigger
// phrase, and cleans the words that follow it into a short query. Absence
// of a keyword is a normal outcome and is never reported as an error.
package keyword

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/fmueller/voxsearch/internal/lexicon"
)

const (
	DefaultMaxTokens      = 6
	DefaultFuzzyThreshold = 0.85
	DefaultMinFuzzyLength = 4
	DefaultMinStemLength  = 3
)

// Options tunes the heuristics of the pipeline.
type Options struct {
	// MaxTokens caps the number of words in a keyword.
	MaxTokens int
	// FuzzyThreshold is the minimum similarity for a near-miss trigger.
	FuzzyThreshold float64
	// MinFuzzyLength caps the minimum token length a fuzzy hit needs; the
	// effective minimum is min(MinFuzzyLength, len(trigger)-1).
	MinFuzzyLength int
	// MinStemLength is the shortest stem left after enclitic stripping.
	MinStemLength int
}

func DefaultOptions() Options {
	return Options{
		MaxTokens:      DefaultMaxTokens,
		FuzzyThreshold: DefaultFuzzyThreshold,
		MinFuzzyLength: DefaultMinFuzzyLength,
		MinStemLength:  DefaultMinStemLength,
	}
}

func (o Options) Validate() error {
	var errs []error
	if o.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("invalid max tokens %d (must be >= 1)", o.MaxTokens))
	}
	if o.FuzzyThreshold <= 0 || o.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Errorf("invalid fuzzy threshold %v (must be in (0,1])", o.FuzzyThreshold))
	}
	if o.MinFuzzyLength < 1 {
		errs = append(errs, fmt.Errorf("invalid min fuzzy length %d (must be >= 1)", o.MinFuzzyLength))
	}
	if o.MinStemLength < 1 {
		errs = append(errs, fmt.Errorf("invalid min stem length %d (must be >= 1)", o.MinStemLength))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Outcome classifies the result of one extraction.
type Outcome string

const (
	OutcomeMatched      Outcome = "matched"
	OutcomeDegenerate   Outcome = "degenerate"
	OutcomeNoTrigger    Outcome = "no_trigger"
	OutcomeEmptyKeyword Outcome = "empty_keyword"
)

// Result is the full trace of one extraction. Keyword is set only when
// Outcome is OutcomeMatched.
type Result struct {
	Keyword    string
	Outcome    Outcome
	Normalized NormalizedText
	Candidate  MatchCandidate
}

func (r Result) OK() bool {
	return r.Outcome == OutcomeMatched
}

// Extractor runs the pipeline for one lexicon. It is immutable and safe
// for concurrent use.
type Extractor struct {
	opts          Options
	triggers      []string
	triggerWidths []int
	patterns      []pattern
	filler        *regexp.Regexp
	particles     map[string]struct{}
	honorifics    map[string]struct{}
	protected     map[string]struct{}
	stopWords     map[string]struct{}
	enclitics     []string
}

// New validates lex and opts and compiles an Extractor.
func New(lex lexicon.Lexicon, opts Options) (*Extractor, error) {
	if err := errors.Join(lex.Validate(), opts.Validate()); err != nil {
		return nil, fmt.Errorf("invalid keyword configuration: %w", err)
	}

	filler, err := compileFillers(lex.Fillers)
	if err != nil {
		return nil, fmt.Errorf("compile filler patterns: %w", err)
	}

	enclitics := slices.Clone(lex.Enclitics)
	slices.SortStableFunc(enclitics, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	e := &Extractor{
		opts:       opts,
		triggers:   slices.Clone(lex.Triggers),
		patterns:   buildPatterns(lex.Triggers, lex.Variants, lex.TriggerSuffixes, lex.TriggerFollowers),
		filler:     filler,
		particles:  lexicon.Set(lex.Particles),
		honorifics: lexicon.Set(lex.Honorifics),
		protected:  lexicon.Set(lex.Protected),
		stopWords:  lexicon.Set(lex.StopWords),
		enclitics:  enclitics,
	}
	for _, t := range e.triggers {
		e.triggerWidths = append(e.triggerWidths, len(strings.Fields(t)))
	}
	return e, nil
}

// Triggers returns the configured trigger set.
func (e *Extractor) Triggers() []string {
	return slices.Clone(e.triggers)
}

func (e *Extractor) Options() Options {
	return e.opts
}

// Extract runs normalize, locate and clean over text.
func (e *Extractor) Extract(text string) Result {
	norm, ok := e.Normalize(text)
	if !ok {
		return Result{Outcome: OutcomeDegenerate}
	}

	c, ok := e.Locate(norm)
	if !ok {
		return Result{Outcome: OutcomeNoTrigger, Normalized: norm}
	}

	kw, ok := e.Clean(norm, c)
	if !ok {
		return Result{Outcome: OutcomeEmptyKeyword, Normalized: norm, Candidate: c}
	}
	return Result{Keyword: kw, Outcome: OutcomeMatched, Normalized: norm, Candidate: c}
}

// Keyword returns the keyword in text, if any.
func (e *Extractor) Keyword(text string) (string, bool) {
	r := e.Extract(text)
	return r.Keyword, r.OK()
}

var defaultExtractor = sync.OnceValues(func() (*Extractor, error) {
	return New(lexicon.Default(), DefaultOptions())
})

// ExtractKeyword runs the pipeline with the embedded lexicon. Passing
// triggers replaces the default trigger set; an invalid trigger set yields
// no keyword.
func ExtractKeyword(text string, triggers ...string) (string, bool) {
	var (
		e   *Extractor
		err error
	)
	if len(triggers) == 0 {
		e, err = defaultExtractor()
	} else {
		e, err = New(lexicon.Default().WithTriggers(triggers...), DefaultOptions())
	}
	if err != nil {
		return "", false
	}
	return e.Keyword(text)
}
