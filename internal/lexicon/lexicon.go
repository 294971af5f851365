// Package lexicon holds the closed word lists the keyword pipeline runs on.
//
// The lists ship as YAML embedded in the binary. A lexicon file may replace
// any of them; lists it does not mention keep their defaults.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Lexicon struct {
	Triggers         []string            `yaml:"triggers"`
	Variants         map[string][]string `yaml:"variants"`
	TriggerSuffixes  []string            `yaml:"trigger_suffixes"`
	TriggerFollowers []string            `yaml:"trigger_followers"`
	Fillers          []string            `yaml:"fillers"`
	Particles        []string            `yaml:"particles"`
	Honorifics       []string            `yaml:"honorifics"`
	Enclitics        []string            `yaml:"enclitics"`
	Protected        []string            `yaml:"protected"`
	StopWords        []string            `yaml:"stopwords"`
}

var parseDefault = sync.OnceValues(func() (Lexicon, error) {
	return Parse(defaultYAML, Lexicon{})
})

// Default returns a fresh copy of the embedded lexicon.
func Default() Lexicon {
	lex, err := parseDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return lex.Clone()
}

// Load reads a lexicon file and layers it over the embedded defaults.
func Load(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	lex, err := Parse(data, Default())
	if err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Parse decodes data on top of base and normalizes every entry.
func Parse(data []byte, base Lexicon) (Lexicon, error) {
	lex := base.Clone()
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, err
	}
	return lex.normalized(), nil
}

// WithTriggers returns a copy whose trigger set is replaced. Empty input
// keeps the current triggers.
func (l Lexicon) WithTriggers(triggers ...string) Lexicon {
	out := l.Clone()
	if len(triggers) == 0 {
		return out
	}
	out.Triggers = lowerAll(triggers)
	return out
}

// Clone deep-copies the lexicon.
func (l Lexicon) Clone() Lexicon {
	out := Lexicon{
		Triggers:         append([]string(nil), l.Triggers...),
		TriggerSuffixes:  append([]string(nil), l.TriggerSuffixes...),
		TriggerFollowers: append([]string(nil), l.TriggerFollowers...),
		Fillers:          append([]string(nil), l.Fillers...),
		Particles:        append([]string(nil), l.Particles...),
		Honorifics:       append([]string(nil), l.Honorifics...),
		Enclitics:        append([]string(nil), l.Enclitics...),
		Protected:        append([]string(nil), l.Protected...),
		StopWords:        append([]string(nil), l.StopWords...),
	}
	if l.Variants != nil {
		out.Variants = make(map[string][]string, len(l.Variants))
		for k, v := range l.Variants {
			out.Variants[k] = append([]string(nil), v...)
		}
	}
	return out
}

var triggerPattern = regexp.MustCompile(`^[\p{L}\p{N}]+(?: [\p{L}\p{N}]+)*$`)

// Validate reports every malformed entry at once.
func (l Lexicon) Validate() error {
	var errs []error

	if len(l.Triggers) == 0 {
		errs = append(errs, errors.New("trigger set is empty"))
	}
	for i, t := range l.Triggers {
		if err := validatePhrase(t); err != nil {
			errs = append(errs, fmt.Errorf("trigger %d %q: %w", i, t, err))
		}
	}
	for trigger, forms := range l.Variants {
		for _, form := range forms {
			if err := validatePhrase(form); err != nil {
				errs = append(errs, fmt.Errorf("variant %q of %q: %w", form, trigger, err))
			}
		}
	}
	for _, f := range l.Fillers {
		if _, err := regexp.Compile("^(?:" + f + ")$"); err != nil {
			errs = append(errs, fmt.Errorf("filler pattern %q: %w", f, err))
		}
	}
	for name, words := range map[string][]string{
		"trigger suffix":   l.TriggerSuffixes,
		"trigger follower": l.TriggerFollowers,
		"particle":         l.Particles,
		"honorific":        l.Honorifics,
		"enclitic":         l.Enclitics,
		"protected word":   l.Protected,
		"stop word":        l.StopWords,
	} {
		for _, w := range words {
			if w == "" || strings.ContainsFunc(w, unicode.IsSpace) {
				errs = append(errs, fmt.Errorf("%s %q must be a single non-empty token", name, w))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validatePhrase(p string) error {
	if p == "" {
		return errors.New("empty")
	}
	if p != strings.TrimSpace(p) {
		return errors.New("leading or trailing whitespace")
	}
	if p != strings.ToLower(p) {
		return errors.New("not lowercase")
	}
	if !triggerPattern.MatchString(p) {
		return errors.New("must be alphanumeric words separated by single spaces")
	}
	return nil
}

func (l Lexicon) normalized() Lexicon {
	out := l
	out.Triggers = lowerAll(l.Triggers)
	out.TriggerSuffixes = lowerAll(l.TriggerSuffixes)
	out.TriggerFollowers = lowerAll(l.TriggerFollowers)
	out.Particles = lowerAll(l.Particles)
	out.Honorifics = lowerAll(l.Honorifics)
	out.Enclitics = lowerAll(l.Enclitics)
	out.Protected = lowerAll(l.Protected)
	out.StopWords = lowerAll(l.StopWords)
	if l.Variants != nil {
		out.Variants = make(map[string][]string, len(l.Variants))
		for k, v := range l.Variants {
			out.Variants[strings.ToLower(strings.TrimSpace(k))] = lowerAll(v)
		}
	}
	return out
}

// lowerAll lowercases each entry. Surrounding whitespace is left in place
// so Validate can still report it for triggers.
func lowerAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Set builds a membership set from words.
func Set(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Marshal renders the lexicon as YAML.
func (l Lexicon) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}
