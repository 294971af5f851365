package keyword

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizedText is lowercased transcript text with single spaces between
// tokens and exactly one sentinel space at each end.
type NormalizedText string

// Trimmed returns the text without its sentinel spaces.
func (t NormalizedText) Trimmed() string {
	return strings.TrimSpace(string(t))
}

// wordRun matches a token: letters, digits and underscores, optionally
// joined by embedded hyphens or apostrophes.
var wordRun = regexp.MustCompile(`[\p{L}\p{N}_]+(?:['-][\p{L}\p{N}_]+)*`)

var sentencePunct = strings.NewReplacer(".", " ", ",", " ", "!", " ", ";", " ", ":", " ")

// Normalize lowercases raw, drops filler interjections, neutralizes
// sentence punctuation and collapses whitespace. It reports false when
// nothing is left.
func (e *Extractor) Normalize(raw string) (NormalizedText, bool) {
	s := cases.Lower(language.Und).String(raw)
	s = replaceTokens(s, e.filler.MatchString)
	s = sentencePunct.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", false
	}
	return NormalizedText(" " + s + " "), true
}

// replaceTokens blanks every whole token for which drop reports true.
func replaceTokens(s string, drop func(string) bool) string {
	return wordRun.ReplaceAllStringFunc(s, func(tok string) string {
		if drop(tok) {
			return " "
		}
		return tok
	})
}

func compileFillers(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return regexp.Compile(`$.^`)
	}
	return regexp.Compile("^(?:" + strings.Join(patterns, "|") + ")$")
}
