package keyword

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchCandidate is one trigger occurrence inside a NormalizedText.
// Keyword extraction starts at End.
type MatchCandidate struct {
	Start   int
	End     int
	Matched string
	Trigger string
	Fuzzy   bool
}

type pattern struct {
	text    string
	trigger string
}

// buildPatterns expands every trigger into the forms that may introduce a
// keyword: the trigger and its spoken variants, each bare, with an attached
// suffix, or followed by a filler word.
func buildPatterns(triggers []string, variants map[string][]string, suffixes, followers []string) []pattern {
	var out []pattern
	for _, trigger := range triggers {
		forms := append([]string{trigger}, variants[trigger]...)
		for _, form := range forms {
			out = append(out, pattern{text: form, trigger: trigger})
			for _, s := range suffixes {
				out = append(out, pattern{text: form + s, trigger: trigger})
			}
			for _, f := range followers {
				out = append(out, pattern{text: form + " " + f, trigger: trigger})
			}
		}
	}
	return out
}

// Locate finds the trigger occurrence that introduces the keyword. Exact
// occurrences always win over fuzzy ones; within a phase the rightmost
// occurrence wins.
func (e *Extractor) Locate(text NormalizedText) (MatchCandidate, bool) {
	if c, ok := e.locateExact(text); ok {
		return c, true
	}
	return e.locateFuzzy(text)
}

func (e *Extractor) locateExact(text NormalizedText) (MatchCandidate, bool) {
	s := string(text)
	var best MatchCandidate
	found := false
	for _, p := range e.patterns {
		i := lastBoundedIndex(s, p.text)
		if i < 0 {
			continue
		}
		c := MatchCandidate{Start: i, End: i + len(p.text), Matched: p.text, Trigger: p.trigger}
		if !found || c.beats(best) {
			best, found = c, true
		}
	}
	return best, found
}

func (e *Extractor) locateFuzzy(text NormalizedText) (MatchCandidate, bool) {
	s := string(text)
	toks := tokenSpans(s)
	var best MatchCandidate
	found := false
	for i, trigger := range e.triggers {
		width := e.triggerWidths[i]
		minLen := min(e.opts.MinFuzzyLength, utf8.RuneCountInString(trigger)-1)
		for j := 0; j+width <= len(toks); j++ {
			start, end := trimToWord(s, toks[j].start, toks[j+width-1].end)
			if start >= end {
				continue
			}
			window := s[start:end]
			if utf8.RuneCountInString(window) < minLen {
				continue
			}
			if Similarity(window, trigger) < e.opts.FuzzyThreshold {
				continue
			}
			c := MatchCandidate{Start: start, End: end, Matched: window, Trigger: trigger, Fuzzy: true}
			if !found || c.beats(best) {
				best, found = c, true
			}
		}
	}
	return best, found
}

// beats orders candidates by start offset, then by length, so the choice
// does not depend on trigger order.
func (c MatchCandidate) beats(other MatchCandidate) bool {
	if c.Start != other.Start {
		return c.Start > other.Start
	}
	return c.End > other.End
}

// lastBoundedIndex returns the start of the last occurrence of p in s that
// sits on token boundaries, or -1.
func lastBoundedIndex(s, p string) int {
	if p == "" {
		return -1
	}
	limit := len(s)
	for limit >= len(p) {
		i := strings.LastIndex(s[:limit], p)
		if i < 0 {
			return -1
		}
		if leftBoundary(s, i) && rightBoundary(s, i+len(p)) {
			return i
		}
		limit = i + len(p) - 1
	}
	return -1
}

func leftBoundary(s string, i int) bool {
	return i == 0 || s[i-1] == ' '
}

func rightBoundary(s string, j int) bool {
	if j >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[j:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '\''
}

// trimToWord narrows s[start:end] to begin and end on word runes, so
// trailing marks such as '?' do not count against similarity.
func trimToWord(s string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(s[start:end])
		if isWordRune(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[start:end])
		if isWordRune(r) {
			break
		}
		end -= size
	}
	return start, end
}

type span struct {
	start, end int
}

// tokenSpans returns the byte ranges of space-separated tokens in s.
func tokenSpans(s string) []span {
	var out []span
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			if start >= 0 {
				out = append(out, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(s)})
	}
	return out
}
