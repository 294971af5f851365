package keyword

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Clean turns the text following c into a compact keyword. It reports
// false when nothing meaningful remains.
func (e *Extractor) Clean(text NormalizedText, c MatchCandidate) (string, bool) {
	if c.End < 0 || c.End > len(text) {
		return "", false
	}

	rest := strings.TrimSpace(string(text[c.End:]))
	rest = replaceTokens(rest, e.isParticle)
	if i := strings.IndexAny(rest, "?!."); i >= 0 {
		rest = rest[:i]
	}

	kept := make([]string, 0, e.opts.MaxTokens)
	for _, tok := range strings.Fields(rest) {
		tok = e.cleanToken(tok)
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, stop := e.stopWords[tok]; stop {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == e.opts.MaxTokens {
			break
		}
	}

	candidate := strings.Join(kept, " ")
	if !validKeyword(candidate) {
		return "", false
	}
	return candidate, true
}

func (e *Extractor) isParticle(tok string) bool {
	_, ok := e.particles[tok]
	return ok
}

func (e *Extractor) cleanToken(tok string) string {
	tok = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return -1
	}, tok)
	tok = strings.Trim(tok, "-")

	if _, ok := e.honorifics[tok]; ok {
		return ""
	}
	return e.stripEnclitic(tok)
}

// stripEnclitic removes one trailing enclitic, attached ("sepatunya") or
// hyphenated ("sepatu-nya"), unless the stem would become too short.
func (e *Extractor) stripEnclitic(tok string) string {
	if _, ok := e.protected[tok]; ok {
		return tok
	}
	for _, enc := range e.enclitics {
		stem, ok := strings.CutSuffix(tok, enc)
		if !ok {
			continue
		}
		stem = strings.TrimSuffix(stem, "-")
		if utf8.RuneCountInString(stem) < e.opts.MinStemLength {
			continue
		}
		return stem
	}
	return tok
}

func validKeyword(k string) bool {
	if utf8.RuneCountInString(k) < 2 {
		return false
	}
	return strings.ContainsFunc(k, unicode.IsLetter)
}
