package keyword

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores a against b in [0,1] as the share of the longer string
// left untouched by the edit distance between them.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	longest := max(la, lb)
	d := levenshtein.ComputeDistance(a, b)
	return float64(longest-d) / float64(longest)
}
