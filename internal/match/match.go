// Package match decides whether two tokens are close enough to count as the
// same word.
package match

import "github.com/antzucaro/matchr"

// Distance returns the Levenshtein distance between a and b. Transpositions
// count as two edits.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	return matchr.Levenshtein(a, b)
}

// Tolerance returns the largest distance accepted for tokens of length n.
func Tolerance(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 7:
		return 2
	default:
		return 3
	}
}

// IsMatch reports whether a and b are equal or within the tolerance of the
// longer token.
func IsMatch(a, b string) bool {
	if a == b {
		return true
	}
	return Distance(a, b) <= Tolerance(max(len(a), len(b)))
}
