// Package tokens turns raw text into comparable tokens.
package tokens

import "strings"

// Normalize lowercases word and drops every character outside [a-z0-9].
// The result may be empty.
func Normalize(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range strings.ToLower(word) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Split breaks text on whitespace and returns the non-empty normalized tokens.
func Split(text string) []string {
	return FromWords(strings.Fields(text))
}

// FromWords normalizes an already split word sequence, dropping empty tokens.
func FromWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if tok := Normalize(w); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
