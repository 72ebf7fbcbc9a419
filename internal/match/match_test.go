package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"teh", "the", 2},
		{"book", "books", 1},
		{"river", "river", 0},
		{"flaw", "lawn", 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Distance(tc.a, tc.b), "Distance(%q, %q)", tc.a, tc.b)
	}
}

func TestDistanceIdentityAndSymmetry(t *testing.T) {
	words := []string{"", "a", "cat", "catches", "although", "station", "xavier", "b2b"}
	for _, a := range words {
		assert.Zero(t, Distance(a, a), "Distance(%q, %q)", a, a)
		for _, b := range words {
			assert.Equal(t, Distance(a, b), Distance(b, a), "symmetry for %q/%q", a, b)
		}
	}
}

func TestTolerance(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 4: 1, 5: 2, 7: 2, 8: 3, 20: 3}
	for n, want := range cases {
		assert.Equal(t, want, Tolerance(n), "Tolerance(%d)", n)
	}
}

func TestIsMatch(t *testing.T) {
	for _, w := range []string{"a", "cat", "station", "although"} {
		assert.True(t, IsMatch(w, w), "IsMatch(%q, %q)", w, w)
	}
	assert.False(t, IsMatch("teh", "the"))
	assert.True(t, IsMatch("cat", "cats"))
	assert.True(t, IsMatch("climbs", "climb"))
	assert.True(t, IsMatch("station", "staton"))
	assert.False(t, IsMatch("dog", "cat"))
}

func TestIsMatchUsesLongerLength(t *testing.T) {
	// "a" against a 5 letter word: tolerance comes from the longer token (2),
	// but the distance is 4.
	assert.False(t, IsMatch("a", "apple"))
	// "car" vs "cards": distance 2, longer length 5 tolerates 2.
	assert.True(t, IsMatch("car", "cards"))
	assert.True(t, IsMatch("cards", "car"))
}
