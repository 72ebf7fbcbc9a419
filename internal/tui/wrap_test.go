package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/notes"
)

func plainWords(words ...string) []styledWord {
	out := make([]styledWord, len(words))
	for i, w := range words {
		out[i] = styledWord{s: w, width: len(w)}
	}
	return out
}

func TestWrapWordsBreaksBeforeOverflow(t *testing.T) {
	got := wrapWords(plainWords("one", "two", "three"), 7)
	if got != "one two\nthree" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapWordsLongWordOwnLine(t *testing.T) {
	got := wrapWords(plainWords("a", "enormous", "b"), 4)
	if got != "a\nenormous\nb" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapWordsNoWidth(t *testing.T) {
	if got := wrapWords(plainWords("a", "b"), 0); got != "a b" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestBuildRevealWordsAnnotates(t *testing.T) {
	book := notes.New()
	if err := book.Add("People", "Xavier", "X-ray glasses"); err != nil {
		t.Fatalf("add note: %v", err)
	}
	words := buildRevealWords([]string{"Xavier", "runs."}, book)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].s != noteStyle.Render("Xavier (X-ray glasses)") {
		t.Fatalf("expected annotated word, got %q", words[0].s)
	}
	if words[1].s != revealStyle.Render("runs.") {
		t.Fatalf("expected plain reveal style, got %q", words[1].s)
	}
}

func TestBuildResultWordsMarksMisses(t *testing.T) {
	report := model.MatchReport{
		Matched: 1,
		Total:   3,
		Discrepancies: []model.Discrepancy{
			{Kind: model.Substitution, Position: 0, Expected: "the", Actual: "a"},
			{Kind: model.Missing, Position: 2, Expected: "sat"},
		},
	}
	words := buildResultWords([]string{"the", "cat", "sat"}, report)
	want := []string{incorrectStyle.Render("the"), correctStyle.Render("cat"), incorrectStyle.Render("sat")}
	for i := range want {
		if words[i].s != want[i] {
			t.Fatalf("word %d: expected %q, got %q", i, want[i], words[i].s)
		}
	}
	if !strings.Contains(renderWords(words), correctStyle.Render("cat")) {
		t.Fatalf("expected rendered line to contain styled word")
	}
}
