package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/notes"
)

type styledWord struct {
	s     string
	width int
}

func newStyledWord(text string, style func(...string) string) styledWord {
	return styledWord{s: style(text), width: runewidth.StringWidth(text)}
}

// buildRevealWords styles revealed words, appending the note of any word the
// book knows about.
func buildRevealWords(words []string, book *notes.Book) []styledWord {
	out := make([]styledWord, 0, len(words))
	for _, w := range words {
		if book != nil {
			if desc, ok := book.Lookup(w); ok {
				out = append(out, newStyledWord(notes.Annotate(w, desc), noteStyle.Render))
				continue
			}
		}
		out = append(out, newStyledWord(w, revealStyle.Render))
	}
	return out
}

// buildResultWords styles reference tokens by whether the recall got them.
func buildResultWords(reference []string, report model.MatchReport) []styledWord {
	missed := map[int]bool{}
	for _, d := range report.Discrepancies {
		if d.Kind == model.Missing || d.Kind == model.Substitution {
			missed[d.Position] = true
		}
	}
	out := make([]styledWord, 0, len(reference))
	for i, w := range reference {
		style := correctStyle.Render
		if missed[i] {
			style = incorrectStyle.Render
		}
		out = append(out, newStyledWord(w, style))
	}
	return out
}

func renderWords(words []styledWord) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.s
	}
	return strings.Join(parts, " ")
}

// wrapWords joins words with single spaces, breaking lines before a word that
// would overflow width. A word wider than width gets a line of its own.
func wrapWords(words []styledWord, width int) string {
	if width <= 0 {
		return renderWords(words)
	}
	var out strings.Builder
	line := make([]styledWord, 0, len(words))
	lineWidth := 0
	for _, w := range words {
		next := w.width
		if len(line) > 0 {
			next += lineWidth + 1
		}
		if next > width && len(line) > 0 {
			out.WriteString(renderWords(line))
			out.WriteRune('\n')
			line = line[:0]
			lineWidth = 0
			next = w.width
		}
		line = append(line, w)
		lineWidth = next
	}
	out.WriteString(renderWords(line))
	return out.String()
}
