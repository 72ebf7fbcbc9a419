package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/notes"
)

// NoteSaver persists the notes book after an inline edit.
type NoteSaver interface {
	SaveNotes(ctx context.Context, categories []model.Category) error
}

const (
	fieldCategory = iota
	fieldDesc
)

// annotator edits the note of one word picked from the visible unit.
type annotator struct {
	words  []string
	index  int
	inputs []textinput.Model
	field  int
	back   phase
	err    string
}

func newAnnotateInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// annotateCandidates returns the note keys of the peeked sentence, or of the
// unit on stage when nothing is peeked.
func (m *Model) annotateCandidates() []string {
	source := m.peekWords
	if len(source) == 0 && m.shown {
		source = m.current.Words
	}
	var out []string
	for _, w := range source {
		if k := notes.Key(w); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func (m *Model) beginAnnotate() tea.Cmd {
	words := m.annotateCandidates()
	if len(words) == 0 {
		return nil
	}
	if m.book == nil {
		m.book = notes.New()
	}
	m.speaker.Stop()
	m.editor = &annotator{
		words: words,
		inputs: []textinput.Model{
			newAnnotateInput("Category: "),
			newAnnotateInput("Note: "),
		},
		back: m.phase,
	}
	m.phase = phaseAnnotating
	m.selectWord(0)
	return m.setEditorField(fieldDesc)
}

// selectWord moves the selection and prefills the inputs from an existing
// note, defaulting to the first category.
func (m *Model) selectWord(idx int) {
	e := m.editor
	count := len(e.words)
	e.index = (idx + count) % count
	e.err = ""
	category, desc, ok := m.book.Locate(e.words[e.index])
	if !ok {
		category = notes.DefaultCategories[0]
	}
	e.inputs[fieldCategory].SetValue(category)
	e.inputs[fieldDesc].SetValue(desc)
}

func (m *Model) setEditorField(idx int) tea.Cmd {
	e := m.editor
	count := len(e.inputs)
	e.field = (idx + count) % count
	var cmd tea.Cmd
	for i := range e.inputs {
		if i == e.field {
			cmd = e.inputs[i].Focus()
		} else {
			e.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) updateAnnotate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	switch msg.Type {
	case tea.KeyEsc:
		return m, m.endAnnotate()
	case tea.KeyEnter:
		if err := m.saveAnnotation(); err != nil {
			e.err = err.Error()
			return m, nil
		}
		return m, m.endAnnotate()
	case tea.KeyUp:
		m.selectWord(e.index - 1)
		return m, nil
	case tea.KeyDown:
		m.selectWord(e.index + 1)
		return m, nil
	case tea.KeyTab:
		return m, m.setEditorField(e.field + 1)
	case tea.KeyShiftTab:
		return m, m.setEditorField(e.field - 1)
	}
	var cmd tea.Cmd
	e.inputs[e.field], cmd = e.inputs[e.field].Update(msg)
	return m, cmd
}

func (m *Model) saveAnnotation() error {
	e := m.editor
	word := e.words[e.index]
	category := strings.TrimSpace(e.inputs[fieldCategory].Value())
	if err := m.book.Upsert(category, word, e.inputs[fieldDesc].Value()); err != nil {
		return err
	}
	if m.noteSaver == nil {
		return nil
	}
	if err := m.noteSaver.SaveNotes(context.Background(), m.book.Categories()); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}

func (m *Model) endAnnotate() tea.Cmd {
	back := m.editor.back
	m.editor = nil
	if m.peekWords != nil {
		m.peek = m.decorate(m.peekWords)
	}
	if back == phaseWatching {
		return m.resume()
	}
	m.phase = back
	return nil
}

func (m *Model) renderAnnotate() string {
	e := m.editor
	var b strings.Builder
	for i, w := range e.words {
		if i == e.index {
			b.WriteString(revealStyle.Render("> " + w))
		} else {
			b.WriteString(pendingStyle.Render("  " + w))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, input := range e.inputs {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	if e.err != "" {
		b.WriteString(incorrectStyle.Render(e.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(pendingStyle.Render("up/down word · tab field · enter save · esc cancel"))
	return b.String()
}
