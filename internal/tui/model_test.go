package tui

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/flashrecall/internal/generator"
	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/notes"
	"github.com/verte-zerg/flashrecall/internal/playback"
)

type fakeRecorder struct {
	attempts []model.AttemptStats
	history  []model.AttemptAggregate
}

func (f *fakeRecorder) InsertAttempt(_ context.Context, stats model.AttemptStats) (string, error) {
	f.attempts = append(f.attempts, stats)
	return "id", nil
}

func (f *fakeRecorder) ListAttempts(context.Context, model.StatsConfig) ([]model.AttemptAggregate, error) {
	return f.history, nil
}

func (f *fakeRecorder) GetWeakWords(context.Context, int, string) ([]model.WordAggregate, error) {
	return nil, nil
}

type fakeNoteSaver struct {
	saved [][]model.Category
}

func (f *fakeNoteSaver) SaveNotes(_ context.Context, categories []model.Category) error {
	f.saved = append(f.saved, categories)
	return nil
}

func newTestModel(t *testing.T, rec *fakeRecorder) *Model {
	t.Helper()
	return newTestModelWith(t, Deps{Recorder: rec})
}

func newTestModelWith(t *testing.T, deps Deps) *Model {
	t.Helper()
	cfg := model.Config{
		Difficulty:  model.DifficultySimple,
		Sentences:   2,
		Interval:    100 * time.Millisecond,
		Granularity: model.PerSentence,
		LastN:       1,
	}
	pool := []model.Sentence{{"the", "cat", "sat."}}
	deps.Gen = generator.NewWithSource(rand.NewSource(1))
	deps.Pool = pool
	m := NewModel(cfg, deps)
	if cmd := m.Init(); cmd == nil {
		t.Fatalf("expected playback to schedule a tick")
	}
	return m
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPlaybackRunsToFinish(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{})
	if strings.Join(m.current.Words, " ") != "the cat sat." {
		t.Fatalf("unexpected first reveal %v", m.current.Words)
	}
	m.Update(tickMsg{tick: m.pending})
	if m.player.Cursor().Sentence != 1 {
		t.Fatalf("expected second sentence, got cursor %+v", m.player.Cursor())
	}
	_, cmd := m.Update(tickMsg{tick: m.pending})
	if cmd != nil {
		t.Fatalf("expected no further tick after finish")
	}
	if !m.done || m.player.State() != playback.Finished {
		t.Fatalf("expected finished playback, state %s", m.player.State())
	}
}

func TestNewSessionInvalidatesOldTick(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{})
	stale := m.pending
	m.Update(key('n'))
	m.Update(tickMsg{tick: stale})
	if m.player.Cursor().Sentence != 0 {
		t.Fatalf("stale tick advanced the new run: %+v", m.player.Cursor())
	}
}

func TestPartialRecallScoresAndRecords(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, rec)
	m.Update(key('p'))
	if m.phase != phaseRecalling || m.recallLast != 1 {
		t.Fatalf("expected partial recall of 1 sentence, phase %d last %d", m.phase, m.recallLast)
	}
	m.input.SetValue("the cat sat")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.phase != phaseResult {
		t.Fatalf("expected result phase, got %d", m.phase)
	}
	if m.report.Matched != 3 || m.report.Total != 3 {
		t.Fatalf("unexpected report %+v", m.report)
	}
	if len(rec.attempts) != 1 {
		t.Fatalf("expected one recorded attempt, got %d", len(rec.attempts))
	}
	got := rec.attempts[0]
	if got.LastN != 1 || got.Sentences != 2 || got.Strategy != "positional" {
		t.Fatalf("unexpected attempt %+v", got)
	}
	if got.SessionID != m.session.ID {
		t.Fatalf("expected session id %q, got %q", m.session.ID, got.SessionID)
	}
}

func TestCancelRecallResumesPlayback(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{})
	m.Update(key('f'))
	m.Update(tickMsg{tick: m.pending})
	if m.player.Cursor().Sentence != 0 {
		t.Fatalf("playback advanced during recall")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.phase != phaseWatching {
		t.Fatalf("expected watching phase after cancel")
	}
	if cmd == nil {
		t.Fatalf("expected pending tick to be rescheduled")
	}
}

func TestCancelRecallWithTickInFlight(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{})
	inFlight := m.pending
	m.Update(key('f'))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Fatalf("cancel must not arm a second timer while the first is in flight")
	}
	m.Update(tickMsg{tick: inFlight})
	if m.player.Cursor().Sentence != 1 {
		t.Fatalf("expected one advance, got cursor %+v", m.player.Cursor())
	}
	m.Update(tickMsg{tick: inFlight})
	if m.player.Cursor().Sentence != 1 || m.player.State() != playback.WaitingInterval {
		t.Fatalf("duplicate tick advanced playback: cursor %+v state %s", m.player.Cursor(), m.player.State())
	}
}

func TestHeldTickFiresOnceAfterCancel(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{})
	held := m.pending
	m.Update(key('f'))
	m.Update(tickMsg{tick: held})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(tickMsg{tick: held})
	m.Update(tickMsg{tick: held})
	if m.player.Cursor().Sentence != 1 || m.done {
		t.Fatalf("held tick should advance exactly once, cursor %+v done %v", m.player.Cursor(), m.done)
	}
}

func TestAnnotateWordSavesNote(t *testing.T) {
	saver := &fakeNoteSaver{}
	book := notes.New()
	m := newTestModelWith(t, Deps{Recorder: &fakeRecorder{}, Notes: saver, Book: book})

	m.Update(key('a'))
	if m.phase != phaseAnnotating {
		t.Fatalf("expected annotating phase, got %d", m.phase)
	}
	if strings.Join(m.editor.words, " ") != "the cat sat" {
		t.Fatalf("unexpected candidates %v", m.editor.words)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.editor.inputs[fieldCategory].Value(); got != notes.DefaultCategories[0] {
		t.Fatalf("expected default category, got %q", got)
	}
	m.Update(tickMsg{tick: m.pending})
	if m.player.Cursor().Sentence != 0 {
		t.Fatalf("playback advanced while annotating")
	}

	m.editor.inputs[fieldCategory].SetValue("Objects")
	m.editor.inputs[fieldDesc].SetValue("whiskers")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseWatching || m.editor != nil {
		t.Fatalf("expected editor closed, phase %d", m.phase)
	}
	if cmd == nil {
		t.Fatalf("expected held tick to be re-armed")
	}
	category, desc, ok := book.Locate("cat")
	if !ok || category != "Objects" || desc != "whiskers" {
		t.Fatalf("note not stored: %q %q %v", category, desc, ok)
	}
	if len(saver.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(saver.saved))
	}
	if !strings.Contains(m.decorate(m.current.Words), "cat (whiskers)") {
		t.Fatalf("reveal not annotated: %s", m.decorate(m.current.Words))
	}
}

func TestAnnotatePeekedSentence(t *testing.T) {
	m := newTestModelWith(t, Deps{Recorder: &fakeRecorder{}})
	m.Update(key('s'))
	m.Update(key('a'))
	if m.editor == nil || len(m.editor.words) != 3 {
		t.Fatalf("expected peeked words as candidates")
	}
	m.editor.inputs[fieldDesc].SetValue("mat")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.peek, "the (mat)") {
		t.Fatalf("peek not re-rendered with note: %s", m.peek)
	}
}

func TestGranularityToggleAppliesToNextRun(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, rec)
	m.Update(key('w'))
	if out := m.renderFooter(); !strings.Contains(out, "sentence · 100ms (next word)") {
		t.Fatalf("footer should show running and next granularity: %s", out)
	}
	m.Update(key('p'))
	m.input.SetValue("the cat sat")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if rec.attempts[0].Granularity != model.PerSentence {
		t.Fatalf("attempt recorded with %s", rec.attempts[0].Granularity)
	}
	m.Update(key('n'))
	if m.player.Granularity() != model.PerWord {
		t.Fatalf("new run should use word granularity")
	}
}

func TestIntervalKeysClamp(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{})
	m.Update(key('-'))
	m.Update(key('-'))
	if m.config.Interval != playback.MinInterval || m.player.Interval() != playback.MinInterval {
		t.Fatalf("expected interval clamped to %s, got %s", playback.MinInterval, m.config.Interval)
	}
	m.Update(key('+'))
	if m.config.Interval != playback.MinInterval+intervalStep {
		t.Fatalf("unexpected interval %s", m.config.Interval)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	rec := &fakeRecorder{history: []model.AttemptAggregate{
		{AttemptID: "a", Matched: 1, Total: 4},
		{AttemptID: "b", Matched: 3, Total: 4},
	}}
	m := newTestModel(t, rec)
	out := m.renderFooter()
	for _, needle := range []string{"Sentence 1/2", "sentence · 100ms", "Last 75.0%", "All-time 50.0%"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("footer missing %q: %s", needle, out)
		}
	}
}
