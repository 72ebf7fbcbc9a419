// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/flashrecall/internal/generator"
	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/notes"
	"github.com/verte-zerg/flashrecall/internal/playback"
	"github.com/verte-zerg/flashrecall/internal/recall"
	"github.com/verte-zerg/flashrecall/internal/session"
	"github.com/verte-zerg/flashrecall/internal/speech"
	statsPkg "github.com/verte-zerg/flashrecall/internal/stats"
)

// intervalStep is the amount +/- change the reveal interval by.
const intervalStep = 100 * time.Millisecond

// Recorder persists scored attempts and serves the history the UI needs.
type Recorder interface {
	InsertAttempt(ctx context.Context, stats model.AttemptStats) (string, error)
	ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error)
	GetWeakWords(ctx context.Context, window int, difficulty string) ([]model.WordAggregate, error)
}

type phase int

const (
	phaseWatching phase = iota
	phaseRecalling
	phaseResult
	phaseAnnotating
)

type tickMsg struct {
	tick playback.Tick
}

// Deps bundles the collaborators of the practice UI. Book, Notes and Speaker
// are optional.
type Deps struct {
	Recorder Recorder
	Notes    NoteSaver
	Gen      *generator.Generator
	Pool     []model.Sentence
	Book     *notes.Book
	Speaker  *speech.Speaker
	Strategy recall.Strategy
	WeakSet  map[string]struct{}
}

// Model implements the Bubble Tea practice UI and the playback sink.
type Model struct {
	config    model.Config
	recorder  Recorder
	noteSaver NoteSaver
	gen       *generator.Generator
	pool      []model.Sentence
	book      *notes.Book
	speaker   *speech.Speaker
	strategy  recall.Strategy
	weakSet   map[string]struct{}

	weakNoticePrinted bool

	width  int
	height int

	player  *playback.Scheduler
	session *session.Session
	phase   phase
	current playback.Unit
	pending playback.Tick
	held    bool
	shown   bool
	done    bool
	peek    string

	peekWords []string
	editor    *annotator

	input      textarea.Model
	recallLast int
	report     model.MatchReport
	reference  []string

	lastAcc  float64
	hasLast  bool
	allMatch int
	allTotal int
}

var (
	revealStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	noteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a practice TUI model. A new session is generated
// immediately and playback starts from Init.
func NewModel(cfg model.Config, deps Deps) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type what you remember, enter to submit, esc to cancel"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	m := &Model{
		config:    cfg,
		recorder:  deps.Recorder,
		noteSaver: deps.Notes,
		gen:       deps.Gen,
		pool:      deps.Pool,
		book:      deps.Book,
		speaker:   deps.Speaker,
		strategy:  deps.Strategy,
		weakSet:   deps.WeakSet,
		input:     ta,
	}
	if m.gen == nil {
		m.gen = generator.New()
	}
	if m.strategy == nil {
		m.strategy = recall.Default()
	}
	m.player = playback.New(m)
	m.newSession()
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.start()
}

// Reveal implements playback.Sink.
func (m *Model) Reveal(u playback.Unit) {
	m.current = u
	m.shown = true
	m.done = false
	if err := m.speaker.Say(strings.Join(u.Words, " ")); err != nil {
		logErrf("failed to speak: %v\n", err)
	}
}

// Finish implements playback.Sink.
func (m *Model) Finish() {
	m.done = true
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(m.contentWidth(), 10))
		return m, nil
	case tickMsg:
		// A tick arriving off stage is held and re-armed on return.
		if m.phase != phaseWatching {
			if m.player.Pending(msg.tick) {
				m.held = true
			}
			return m, nil
		}
		next, ok := m.player.Fire(msg.tick)
		if !ok {
			return m, nil
		}
		return m, m.schedule(next)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.speaker.Stop()
			return m, tea.Quit
		}
		switch m.phase {
		case phaseRecalling:
			return m.updateRecall(msg)
		case phaseAnnotating:
			return m.updateAnnotate(msg)
		}
		return m.handleKey(msg)
	default:
		switch m.phase {
		case phaseRecalling:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		case phaseAnnotating:
			var cmd tea.Cmd
			e := m.editor
			e.inputs[e.field], cmd = e.inputs[e.field].Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return m, nil
	}
	switch msg.Runes[0] {
	case 'q':
		m.speaker.Stop()
		return m, tea.Quit
	case 'n':
		m.newSession()
		return m, m.start()
	case 'r':
		m.phase = phaseWatching
		m.clearPeek()
		next, ok := m.player.Replay()
		if !ok {
			return m, nil
		}
		return m, m.schedule(next)
	case 's':
		if last, ok := m.session.LastSentence(); ok {
			m.peekWords = last
			m.peek = m.decorate(last)
		}
		return m, nil
	case 'a':
		return m, m.beginAnnotate()
	case 'f':
		return m, m.beginRecall(0)
	case 'p':
		return m, m.beginRecall(m.config.LastN)
	case 'w':
		if m.config.Granularity == model.PerWord {
			m.config.Granularity = model.PerSentence
		} else {
			m.config.Granularity = model.PerWord
		}
		return m, nil
	case '+', '=':
		m.setInterval(m.config.Interval + intervalStep)
		return m, nil
	case '-', '_':
		m.setInterval(m.config.Interval - intervalStep)
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) updateRecall(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.input.Reset()
		return m, m.resume()
	case tea.KeyEnter:
		m.submitRecall(m.input.Value())
		m.input.Blur()
		m.input.Reset()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setInterval(d time.Duration) {
	d = playback.ClampInterval(d)
	m.config.Interval = d
	m.player.SetInterval(d)
}

// resume returns to the stage and re-arms the tick held while away. A tick
// still in flight is left alone so only one timer drives the run.
func (m *Model) resume() tea.Cmd {
	m.phase = phaseWatching
	if !m.held || !m.player.Pending(m.pending) {
		return nil
	}
	return m.schedule(m.pending)
}

func (m *Model) clearPeek() {
	m.peek = ""
	m.peekWords = nil
}

func (m *Model) start() tea.Cmd {
	m.phase = phaseWatching
	m.clearPeek()
	m.shown = false
	next, ok := m.player.Start(m.session.Sequence, m.config.Granularity, m.config.Interval)
	if !ok {
		return nil
	}
	return m.schedule(next)
}

func (m *Model) schedule(t playback.Tick) tea.Cmd {
	m.pending = t
	m.held = false
	return tea.Tick(m.player.Interval(), func(time.Time) tea.Msg {
		return tickMsg{tick: t}
	})
}

func (m *Model) newSession() {
	var seq []model.Sentence
	if m.config.FocusWeak && len(m.weakSet) > 0 {
		seq = m.gen.GenerateWeighted(m.pool, m.config.Sentences, m.weakSet, m.config.WeakFactor)
	} else {
		seq = m.gen.Generate(m.pool, m.config.Sentences)
	}
	m.session = session.New(m.config.Difficulty, seq)
	m.report = model.MatchReport{}
	m.reference = nil
}

func (m *Model) beginRecall(lastN int) tea.Cmd {
	if m.session.Len() == 0 {
		return nil
	}
	m.speaker.Stop()
	m.phase = phaseRecalling
	m.clearPeek()
	m.recallLast = 0
	if lastN != 0 {
		m.recallLast = m.session.ClampLastN(lastN)
	}
	m.input.Reset()
	return m.input.Focus()
}

func (m *Model) submitRecall(text string) {
	m.report = m.session.Score(m.strategy, text, m.recallLast)
	if m.recallLast == 0 {
		m.reference = m.session.FullReference()
	} else {
		m.reference, _ = m.session.LastReference(m.recallLast)
	}
	m.phase = phaseResult
	m.recordAttempt()
}

func (m *Model) recordAttempt() {
	m.lastAcc = m.report.Accuracy()
	m.hasLast = true
	m.allMatch += m.report.Matched
	m.allTotal += m.report.Total

	if m.recorder == nil {
		return
	}
	stats := model.AttemptStats{
		SessionID:   m.session.ID,
		StartedAt:   m.session.CreatedAt,
		ScoredAt:    time.Now(),
		Difficulty:  m.config.Difficulty,
		Granularity: m.player.Granularity(),
		IntervalMs:  m.config.Interval.Milliseconds(),
		Sentences:   m.session.Len(),
		LastN:       m.recallLast,
		Strategy:    m.strategy.Name(),
		Report:      m.report,
	}
	ctx := context.Background()
	if _, err := m.recorder.InsertAttempt(ctx, stats); err != nil {
		logErrf("failed to save attempt: %v\n", err)
	}
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) refreshWeakSet() {
	ctx := context.Background()
	aggs, err := m.recorder.GetWeakWords(ctx, m.config.WeakWindow, string(m.config.Difficulty))
	if err != nil {
		logErrf("failed to load weak words: %v\n", err)
		return
	}
	if len(aggs) == 0 {
		if !m.weakNoticePrinted {
			logErrln("no stats available for weak-word focus yet; using normal generator")
			m.weakNoticePrinted = true
		}
		m.weakSet = map[string]struct{}{}
		return
	}
	m.weakSet = statsPkg.SelectWeakWords(aggs, m.config.WeakTop)
}

func (m *Model) loadFooterStats() {
	if m.recorder == nil {
		return
	}
	ctx := context.Background()
	attempts, err := m.recorder.ListAttempts(ctx, model.StatsConfig{Difficulty: string(m.config.Difficulty)})
	if err != nil {
		logErrf("failed to load attempt stats: %v\n", err)
		return
	}
	if len(attempts) == 0 {
		return
	}
	last := attempts[len(attempts)-1]
	m.lastAcc = statsPkg.AttemptAccuracy(last.Matched, last.Total)
	m.hasLast = true
	for _, a := range attempts {
		m.allMatch += a.Matched
		m.allTotal += a.Total
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.phase {
	case phaseRecalling:
		content = m.recallPrompt() + "\n\n" + m.input.View()
	case phaseResult:
		content = m.renderResult()
	case phaseAnnotating:
		content = m.renderAnnotate()
	default:
		content = m.renderStage()
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	content = lipgloss.NewStyle().Width(m.contentWidth()).Render(content)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) renderStage() string {
	if m.session.Len() == 0 {
		return pendingStyle.Render("The sentence pool is empty for this difficulty.")
	}
	var b strings.Builder
	switch {
	case m.shown && !m.done:
		b.WriteString(m.decorate(m.current.Words))
	case m.done:
		b.WriteString(pendingStyle.Render("Playback finished. f full recall · p last sentences · r replay · n new"))
	default:
		b.WriteString(pendingStyle.Render("Get ready..."))
	}
	if m.peek != "" {
		b.WriteString("\n\n")
		b.WriteString(m.peek)
	}
	return b.String()
}

func (m *Model) recallPrompt() string {
	if m.recallLast == 0 {
		return fmt.Sprintf("Recall all %d sentences", m.session.Len())
	}
	if m.recallLast == 1 {
		return "Recall the last sentence"
	}
	return fmt.Sprintf("Recall the last %d sentences", m.recallLast)
}

func (m *Model) renderResult() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recalled %d/%d words (%.1f%%)\n\n", m.report.Matched, m.report.Total, m.report.Accuracy()*100)
	b.WriteString(wrapWords(buildResultWords(m.reference, m.report), m.contentWidth()))
	if len(m.report.Discrepancies) > 0 {
		b.WriteString("\n\n")
		lines := make([]string, 0, len(m.report.Discrepancies))
		for _, d := range m.report.Discrepancies {
			lines = append(lines, d.String())
		}
		b.WriteString(incorrectStyle.Render(strings.Join(lines, " · ")))
	}
	b.WriteString("\n\n")
	b.WriteString(pendingStyle.Render("n new · r replay · f/p recall again · q quit"))
	return b.String()
}

func (m *Model) decorate(words []string) string {
	return wrapWords(buildRevealWords(words, m.book), m.contentWidth())
}

func (m *Model) renderFooter() string {
	pos := m.player.Cursor().Sentence + 1
	pos = min(pos, m.session.Len())
	segments := []string{
		fmt.Sprintf("Sentence %d/%d", pos, m.session.Len()),
		m.renderPace(),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%%", m.lastAcc*100))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f%%", statsPkg.AttemptAccuracy(m.allMatch, m.allTotal)*100))
	return footerStyle.Render(strings.Join(segments, "  "))
}

// renderPace shows the granularity of the running playback and, after w,
// the one the next run will use.
func (m *Model) renderPace() string {
	current := m.player.Granularity()
	out := fmt.Sprintf("%s · %dms", current, m.config.Interval.Milliseconds())
	if m.config.Granularity != current {
		out += fmt.Sprintf(" (next %s)", m.config.Granularity)
	}
	return out
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
