package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/notes"
	"github.com/verte-zerg/flashrecall/internal/playback"
	"github.com/verte-zerg/flashrecall/internal/recall"
	"github.com/verte-zerg/flashrecall/internal/session"
	"github.com/verte-zerg/flashrecall/internal/speech"
	"github.com/verte-zerg/flashrecall/internal/tui"
)

// plainSink prints each reveal on its own line.
type plainSink struct {
	w       io.Writer
	book    *notes.Book
	speaker *speech.Speaker
	err     error
}

func (s *plainSink) Reveal(u playback.Unit) {
	words := make([]string, len(u.Words))
	for i, w := range u.Words {
		words[i] = w
		if s.book == nil {
			continue
		}
		if desc, ok := s.book.Lookup(w); ok {
			words[i] = notes.Annotate(w, desc)
		}
	}
	s.printf("%s\n", strings.Join(words, " "))
	if err := s.speaker.Say(strings.Join(u.Words, " ")); err != nil {
		logErrf("failed to speak: %v\n", err)
	}
}

func (s *plainSink) Finish() {
	s.printf("--\n")
}

func (s *plainSink) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

// runPlainDrill plays one session, reads a recall line from in and prints the
// scored report.
func runPlainDrill(ctx context.Context, in io.Reader, out io.Writer, cfg model.Config, deps tui.Deps) error {
	return runPlainDrillWith(ctx, in, out, cfg, deps, time.After)
}

func runPlainDrillWith(ctx context.Context, in io.Reader, out io.Writer, cfg model.Config, deps tui.Deps, after playback.AfterFunc) error {
	var seq []model.Sentence
	if cfg.FocusWeak && len(deps.WeakSet) > 0 {
		seq = deps.Gen.GenerateWeighted(deps.Pool, cfg.Sentences, deps.WeakSet, cfg.WeakFactor)
	} else {
		seq = deps.Gen.Generate(deps.Pool, cfg.Sentences)
	}
	sess := session.New(cfg.Difficulty, seq)
	if sess.Len() == 0 {
		return fmt.Errorf("no %s sentences to practice", cfg.Difficulty)
	}

	sink := &plainSink{w: out, book: deps.Book, speaker: deps.Speaker}
	player := playback.New(sink)
	tick, ok := player.Start(sess.Sequence, cfg.Granularity, cfg.Interval)
	if ok {
		if err := playback.Run(ctx, player, tick, after); err != nil {
			return err
		}
	}
	if sink.err != nil {
		return fmt.Errorf("failed to write output: %w", sink.err)
	}

	lastN := 0
	prompt := "Recall all sentences:"
	if cfg.LastN < sess.Len() {
		lastN = sess.ClampLastN(cfg.LastN)
		prompt = fmt.Sprintf("Recall the last %d sentence(s):", lastN)
	}
	if _, err := fmt.Fprintln(out, prompt); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	scanner := bufio.NewScanner(in)
	input := ""
	if scanner.Scan() {
		input = scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read recall: %w", err)
	}

	strategy := deps.Strategy
	if strategy == nil {
		strategy = recall.Default()
	}
	report := sess.Score(strategy, input, lastN)
	if err := printReport(out, report); err != nil {
		return err
	}

	if deps.Recorder == nil {
		return nil
	}
	attempt := model.AttemptStats{
		SessionID:   sess.ID,
		StartedAt:   sess.CreatedAt,
		ScoredAt:    time.Now(),
		Difficulty:  cfg.Difficulty,
		Granularity: cfg.Granularity,
		IntervalMs:  player.Interval().Milliseconds(),
		Sentences:   sess.Len(),
		LastN:       lastN,
		Strategy:    strategy.Name(),
		Report:      report,
	}
	if _, err := deps.Recorder.InsertAttempt(ctx, attempt); err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

func printReport(w io.Writer, report model.MatchReport) error {
	lines := []string{fmt.Sprintf("Recalled %d/%d words (%.1f%%)", report.Matched, report.Total, report.Accuracy()*100)}
	for _, d := range report.Discrepancies {
		lines = append(lines, fmt.Sprintf("  #%d %s", d.Position+1, d))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
