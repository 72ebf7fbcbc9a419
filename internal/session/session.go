// Package session holds the state of one practice session: the generated
// sentence sequence and the helpers that build scoring references from it.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/recall"
	"github.com/verte-zerg/flashrecall/internal/tokens"
)

// Session is an immutable generated sequence. Regenerating creates a new
// Session rather than editing an existing one.
type Session struct {
	ID         string
	Difficulty model.Difficulty
	Sequence   []model.Sentence
	CreatedAt  time.Time
}

// New wraps a generated sequence in a Session.
func New(difficulty model.Difficulty, sequence []model.Sentence) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Difficulty: difficulty,
		Sequence:   sequence,
		CreatedAt:  time.Now(),
	}
}

// Len returns the number of sentences in the session. A nil session is empty.
func (s *Session) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Sequence)
}

// FullReference returns the tokens of every sentence in generation order.
func (s *Session) FullReference() []string {
	if s.Len() == 0 {
		return nil
	}
	return flatten(s.Sequence)
}

// ClampLastN clamps n to [1, Len()]. It returns 0 for an empty session.
func (s *Session) ClampLastN(n int) int {
	size := s.Len()
	if size == 0 {
		return 0
	}
	if n < 1 {
		return 1
	}
	if n > size {
		return size
	}
	return n
}

// LastReference returns the tokens of the trailing n sentences together with
// the effective n after clamping.
func (s *Session) LastReference(n int) ([]string, int) {
	n = s.ClampLastN(n)
	if n == 0 {
		return nil, 0
	}
	return flatten(s.Sequence[len(s.Sequence)-n:]), n
}

// Score scores input against the whole session when lastN is 0, or against
// the trailing lastN sentences otherwise. An empty session yields the zero
// report.
func (s *Session) Score(strategy recall.Strategy, input string, lastN int) model.MatchReport {
	if s.Len() == 0 {
		return model.MatchReport{}
	}
	if strategy == nil {
		strategy = recall.Default()
	}
	ref := s.FullReference()
	if lastN != 0 {
		ref, _ = s.LastReference(lastN)
	}
	return strategy.Score(input, ref)
}

// LastSentence returns the final sentence of the sequence, if any.
func (s *Session) LastSentence() (model.Sentence, bool) {
	if s.Len() == 0 {
		return nil, false
	}
	return s.Sequence[len(s.Sequence)-1], true
}

func flatten(sentences []model.Sentence) []string {
	var out []string
	for _, sentence := range sentences {
		out = append(out, tokens.FromWords(sentence)...)
	}
	return out
}
