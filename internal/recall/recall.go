// Package recall scores free-form recall text against a reference word
// sequence.
package recall

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/flashrecall/internal/match"
	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/tokens"
)

// ErrUnknownStrategy is returned by ByName for unrecognized strategy names.
var ErrUnknownStrategy = errors.New("unknown scoring strategy")

// Strategy scores recall text against reference words. Reference entries may
// be raw words; they are normalized before comparison.
type Strategy interface {
	Name() string
	Score(input string, reference []string) model.MatchReport
}

// Strategy names accepted by ByName.
const (
	NamePositional  = "positional"
	NameContainment = "containment"
)

// Default returns the positional strategy.
func Default() Strategy {
	return Positional{}
}

// ByName resolves a strategy from configuration. An empty name selects the
// default.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NamePositional:
		return Positional{}, nil
	case NameContainment:
		return Containment{}, nil
	default:
		return nil, fmt.Errorf("%w %q (expected %s or %s)", ErrUnknownStrategy, name, NamePositional, NameContainment)
	}
}

// Positional compares the i-th input token with the i-th reference token.
// Word order and omissions therefore show up as discrepancies.
type Positional struct{}

// Name implements Strategy.
func (Positional) Name() string { return NamePositional }

// Score implements Strategy.
func (Positional) Score(input string, reference []string) model.MatchReport {
	in := tokens.Split(input)
	ref := tokens.FromWords(reference)
	report := model.MatchReport{Total: len(ref)}

	n := max(len(in), len(ref))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(in):
			report.Discrepancies = append(report.Discrepancies, model.Discrepancy{
				Kind:     model.Missing,
				Position: i,
				Expected: ref[i],
			})
		case i >= len(ref):
			report.Discrepancies = append(report.Discrepancies, model.Discrepancy{
				Kind:     model.Extra,
				Position: i,
				Actual:   in[i],
			})
		case match.IsMatch(in[i], ref[i]):
			report.Matched++
		default:
			report.Discrepancies = append(report.Discrepancies, model.Discrepancy{
				Kind:     model.Substitution,
				Position: i,
				Expected: ref[i],
				Actual:   in[i],
			})
		}
	}
	return report
}

// Containment accepts an input token when it, its singular or its plural form
// matches any reference token, regardless of position. Unmatched input tokens
// are reported as extra; missing reference words are not reported.
type Containment struct{}

// Name implements Strategy.
func (Containment) Name() string { return NameContainment }

// Score implements Strategy.
func (Containment) Score(input string, reference []string) model.MatchReport {
	in := tokens.Split(input)
	ref := tokens.FromWords(reference)
	report := model.MatchReport{Total: len(ref)}

	for i, tok := range in {
		if containsAny(ref, pluralCandidates(tok)) {
			report.Matched++
			continue
		}
		report.Discrepancies = append(report.Discrepancies, model.Discrepancy{
			Kind:     model.Extra,
			Position: i,
			Actual:   tok,
		})
	}
	if report.Matched > report.Total {
		report.Matched = report.Total
	}
	return report
}

func pluralCandidates(tok string) []string {
	out := []string{tok}
	if trimmed := strings.TrimSuffix(tok, "s"); trimmed != tok && trimmed != "" {
		out = append(out, trimmed)
	}
	return append(out, tok+"s")
}

func containsAny(ref, candidates []string) bool {
	for _, cand := range candidates {
		for _, r := range ref {
			if r == cand {
				return true
			}
		}
	}
	for _, cand := range candidates {
		for _, r := range ref {
			if match.IsMatch(r, cand) {
				return true
			}
		}
	}
	return false
}
