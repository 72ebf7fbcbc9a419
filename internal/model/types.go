// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownDifficulty is returned when a difficulty band name is not recognized.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ErrUnknownGranularity is returned when a playback granularity is not recognized.
var ErrUnknownGranularity = errors.New("unknown granularity")

// Difficulty names a band of the sentence pool.
type Difficulty string

// Difficulty bands.
const (
	DifficultySimple Difficulty = "simple"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the known bands in pool order.
var Difficulties = []Difficulty{DifficultySimple, DifficultyMedium, DifficultyHard}

// ParseDifficulty parses a band name case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w %q (expected simple, medium or hard)", ErrUnknownDifficulty, s)
}

// Granularity selects what one playback unit is.
type Granularity string

// Playback granularities.
const (
	PerSentence Granularity = "sentence"
	PerWord     Granularity = "word"
)

// ParseGranularity parses a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sentence", "per-sentence", "persentence":
		return PerSentence, nil
	case "word", "per-word", "perword":
		return PerWord, nil
	default:
		return "", fmt.Errorf("%w %q (expected sentence or word)", ErrUnknownGranularity, s)
	}
}

// Sentence is an ordered sequence of words as authored, punctuation included.
type Sentence []string

// Text joins the words with single spaces.
func (s Sentence) Text() string {
	return strings.Join(s, " ")
}

// Config defines practice settings.
type Config struct {
	Difficulty  Difficulty
	Sentences   int
	Interval    time.Duration
	Granularity Granularity
	LastN       int
	Strategy    string
	PoolPath    string
	Speech      bool
	SpeechCmd   string
	FocusWeak   bool
	WeakTop     int
	WeakFactor  float64
	WeakWindow  int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Difficulty  string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// DiscrepancyKind classifies one difference between recall and reference.
type DiscrepancyKind string

// Discrepancy kinds.
const (
	Substitution DiscrepancyKind = "substitution"
	Missing      DiscrepancyKind = "missing"
	Extra        DiscrepancyKind = "extra"
)

// Discrepancy describes one mismatch found while scoring. Expected is empty
// for extra tokens, Actual is empty for missing ones.
type Discrepancy struct {
	Kind     DiscrepancyKind
	Position int
	Expected string
	Actual   string
}

// String renders the discrepancy for display.
func (d Discrepancy) String() string {
	switch d.Kind {
	case Substitution:
		return fmt.Sprintf("%s → %s", d.Expected, d.Actual)
	case Missing:
		return fmt.Sprintf("missing %s", d.Expected)
	case Extra:
		return fmt.Sprintf("extra %s", d.Actual)
	default:
		return string(d.Kind)
	}
}

// MatchReport is the result of scoring one recall attempt.
type MatchReport struct {
	Matched       int
	Total         int
	Discrepancies []Discrepancy
}

// Accuracy returns Matched/Total, or 0 when there is nothing to score.
func (r MatchReport) Accuracy() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Matched) / float64(r.Total)
}

// AttemptStats captures a scored recall attempt.
type AttemptStats struct {
	ID          string
	SessionID   string
	StartedAt   time.Time
	ScoredAt    time.Time
	Difficulty  Difficulty
	Granularity Granularity
	IntervalMs  int64
	Sentences   int
	LastN       int
	Strategy    string
	Report      MatchReport
}

// AttemptAggregate summarizes an attempt for reporting.
type AttemptAggregate struct {
	AttemptID string
	ScoredAt  time.Time
	Matched   int
	Total     int
	LastN     int
}

// WordAggregate aggregates discrepancies per expected word across attempts.
type WordAggregate struct {
	Word          string
	Missing       int
	Substitutions int
}

// Note is a mnemonic annotation for a word.
type Note struct {
	Word string `json:"word" yaml:"word" validate:"required,max=200"`
	Desc string `json:"desc" yaml:"desc" validate:"max=2000"`
}

// Category groups notes under a name.
type Category struct {
	Name  string
	Notes []Note
}
