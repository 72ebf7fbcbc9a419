// Package playback drives the timed reveal of a sentence sequence.
//
// The Scheduler is cooperative: it never sleeps and never starts timers of its
// own. Start, Replay and Fire reveal at most one unit and hand back a Tick.
// The host event loop delivers that Tick to Fire once Interval has elapsed.
// Every Start or Replay bumps a generation counter, so ticks issued by an
// earlier run are ignored when they arrive. Each reveal also bumps a step
// counter, so a tick is honoured at most once.
package playback

import (
	"time"

	"github.com/verte-zerg/flashrecall/internal/model"
)

// MinInterval is the shortest accepted delay between two reveals.
const MinInterval = 50 * time.Millisecond

// State is the scheduler state.
type State int

// Scheduler states.
const (
	Idle State = iota
	RevealingUnit
	WaitingInterval
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RevealingUnit:
		return "revealing"
	case WaitingInterval:
		return "waiting"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Cursor points at the unit being revealed.
type Cursor struct {
	Sentence int
	Word     int
}

// Unit is one reveal step: a whole sentence or a single word of it.
type Unit struct {
	Cursor      Cursor
	Granularity model.Granularity
	Words       []string
}

// Sink receives reveal events in order.
type Sink interface {
	Reveal(u Unit)
	Finish()
}

// Tick is a pending resumption issued by the scheduler.
type Tick struct {
	gen  uint64
	step uint64
}

// Scheduler reveals one sequence at a time.
type Scheduler struct {
	sink        Sink
	seq         []model.Sentence
	granularity model.Granularity
	interval    time.Duration
	cursor      Cursor
	state       State
	gen         uint64
	step        uint64
}

// New returns an idle scheduler that reports to sink.
func New(sink Sink) *Scheduler {
	return &Scheduler{sink: sink, granularity: model.PerSentence, interval: time.Second}
}

// ClampInterval raises d to MinInterval.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// Start begins a new run over seq and reveals its first unit. Any tick from a
// previous run becomes stale. The returned bool is false when nothing is left
// to schedule.
func (s *Scheduler) Start(seq []model.Sentence, granularity model.Granularity, interval time.Duration) (Tick, bool) {
	s.gen++
	s.seq = seq
	s.granularity = granularity
	s.interval = ClampInterval(interval)
	s.cursor = Cursor{}
	return s.enter()
}

// Replay restarts from the sentence before the cursor, clamped at the first
// sentence. It does nothing before the first Start.
func (s *Scheduler) Replay() (Tick, bool) {
	if s.state == Idle {
		return Tick{}, false
	}
	s.gen++
	s.cursor = Cursor{Sentence: max(s.cursor.Sentence-1, 0)}
	return s.enter()
}

// Fire resumes the run that issued t. Stale or already fired ticks are no-ops.
func (s *Scheduler) Fire(t Tick) (Tick, bool) {
	if !s.Pending(t) {
		return Tick{}, false
	}
	if s.granularity == model.PerWord {
		s.cursor.Word++
	} else {
		s.cursor = Cursor{Sentence: s.cursor.Sentence + 1}
	}
	return s.enter()
}

// Pending reports whether t is the one tick the scheduler is waiting for.
func (s *Scheduler) Pending(t Tick) bool {
	return s.state == WaitingInterval && t.gen == s.gen && t.step == s.step
}

// SetInterval changes the delay used for the next scheduled tick.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.interval = ClampInterval(d)
}

// Interval returns the delay the host must wait before delivering a tick.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// State returns the current state.
func (s *Scheduler) State() State { return s.state }

// Cursor returns the current cursor.
func (s *Scheduler) Cursor() Cursor { return s.cursor }

// Granularity returns the granularity of the current run.
func (s *Scheduler) Granularity() model.Granularity { return s.granularity }

func (s *Scheduler) enter() (Tick, bool) {
	s.step++
	if !s.seek() {
		s.state = Finished
		s.cursor = Cursor{Sentence: len(s.seq)}
		if s.sink != nil {
			s.sink.Finish()
		}
		return Tick{}, false
	}
	s.state = RevealingUnit
	if s.sink != nil {
		s.sink.Reveal(s.unit())
	}
	s.state = WaitingInterval
	return Tick{gen: s.gen, step: s.step}, true
}

// seek moves the cursor forward past empty sentences and exhausted word
// positions. It reports whether a unit is available.
func (s *Scheduler) seek() bool {
	for s.cursor.Sentence < len(s.seq) {
		words := s.seq[s.cursor.Sentence]
		if len(words) > 0 && (s.granularity != model.PerWord || s.cursor.Word < len(words)) {
			return true
		}
		s.cursor = Cursor{Sentence: s.cursor.Sentence + 1}
	}
	return false
}

func (s *Scheduler) unit() Unit {
	words := s.seq[s.cursor.Sentence]
	u := Unit{Cursor: s.cursor, Granularity: s.granularity}
	if s.granularity == model.PerWord {
		u.Words = []string{words[s.cursor.Word]}
		return u
	}
	u.Words = append([]string(nil), words...)
	return u
}
