package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/flashrecall/internal/model"
)

type fakeSource struct {
	attempts []model.AttemptAggregate
	aggs     []model.WordAggregate
	lastCfg  model.StatsConfig
	err      error
}

func (f *fakeSource) ListAttempts(_ context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error) {
	f.lastCfg = cfg
	return f.attempts, f.err
}

func (f *fakeSource) ListWordAggregates(context.Context, []string) ([]model.WordAggregate, error) {
	return f.aggs, nil
}

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter(" Hard ", "2026-01-02", "5", "")
	require.NoError(t, err)
	assert.Equal(t, "hard", cfg.Difficulty)
	require.NotNil(t, cfg.Since)
	assert.Equal(t, 2026, cfg.Since.Year())
	assert.Equal(t, 5, cfg.Last)
	assert.Equal(t, 1, cfg.CurveWindow)

	_, err = parseFilter("extreme", "", "", "")
	assert.True(t, errors.Is(err, model.ErrUnknownDifficulty))
	_, err = parseFilter("", "yesterday", "", "")
	assert.Error(t, err)
	_, err = parseFilter("", "", "", "0")
	assert.Error(t, err)
}

func TestCurveWindowSteps(t *testing.T) {
	assert.Equal(t, 5, nextCurveWindow(1))
	assert.Equal(t, 10, nextCurveWindow(5))
	assert.Equal(t, 10, nextCurveWindow(7))
	assert.Equal(t, 1, prevCurveWindow(5))
	assert.Equal(t, 5, prevCurveWindow(7))
	assert.Equal(t, 10, prevCurveWindow(15))
}

func TestModelShowsWordsTab(t *testing.T) {
	src := &fakeSource{
		attempts: []model.AttemptAggregate{{AttemptID: "a", Matched: 2, Total: 3}},
		aggs:     []model.WordAggregate{{Word: "sat", Missing: 1}},
	}
	m := NewModel(src, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "Attempts")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	assert.Equal(t, tabWords, m.activeTab)
	assert.Contains(t, m.View(), "sat")
}

func TestModelFilterApplies(t *testing.T) {
	src := &fakeSource{}
	m := NewModel(src, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.True(t, m.filterMode)

	m.filterInputs[fieldDifficulty].SetValue("medium")
	m.filterInputs[fieldLast].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.filterMode)
	assert.Equal(t, "medium", src.lastCfg.Difficulty)
	assert.Equal(t, 3, m.cfg.Last)
	assert.True(t, strings.Contains(m.View(), "difficulty=medium"))
}

func TestModelShowsLoadError(t *testing.T) {
	m := NewModel(&fakeSource{err: errors.New("db locked")}, model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "db locked")
}
