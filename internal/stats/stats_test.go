package stats

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/flashrecall/internal/model"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{10, 20, 30, 40}, 2)
	want := []float64{10, 15, 25, 35}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	same := MovingAverage([]float64{1, 2}, 1)
	if same[0] != 1 || same[1] != 2 {
		t.Fatalf("expected unchanged values, got %v", same)
	}
}

func TestSparklineFlatAndRange(t *testing.T) {
	if got := Sparkline([]float64{5, 5, 5}); len(got) != 3 || got[0] != got[2] {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 100})
	if got[0] != ' ' || got[1] != '@' {
		t.Fatalf("expected min/max glyphs, got %q", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.AttemptAggregate{
		{Matched: 3, Total: 4},
		{Matched: 4, Total: 4},
		{Matched: 0, Total: 0},
	})
	if s.Attempts != 3 || s.Perfect != 1 || s.Words != 8 || s.Matched != 7 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.BestAccuracy != 1 {
		t.Fatalf("expected best accuracy 1, got %v", s.BestAccuracy)
	}
	if want := (0.75 + 1.0) / 3; s.AvgAccuracy != want {
		t.Fatalf("expected avg %v, got %v", want, s.AvgAccuracy)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No attempts found.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderWordTableSortsByErrors(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.WordAggregate{
		{Word: "cat", Missing: 1},
		{Word: "mat", Missing: 2, Substitutions: 1},
		{Word: "bat", Substitutions: 1},
	}
	if err := RenderWordTable(&buf, aggs); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title, header and 3 rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[2], "mat") {
		t.Fatalf("expected most missed word first, got %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "bat") || !strings.HasPrefix(lines[4], "cat") {
		t.Fatalf("expected ties sorted by word, got %q", lines[3:])
	}
}

func TestFormatTableAlignment(t *testing.T) {
	lines := formatTable([]string{"A", "N"}, [][]string{{"long", "5"}, {"x", "10"}}, map[int]bool{1: true})
	want := []string{
		"A     N",
		"long  5",
		"x    10",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestTopMissedAndWeakWords(t *testing.T) {
	aggs := []model.WordAggregate{
		{Word: "cat", Missing: 1},
		{Word: "mat", Missing: 3},
		{Word: "hat"},
	}
	top := TopMissedWords(aggs, 1)
	if len(top) != 1 || top[0] != "mat" {
		t.Fatalf("unexpected top words %v", top)
	}
	weak := SelectWeakWords(aggs, 0)
	if len(weak) != 2 {
		t.Fatalf("expected words with errors only, got %v", weak)
	}
	if _, ok := weak["hat"]; ok {
		t.Fatalf("word without errors must not be weak")
	}
}

func TestChartRendersRows(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, "Accuracy", []float64{0, 50, 100}, 10, 4, false); err != nil {
		t.Fatalf("chart: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "Accuracy" {
		t.Fatalf("expected title first, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], chartAxisTop) || !strings.HasPrefix(lines[4], chartAxisBottom) {
		t.Fatalf("expected axis labels, got %q", lines[1:5])
	}
	if !strings.Contains(lines[1], "█") {
		t.Fatalf("expected full block on top row for 100%%, got %q", lines[1])
	}
}

func TestResampleAverages(t *testing.T) {
	got := resample([]float64{0, 10, 20, 30}, 2)
	if len(got) != 2 || got[0] != 5 || got[1] != 25 {
		t.Fatalf("unexpected resample %v", got)
	}
}

type fakeSource struct {
	attempts []model.AttemptAggregate
	calls    [][]string
	err      error
}

func (f *fakeSource) ListAttempts(context.Context, model.StatsConfig) ([]model.AttemptAggregate, error) {
	return f.attempts, f.err
}

func (f *fakeSource) ListWordAggregates(_ context.Context, ids []string) ([]model.WordAggregate, error) {
	f.calls = append(f.calls, ids)
	return []model.WordAggregate{{Word: "w", Missing: len(ids)}}, nil
}

func TestBuildReportAppliesLastAndWindow(t *testing.T) {
	src := &fakeSource{attempts: []model.AttemptAggregate{
		{AttemptID: "a"}, {AttemptID: "b"}, {AttemptID: "c"}, {AttemptID: "d"},
	}}
	report, err := BuildReport(context.Background(), src, model.StatsConfig{Last: 3, CurveWindow: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 3 || report.Attempts[0].AttemptID != "b" {
		t.Fatalf("unexpected attempts %+v", report.Attempts)
	}
	if strings.Join(report.WindowAttemptIDs, ",") != "c,d" {
		t.Fatalf("unexpected window ids %v", report.WindowAttemptIDs)
	}
	if report.WordAggsAll[0].Missing != 3 || report.WordAggsWindow[0].Missing != 2 {
		t.Fatalf("unexpected aggregates %+v %+v", report.WordAggsAll, report.WordAggsWindow)
	}
}

func TestBuildReportPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := BuildReport(context.Background(), &fakeSource{err: boom}, model.StatsConfig{}); !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
}
