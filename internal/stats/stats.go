// Package stats contains recall statistics and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/flashrecall/internal/model"
)

const sparkChars = " .:-=+*#%@"

// AttemptAccuracy returns matched/total, or 0 for an empty reference.
func AttemptAccuracy(matched, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Summary holds headline numbers for a set of attempts.
type Summary struct {
	Attempts     int
	Words        int
	Matched      int
	AvgAccuracy  float64
	BestAccuracy float64
	Perfect      int
}

// Summarize computes headline numbers for attempts.
func Summarize(attempts []model.AttemptAggregate) Summary {
	s := Summary{Attempts: len(attempts)}
	if len(attempts) == 0 {
		return s
	}
	var totalAcc float64
	for _, a := range attempts {
		acc := AttemptAccuracy(a.Matched, a.Total)
		totalAcc += acc
		if acc > s.BestAccuracy {
			s.BestAccuracy = acc
		}
		if a.Total > 0 && a.Matched == a.Total {
			s.Perfect++
		}
		s.Words += a.Total
		s.Matched += a.Matched
	}
	s.AvgAccuracy = totalAcc / float64(len(attempts))
	return s
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, attempts []model.AttemptAggregate) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", s.Attempts),
		fmt.Sprintf("Words recalled: %d/%d", s.Matched, s.Words),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", s.BestAccuracy*100),
		fmt.Sprintf("Perfect recalls: %d", s.Perfect),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// AccuracySeries returns per-attempt accuracy in percent, smoothed over window.
func AccuracySeries(attempts []model.AttemptAggregate, window int) []float64 {
	accs := make([]float64, len(attempts))
	for i, a := range attempts {
		accs[i] = AttemptAccuracy(a.Matched, a.Total) * 100
	}
	return MovingAverage(accs, window)
}

// RenderCurves prints the accuracy learning curve.
func RenderCurves(w io.Writer, attempts []model.AttemptAggregate, window int) error {
	return RenderCurvesWithSize(w, attempts, window, 0, defaultChartHeight, false)
}

// RenderCurvesWithSize prints the accuracy curve sized to a given total width.
// A non-positive width uses the terminal width.
func RenderCurvesWithSize(w io.Writer, attempts []model.AttemptAggregate, window, totalWidth, height int, useColor bool) error {
	if len(attempts) == 0 {
		return nil
	}
	title := fmt.Sprintf("Accuracy (moving average, window %d)", max(window, 1))
	width := 0
	if totalWidth > 0 {
		width = ChartWidthFor(totalWidth)
	}
	return Chart(w, title, AccuracySeries(attempts, window), width, height, useColor)
}

type wordRow struct {
	word          string
	missing       int
	substitutions int
}

func (r wordRow) total() int { return r.missing + r.substitutions }

func sortedWordRows(aggs []model.WordAggregate) []wordRow {
	rows := make([]wordRow, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, wordRow{word: agg.Word, missing: agg.Missing, substitutions: agg.Substitutions})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total() == rows[j].total() {
			return rows[i].word < rows[j].word
		}
		return rows[i].total() > rows[j].total()
	})
	return rows
}

// WordTable returns headers and rows for the missed words table, most missed
// first.
func WordTable(aggs []model.WordAggregate) ([]string, [][]string) {
	headers := []string{"Word", "Errors", "Missing", "Substituted"}
	rows := sortedWordRows(aggs)
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.word,
			fmt.Sprintf("%d", r.total()),
			fmt.Sprintf("%d", r.missing),
			fmt.Sprintf("%d", r.substitutions),
		})
	}
	return headers, out
}

// RenderWordTable prints per-word error aggregates.
func RenderWordTable(w io.Writer, aggs []model.WordAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No missed words found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Missed Words (Windowed)"); err != nil {
		return err
	}
	headers, rows := WordTable(aggs)
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// TopMissedWords returns the n words with the most errors.
func TopMissedWords(aggs []model.WordAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	rows := sortedWordRows(aggs)
	n = min(n, len(rows))
	out := make([]string, 0, n)
	for _, r := range rows[:n] {
		out = append(out, r.word)
	}
	return out
}

// SelectWeakWords returns the top most-missed words as a set. A non-positive
// top keeps every word with at least one error.
func SelectWeakWords(aggs []model.WordAggregate, top int) map[string]struct{} {
	weak := map[string]struct{}{}
	rows := sortedWordRows(aggs)
	if top <= 0 || top > len(rows) {
		top = len(rows)
	}
	for _, r := range rows[:top] {
		if r.total() > 0 {
			weak[r.word] = struct{}{}
		}
	}
	return weak
}

func minMax(values []float64) (float64, float64) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}
