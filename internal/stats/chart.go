package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	defaultChartHeight  = 8
	minChartWidth       = 10
	chartAxisTop        = "100%"
	chartAxisBottom     = "  0%"
	chartAxisSeparator  = " │"
	terminalWidthBackup = 80
	chartColor          = "\x1b[36m"
	colorReset          = "\x1b[0m"
)

var blockChars = []rune(" ▁▂▃▄▅▆▇█")

// Chart renders a percentage series (0-100) as a block chart of the given
// size. The series is resampled to width columns.
func Chart(w io.Writer, title string, values []float64, width, height int, forceColor bool) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	if width <= 0 {
		width = ChartWidthFor(terminalWidth())
	}
	width = max(width, minChartWidth)
	cols := resample(values, width)
	useColor := shouldUseColor(w, forceColor)

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	levels := len(blockChars) - 1
	for row := height - 1; row >= 0; row-- {
		label := strings.Repeat(" ", len(chartAxisTop))
		switch row {
		case height - 1:
			label = chartAxisTop
		case 0:
			label = chartAxisBottom
		}
		var b strings.Builder
		for _, v := range cols {
			filled := clampPct(v) / 100 * float64(height*levels)
			cell := int(filled) - row*levels
			cell = min(max(cell, 0), levels)
			b.WriteRune(blockChars[cell])
		}
		line := b.String()
		if useColor {
			line = chartColor + line + colorReset
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", label, chartAxisSeparator, line); err != nil {
			return err
		}
	}
	first, last := values[0], values[len(values)-1]
	_, err := fmt.Fprintf(w, "first %.1f%%  last %.1f%%  %s\n\n", first, last, Sparkline(values))
	return err
}

// ChartWidthFor returns the chart column count that fits totalWidth.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	axisWidth := len(chartAxisTop) + len([]rune(chartAxisSeparator))
	return max(totalWidth-axisWidth, minChartWidth)
}

func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := max((i+1)*len(values)/width, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func clampPct(v float64) float64 {
	return min(max(v, 0), 100)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if force {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
