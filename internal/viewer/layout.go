package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/jumpstats/internal/model"
)

const barRune = "█"

// renderBars draws one horizontal bar per entry, scaled so the largest count
// fills width cells.
func renderBars(counts []model.LabelCount, width int) []string {
	if len(counts) == 0 {
		return []string{"  (none)"}
	}
	maxCount := 0
	labelWidth := 0
	for _, c := range counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
		if w := lipgloss.Width(c.Label); w > labelWidth {
			labelWidth = w
		}
	}
	lines := make([]string, 0, len(counts))
	for _, c := range counts {
		n := 0
		if maxCount > 0 {
			n = c.Count * width / maxCount
		}
		if n == 0 && c.Count > 0 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("  %*s %s %d", labelWidth, c.Label, strings.Repeat(barRune, n), c.Count))
	}
	return lines
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
