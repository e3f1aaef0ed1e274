package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// alignColumns lays rows out as space-separated columns sized to their widest
// cell. Columns listed in right are padded on the left. Escape sequences do
// not count toward a cell's width and trailing spaces are dropped.
func alignColumns(rows [][]string, right ...int) []string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], cellWidth(cell))
		}
	}
	rightAligned := make([]bool, len(widths))
	for _, col := range right {
		if col >= 0 && col < len(rightAligned) {
			rightAligned[col] = true
		}
	}

	lines := make([]string, 0, len(rows))
	var b strings.Builder
	for _, row := range rows {
		b.Reset()
		for i, width := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i > 0 {
				b.WriteByte(' ')
			}
			gap := strings.Repeat(" ", width-cellWidth(cell))
			if rightAligned[i] {
				b.WriteString(gap)
				b.WriteString(cell)
			} else {
				b.WriteString(cell)
				b.WriteString(gap)
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

func cellWidth(cell string) int {
	return runewidth.StringWidth(ansi.Strip(cell))
}
