// Package render formats jumpstat reports for the console and for export.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/verte-zerg/jumpstats/internal/model"
)

const (
	// DefaultTop is how many rows frequency and activity tables show.
	DefaultTop = 5

	timestampLayout = "02/01/2006 15:04:05"
)

// Tier colors distances at or above Min.
type Tier struct {
	Min   float64
	Color lipgloss.TerminalColor
}

// DefaultTiers are the console distance colors: blue, green, red, gold.
var DefaultTiers = []Tier{
	{Min: 265, Color: lipgloss.Color("4")},
	{Min: 270, Color: lipgloss.Color("2")},
	{Min: 275, Color: lipgloss.Color("1")},
	{Min: 285, Color: lipgloss.Color("11")},
}

// Options controls console rendering.
type Options struct {
	Top      int
	Color    bool
	Tiers    []Tier
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.Top <= 0 {
		o.Top = DefaultTop
	}
	if o.Tiers == nil {
		o.Tiers = DefaultTiers
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Styler applies tier colors and emphasis for one output.
type Styler struct {
	opts  Options
	bold  lipgloss.Style
	tiers []lipgloss.Style
}

// NewStyler builds styles bound to w. Colors are only emitted when opts.Color is set.
func NewStyler(w io.Writer, opts Options) *Styler {
	opts = opts.withDefaults()
	r := lipgloss.NewRenderer(w)
	if opts.Color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	s := &Styler{
		opts: opts,
		bold: r.NewStyle().Bold(true),
	}
	for _, tier := range opts.Tiers {
		s.tiers = append(s.tiers, r.NewStyle().Foreground(tier.Color))
	}
	return s
}

// Bold emphasizes a heading.
func (s *Styler) Bold(text string) string {
	return s.bold.Render(text)
}

// Distance colors text by the tier that distance falls in.
func (s *Styler) Distance(distance float64, text string) string {
	idx := -1
	for i, tier := range s.opts.Tiers {
		if distance >= tier.Min {
			idx = i
		}
	}
	if idx < 0 {
		return text
	}
	return s.tiers[idx].Render(text)
}

// Jump formats a record on one line, colored by distance.
func (s *Styler) Jump(r model.Record) string {
	return s.Distance(r.Distance, FormatJump(r))
}

// Timestamp formats a unix timestamp in the configured location.
func (s *Styler) Timestamp(ts int64) string {
	return time.Unix(ts, 0).In(s.opts.Location).Format(timestampLayout)
}

// FormatJump describes a record, e.g. "270.0 units (3 strafes | 80% sync | 1.2 pre | 350 max)".
func FormatJump(r model.Record) string {
	return fmt.Sprintf("%s units (%d strafes | %d%% sync | %s pre | %d max)",
		FormatDistance(r.Distance), r.Strafes, r.Sync, formatFloat(r.Pre), r.MaxVelocity)
}

// FormatDistance rounds to three decimals.
func FormatDistance(distance float64) string {
	return formatFloat(math.Round(distance*1000) / 1000)
}

// Percent returns part/total as a percentage rounded to two decimals.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ShouldUseColor reports whether w is a terminal that should receive colors.
// NO_COLOR always wins; force enables color for non-terminal writers.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Console prints the full report.
func Console(w io.Writer, report model.Report, opts Options) error {
	opts = opts.withDefaults()
	s := NewStyler(w, opts)
	p := &printer{w: w}

	p.linef("Jumpstats from %s to %s", s.Bold(s.Timestamp(report.Timespan.Start)), s.Bold(s.Timestamp(report.Timespan.End)))
	p.line("")

	p.line(s.Bold("active hours") + ":")
	p.table(labelRows(report.ActiveHours, opts.Top, " jumps"))
	p.line("")

	p.line(s.Bold("active days") + ":")
	p.table(labelRows(report.ActiveDays, opts.Top, " jumps"))
	p.line("")

	p.line(s.Bold("jumps over") + ":")
	p.table(thresholdRows(s, report))
	p.line("")

	p.line(s.Bold("longest jumps") + ":")
	p.table(longestRows(s, report))
	p.line("")

	p.linef("%s:    %s (%s)", s.Bold("shortest jump"), s.Jump(report.Shortest), s.Timestamp(report.Shortest.Timestamp))
	p.linef("%s: %s", s.Bold("average distance"), s.Distance(report.AverageDistance, FormatDistance(report.AverageDistance)+" units"))
	p.line("")

	p.line(s.Bold("most common distances jumped") + ":")
	p.table(bucketRows(report.DistanceFrequency, opts.Top, func(v int, text string) string {
		return s.Distance(float64(v), text)
	}))
	p.line("")

	p.line(s.Bold("most common number of strafes") + ":")
	p.table(bucketRows(report.StrafeFrequency, opts.Top, nil))
	return p.err
}

func labelRows(counts []model.LabelCount, top int, suffix string) [][]string {
	rows := make([][]string, 0, top)
	for i, lc := range counts {
		if i >= top {
			break
		}
		rows = append(rows, []string{lc.Label + ":", strconv.Itoa(lc.Count) + suffix})
	}
	return rows
}

func thresholdRows(s *Styler, report model.Report) [][]string {
	rows := make([][]string, 0, len(report.Thresholds))
	for _, tc := range report.Thresholds {
		label := s.Distance(float64(tc.Threshold), strconv.Itoa(tc.Threshold))
		rows = append(rows, []string{
			label + ":",
			strconv.Itoa(tc.Count),
			"|",
			formatFloat(Percent(tc.Count, report.Count)) + "%",
		})
	}
	return rows
}

func longestRows(s *Styler, report model.Report) [][]string {
	rows := make([][]string, 0, len(report.Longest))
	for _, wj := range report.Longest {
		// Windows nothing was jumped in stay at the zero record and are not shown.
		if !wj.Found() {
			continue
		}
		rows = append(rows, []string{
			wj.Window.String() + ":",
			fmt.Sprintf("%s (%s)", s.Jump(wj.Record), s.Timestamp(wj.Record.Timestamp)),
		})
	}
	return rows
}

func bucketRows(buckets []model.Bucket, top int, color func(int, string) string) [][]string {
	rows := make([][]string, 0, top)
	for i, b := range buckets {
		if i >= top {
			break
		}
		label := strconv.Itoa(b.Value)
		if color != nil {
			label = color(b.Value, label)
		}
		rows = append(rows, []string{label + ":", strconv.Itoa(b.Count)})
	}
	return rows
}

// printer stops writing after the first error and remembers it.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) table(rows [][]string) {
	for _, line := range alignColumns(rows, 0) {
		p.line("    " + line)
	}
}
