// Package viewer provides the Bubble Tea jumpstat report viewer.
package viewer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/jumpstats/internal/model"
	"github.com/verte-zerg/jumpstats/internal/render"
)

const (
	tabOverview = iota
	tabJumps
	tabDistances
	tabActivity
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	sectionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// Model implements the Bubble Tea report viewer.
type Model struct {
	report model.Report
	source string
	opts   render.Options

	tabs      []string
	activeTab int
	viewports []viewport.Model
	distTable table.Model

	width  int
	height int
}

// NewModel constructs a viewer for a finished report. source describes where
// the records came from and is shown in the header.
func NewModel(report model.Report, source string, opts render.Options) *Model {
	m := &Model{
		report: report,
		source: source,
		opts:   opts,
		tabs:   []string{"Overview", "Jumps", "Distances", "Activity"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.distTable = buildDistanceTable(report, 80, 10)
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabDistances {
				m.distTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabDistances {
				m.distTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabDistances {
				var cmd tea.Cmd
				m.distTable, cmd = m.distTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.distTable.SetWidth(m.width)
	m.distTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabDistances {
		m.distTable.Focus()
	} else {
		m.distTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Source: %s  jumps=%d", m.source, m.report.Count)
	summary = truncateLine(summary, m.width)
	return tabs + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Top/bottom: g/G  Quit: q")
}

func (m *Model) renderBody() string {
	if m.activeTab == tabDistances {
		if len(m.report.DistanceFrequency) == 0 {
			return "No jumps found."
		}
		return tableMutedStyle.Render(m.distTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.opts, width))
	m.viewports[tabJumps].SetContent(renderJumps(m.report, m.opts))
	m.viewports[tabActivity].SetContent(renderActivity(m.report, width))
}

func renderOverview(report model.Report, opts render.Options, width int) string {
	if report.Count == 0 {
		return "No jumps found."
	}
	styler := render.NewStyler(io.Discard, opts)
	longest := report.LongestIn(model.WindowAllTime)
	cards := []string{
		metricCard("Jumps", strconv.Itoa(report.Count)),
		metricCard("Average", render.FormatDistance(report.AverageDistance)),
		metricCard("Longest", render.FormatDistance(longest.Distance)),
		metricCard("Shortest", render.FormatDistance(report.Shortest.Distance)),
		metricCard("Over 275", strconv.Itoa(report.CountOver(275))),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	span := fmt.Sprintf("From %s to %s", styler.Timestamp(report.Timespan.Start), styler.Timestamp(report.Timespan.End))
	return grid + "\n\n" + headerStyle.Render(span)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderJumps(report model.Report, opts render.Options) string {
	if report.Count == 0 {
		return "No jumps found."
	}
	styler := render.NewStyler(io.Discard, opts)
	lines := []string{sectionStyle.Render("Longest jumps")}
	for _, wj := range report.Longest {
		if !wj.Found() {
			lines = append(lines, fmt.Sprintf("  %-13s -", wj.Window.String()))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-13s %s (%s)", wj.Window.String(), styler.Jump(wj.Record), styler.Timestamp(wj.Record.Timestamp)))
	}
	lines = append(lines, "", sectionStyle.Render("Shortest jump"))
	lines = append(lines, fmt.Sprintf("  %s (%s)", styler.Jump(report.Shortest), styler.Timestamp(report.Shortest.Timestamp)))
	lines = append(lines, "", sectionStyle.Render("Jumps over"))
	for _, tc := range report.Thresholds {
		label := styler.Distance(float64(tc.Threshold), fmt.Sprintf("%5d", tc.Threshold))
		lines = append(lines, fmt.Sprintf("  %s  %-5d %6.2f%%", label, tc.Count, render.Percent(tc.Count, report.Count)))
	}
	lines = append(lines, "", sectionStyle.Render("Most common strafes"))
	lines = append(lines, renderBars(bucketsAsLabels(report.StrafeFrequency), 40)...)
	return strings.Join(lines, "\n")
}

func renderActivity(report model.Report, width int) string {
	if report.Count == 0 {
		return "No jumps found."
	}
	barWidth := maxInt(10, minInt(60, width-20))
	lines := []string{sectionStyle.Render("Active hours")}
	lines = append(lines, renderBars(report.ActiveHours, barWidth)...)
	lines = append(lines, "", sectionStyle.Render("Active days"))
	lines = append(lines, renderBars(report.ActiveDays, barWidth)...)
	return strings.Join(lines, "\n")
}

func buildDistanceTable(report model.Report, width, height int) table.Model {
	columns, rows := buildDistanceTableData(report)
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(distanceTableStyles())
	return t
}

func buildDistanceTableData(report model.Report) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Distance", Width: 8},
		{Title: "Jumps", Width: 6},
		{Title: "Share", Width: 8},
	}
	rows := make([]table.Row, 0, len(report.DistanceFrequency))
	for _, b := range report.DistanceFrequency {
		rows = append(rows, table.Row{
			strconv.Itoa(b.Value),
			strconv.Itoa(b.Count),
			fmt.Sprintf("%.2f%%", render.Percent(b.Count, report.Count)),
		})
	}
	return columns, rows
}

func distanceTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func bucketsAsLabels(buckets []model.Bucket) []model.LabelCount {
	out := make([]model.LabelCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, model.LabelCount{Label: strconv.Itoa(b.Value), Count: b.Count})
	}
	return out
}
