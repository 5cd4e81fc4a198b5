// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/secprep/internal/model"
	"github.com/verte-zerg/secprep/internal/quiz"
	"github.com/verte-zerg/secprep/internal/stats"
)

const (
	tabOverview = iota
	tabDomains
	tabTrends
)

const (
	plotHeight = 10
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
	weakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	src      stats.ProgressSource
	weights  []model.DomainWeight
	bank     []model.DomainStat
	quizSize int
	cfg      model.StatsConfig

	report stats.Report

	tabs      []string
	activeTab int
	viewports []viewport.Model

	width  int
	height int
}

// NewModel constructs a stats UI model. quizSize scales the expected
// per-domain question counts shown next to the bank.
func NewModel(src stats.ProgressSource, weights []model.DomainWeight, bank []model.DomainStat, quizSize int, cfg model.StatsConfig) *Model {
	m := &Model{
		src:      src,
		weights:  weights,
		bank:     bank,
		quizSize: quizSize,
		cfg:      cfg,
		tabs:     []string{"Overview", "Domains", "Trends"},
	}
	if m.cfg.Window < 1 {
		m.cfg.Window = 1
	}
	m.initViewports()
	m.refreshReport()
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
		case "=":
			m.cfg.Window = nextWindow(m.cfg.Window)
			m.renderTabContents()
			return m, nil
		case "-":
			m.cfg.Window = prevWindow(m.cfg.Window)
			m.renderTabContents()
			return m, nil
		case "r":
			m.refreshReport()
			return m, nil
		case "g", "home":
			m.viewports[m.activeTab].GotoTop()
			return m, nil
		case "G", "end":
			m.viewports[m.activeTab].GotoBottom()
			return m, nil
		default:
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
	body := fitLines(m.viewports[m.activeTab].View(), m.width, bodyHeight)
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
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
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
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
	settings := padLines(m.renderSettings(), m.width)
	return tabs + "\n" + settings
}

func (m *Model) renderSettings() string {
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: last=%s  window=%d  weak<%.0f%%", last, m.cfg.Window, stats.WeakThreshold)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Reload: r  Quit: q")
}

func (m *Model) refreshReport() {
	m.report = stats.BuildReport(context.Background(), m.src, m.weights, m.bank, nil)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabDomains].SetContent(renderDomains(m.report, m.quizSize))
	m.viewports[tabTrends].SetContent(renderTrends(m.report, m.cfg, width))
}

func renderOverview(report stats.Report, width int) string {
	p := report.Progress
	if p.TotalQuizzes == 0 && p.FlashcardsStudied == 0 {
		return "No study history yet. Take a quiz or study some flashcards."
	}
	cards := renderSummaryCards(report, width)
	var weak bytes.Buffer
	if err := stats.RenderWeakDomains(&weak, report.Weak, report.Averages); err != nil {
		return fmt.Sprintf("Failed to render weak domains: %v", err)
	}
	lines := strings.Split(strings.TrimRight(weak.String(), "\n"), "\n")
	if len(report.Weak) > 0 {
		for i := 1; i < len(lines); i++ {
			lines[i] = weakStyle.Render(lines[i])
		}
	}
	last := "never"
	if !p.LastStudyDate.IsZero() {
		last = p.LastStudyDate.Local().Format("2006-01-02 15:04")
	}
	return strings.Join([]string{cards, "", strings.Join(lines, "\n"), "", headerStyle.Render("Last study: " + last)}, "\n")
}

func renderSummaryCards(report stats.Report, width int) string {
	p := report.Progress
	overall := stats.OverallDomainAverage(p)
	cards := []string{
		metricCard("Quizzes", fmt.Sprintf("%d", p.TotalQuizzes)),
		metricCard("Avg correct", fmt.Sprintf("%.1f", p.AverageScore)),
		metricCard("Domain avg", fmt.Sprintf("%.1f%%", overall)),
		metricCard("Readiness", quiz.Rating(int(overall+0.5))),
		metricCard("Flashcards", fmt.Sprintf("%d", p.FlashcardsStudied)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderDomains(report stats.Report, quizSize int) string {
	var buf bytes.Buffer
	if err := stats.RenderDomainTable(&buf, report.Averages, report.Progress.DomainScores); err != nil {
		return fmt.Sprintf("Failed to render domains: %v", err)
	}
	if len(report.Bank) > 0 {
		if _, err := fmt.Fprintln(&buf, "Question bank"); err != nil {
			return fmt.Sprintf("Failed to render bank: %v", err)
		}
		if err := stats.RenderBankTable(&buf, report.Bank, quizSize); err != nil {
			return fmt.Sprintf("Failed to render bank: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderTrends(report stats.Report, cfg model.StatsConfig, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderTrends(&buf, report.Progress, report.TrendDomains, cfg.Last, cfg.Window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render trends: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func nextWindow(n int) int {
	if n < 5 {
		return n + 1
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevWindow(n int) int {
	if n <= 1 {
		return 1
	}
	if n <= 5 {
		return n - 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
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
