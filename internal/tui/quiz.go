// Package tui provides the Bubble Tea quiz and flashcard interfaces.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/secprep/internal/model"
	"github.com/verte-zerg/secprep/internal/quiz"
	"github.com/verte-zerg/secprep/internal/selector"
)

// QuestionSource draws the questions for a quiz.
type QuestionSource interface {
	RandomQuestions(count int) []model.Question
	DomainQuiz(domain string, count int) []model.Question
}

// ResultRecorder persists finished quizzes.
type ResultRecorder interface {
	SaveQuizResult(ctx context.Context, result model.QuizResult) error
	WeakDomains(ctx context.Context) []string
}

type quizPhase int

const (
	phaseAnswer quizPhase = iota
	phaseFeedback
	phaseResults
)

// QuizModel implements the Bubble Tea quiz UI.
type QuizModel struct {
	config   model.Config
	source   QuestionSource
	recorder ResultRecorder
	log      *zap.Logger
	now      func() time.Time

	width  int
	height int

	session    *quiz.Session
	phase      quizPhase
	cursor     int
	lastAnswer quiz.AnswerRecord

	timer   timer.Model
	expired bool

	result  model.QuizResult
	weak    []string
	saveErr error
}

var (
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	choiceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewQuizModel constructs a quiz TUI model and draws the first quiz.
func NewQuizModel(cfg model.Config, source QuestionSource, recorder ResultRecorder, log *zap.Logger) *QuizModel {
	if log == nil {
		log = zap.NewNop()
	}
	m := &QuizModel{
		config:   cfg,
		source:   source,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
	m.resetQuiz()
	return m
}

// Init implements tea.Model.
func (m *QuizModel) Init() tea.Cmd {
	if m.config.Timed {
		return m.timer.Init()
	}
	return nil
}

// Update implements tea.Model.
func (m *QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	case timer.TimeoutMsg:
		if !m.config.Timed || msg.ID != m.timer.ID() || m.phase == phaseResults {
			return m, nil
		}
		m.expired = true
		m.finishQuiz(true)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.phase {
		case phaseAnswer:
			return m.updateAnswer(msg)
		case phaseFeedback:
			return m.updateFeedback(msg)
		default:
			return m.updateResults(msg)
		}
	}
	return m, nil
}

func (m *QuizModel) updateAnswer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q, ok := m.session.Current()
	if !ok {
		return m, nil
	}
	switch key := msg.String(); key {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(q.Choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.answer(q.Choices[m.cursor])
	default:
		if idx, ok := choiceIndex(key, len(q.Choices)); ok {
			m.cursor = idx
			m.answer(q.Choices[idx])
		}
	}
	return m, nil
}

func (m *QuizModel) updateFeedback(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", " ", "n", "right", "l":
		if m.session.Done() {
			cmd := m.stopTimer()
			m.finishQuiz(true)
			return m, cmd
		}
		m.phase = phaseAnswer
		m.cursor = 0
	}
	return m, nil
}

func (m *QuizModel) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "r":
		m.resetQuiz()
		return m, m.Init()
	case "q", "esc", "enter":
		return m, tea.Quit
	}
	return m, nil
}

// choiceIndex maps "1".."9" and "a".."i" to a choice position.
func choiceIndex(key string, n int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	idx := -1
	switch {
	case c >= '1' && c <= '9':
		idx = int(c - '1')
	case c >= 'a' && c <= 'i':
		idx = int(c - 'a')
	case c >= 'A' && c <= 'I':
		idx = int(c - 'A')
	}
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

// quickAnswerHint names the keys choiceIndex accepts for n choices.
func quickAnswerHint(n int) string {
	if n > 9 {
		n = 9
	}
	switch {
	case n < 1:
		return ""
	case n == 1:
		return "1/a quick answer"
	}
	return fmt.Sprintf("1-%d/a-%c quick answer", n, 'a'+n-1)
}

func (m *QuizModel) answer(choice string) {
	m.session.Answer(choice)
	answers := m.session.Answers()
	m.lastAnswer = answers[len(answers)-1]
	m.phase = phaseFeedback
}

func (m *QuizModel) stopTimer() tea.Cmd {
	if !m.config.Timed {
		return nil
	}
	return m.timer.Stop()
}

func (m *QuizModel) resetQuiz() {
	var questions []model.Question
	if m.config.Domain == "" || m.config.Domain == selector.AllDomains {
		questions = m.source.RandomQuestions(m.config.Questions)
	} else {
		questions = m.source.DomainQuiz(m.config.Domain, m.config.Questions)
	}
	m.session = quiz.NewSession(questions)
	m.phase = phaseAnswer
	m.cursor = 0
	m.lastAnswer = quiz.AnswerRecord{}
	m.expired = false
	m.result = model.QuizResult{}
	m.weak = nil
	m.saveErr = nil
	if m.config.Timed {
		m.timer = timer.NewWithInterval(m.config.TimeLimit, time.Second)
	}
	if len(questions) == 0 {
		m.finishQuiz(false)
	}
}

// finishQuiz grades the answers given so far. When record is set the result
// is persisted even if nothing was answered before the timer ran out.
func (m *QuizModel) finishQuiz(record bool) {
	m.phase = phaseResults
	m.result = m.session.Result(m.now())
	if !record {
		return
	}
	ctx := context.Background()
	if err := m.recorder.SaveQuizResult(ctx, m.result); err != nil {
		m.saveErr = err
		m.log.Error("save quiz result", zap.Error(err))
	}
	m.weak = m.recorder.WeakDomains(ctx)
}

// View implements tea.Model.
func (m *QuizModel) View() string {
	width := m.contentWidth()
	var content string
	if m.phase == phaseResults {
		content = m.renderResults(width)
	} else {
		content = m.renderQuestion(width)
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	content = lipgloss.NewStyle().Width(width).Render(content)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *QuizModel) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	w := int(float64(m.width) * 0.70)
	if w < 20 {
		w = m.width
	}
	return w
}

func (m *QuizModel) renderQuestion(width int) string {
	q, ok := m.session.Current()
	if m.phase == phaseFeedback {
		q, ok = m.lastAnswer.Question, true
	}
	if !ok {
		return ""
	}
	number := m.session.Index() + 1
	if m.phase == phaseFeedback {
		number = m.session.Index()
	}
	header := fmt.Sprintf("Question %d/%d · %s", number, len(m.session.Questions()), q.Domain)
	lines := []string{mutedStyle.Render(header), "", questionStyle.Render(strings.Join(wrapText(q.Question, width), "\n")), ""}
	for i, choice := range q.Choices {
		lines = append(lines, m.renderChoice(i, choice, q, width))
	}
	if m.phase == phaseFeedback {
		lines = append(lines, "")
		if m.lastAnswer.Correct {
			lines = append(lines, correctStyle.Render("Correct!"))
		} else {
			lines = append(lines, wrongStyle.Render(hangingIndent("Incorrect. Answer: ", q.Answer, width)))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *QuizModel) renderChoice(i int, choice string, q model.Question, width int) string {
	marker := "  "
	if m.phase == phaseAnswer && i == m.cursor {
		marker = "› "
	}
	text := hangingIndent(fmt.Sprintf("%s%c. ", marker, 'A'+i), choice, width)
	switch {
	case m.phase == phaseFeedback && choice == q.Answer:
		return correctStyle.Render(text)
	case m.phase == phaseFeedback && choice == m.lastAnswer.Selected:
		return wrongStyle.Render(text)
	case m.phase == phaseAnswer && i == m.cursor:
		return selectedStyle.Render(text)
	default:
		return choiceStyle.Render(text)
	}
}

func (m *QuizModel) renderResults(width int) string {
	title := "Quiz complete"
	if m.expired {
		title = "Time's up"
	}
	r := m.result
	if r.TotalQuestions == 0 {
		lines := []string{questionStyle.Render(title), "", mutedStyle.Render("No questions answered.")}
		if m.saveErr != nil {
			lines = append(lines, "", wrongStyle.Render("Progress was not saved."))
		}
		return strings.Join(lines, "\n")
	}
	pct := quiz.Percentage(r.Score, r.TotalQuestions)
	verdict := correctStyle.Render(quiz.Rating(pct))
	if !quiz.Passed(pct) {
		verdict = wrongStyle.Render(quiz.Rating(pct))
	}
	lines := []string{
		questionStyle.Render(title),
		"",
		fmt.Sprintf("Score %d/%d (%d%%) · %s", r.Score, r.TotalQuestions, pct, verdict),
		"",
		mutedStyle.Render("By domain"),
	}
	domains := make([]string, 0, len(r.DomainBreakdown))
	for domain := range r.DomainBreakdown {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	for _, domain := range domains {
		tally := r.DomainBreakdown[domain]
		dp := quiz.Percentage(tally.Correct, tally.Total)
		line := fmt.Sprintf("%3d%%  %d/%d  %s", dp, tally.Correct, tally.Total, domain)
		if !quiz.Passed(dp) {
			line = wrongStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(m.weak) > 0 {
		lines = append(lines, "", mutedStyle.Render("Focus next on"))
		for _, domain := range m.weak {
			lines = append(lines, hangingIndent("• ", domain, width))
		}
	}
	if m.saveErr != nil {
		lines = append(lines, "", wrongStyle.Render("Progress was not saved."))
	}
	return strings.Join(lines, "\n")
}

func (m *QuizModel) renderFooter() string {
	var segments []string
	switch m.phase {
	case phaseAnswer:
		segments = append(segments, "↑/↓ select", "enter answer")
		if q, ok := m.session.Current(); ok {
			if hint := quickAnswerHint(len(q.Choices)); hint != "" {
				segments = append(segments, hint)
			}
		}
		segments = append(segments, "q quit")
	case phaseFeedback:
		segments = append(segments, "enter next", "q quit")
	default:
		segments = append(segments, "n new quiz", "q quit")
	}
	if m.phase != phaseResults {
		segments = append([]string{fmt.Sprintf("Score %d/%d", scoreOf(m.session.Answers()), len(m.session.Answers()))}, segments...)
		if m.config.Timed {
			segments = append([]string{"Time " + formatRemaining(m.timer.Timeout)}, segments...)
		}
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func scoreOf(answers []quiz.AnswerRecord) int {
	score := 0
	for _, a := range answers {
		if a.Correct {
			score++
		}
	}
	return score
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	h, mins, secs := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}
