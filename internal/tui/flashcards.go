package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/secprep/internal/model"
)

// StudyRecorder counts flashcards turned to their answer side.
type StudyRecorder interface {
	UpdateFlashcardProgress(ctx context.Context) error
}

// FlashcardModel implements the Bubble Tea flashcard UI.
type FlashcardModel struct {
	deck     []model.Question
	shuffle  func([]model.Question)
	recorder StudyRecorder
	log      *zap.Logger

	width  int
	height int

	index       int
	flipped     bool
	showChoices bool
	studied     int
	saveErr     error
}

var cardStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder(), true).
	BorderForeground(lipgloss.Color("#4A4A4A"))

// NewFlashcardModel constructs a flashcard TUI over deck. shuffle reorders
// the deck in place when the user asks for a reshuffle; nil disables it.
func NewFlashcardModel(deck []model.Question, shuffle func([]model.Question), recorder StudyRecorder, log *zap.Logger) *FlashcardModel {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlashcardModel{
		deck:     deck,
		shuffle:  shuffle,
		recorder: recorder,
		log:      log,
	}
}

// Studied returns how many cards were flipped during this run.
func (m *FlashcardModel) Studied() int {
	return m.studied
}

// Init implements tea.Model.
func (m *FlashcardModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *FlashcardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case " ", "enter", "f":
			m.flip()
		case "right", "l", "n":
			m.move(1)
		case "left", "h", "p":
			m.move(-1)
		case "c":
			m.showChoices = !m.showChoices
		case "s":
			if m.shuffle != nil && len(m.deck) > 1 {
				m.shuffle(m.deck)
				m.index = 0
				m.resetCard()
			}
		}
	}
	return m, nil
}

// flip turns the card. Turning to the answer side counts as studying it.
func (m *FlashcardModel) flip() {
	if len(m.deck) == 0 {
		return
	}
	m.flipped = !m.flipped
	if !m.flipped {
		return
	}
	m.studied++
	if err := m.recorder.UpdateFlashcardProgress(context.Background()); err != nil {
		m.saveErr = err
		m.log.Error("update flashcard progress", zap.Error(err))
	}
}

func (m *FlashcardModel) move(delta int) {
	next := m.index + delta
	if next < 0 || next >= len(m.deck) {
		return
	}
	m.index = next
	m.resetCard()
}

func (m *FlashcardModel) resetCard() {
	m.flipped = false
	m.showChoices = false
}

// View implements tea.Model.
func (m *FlashcardModel) View() string {
	if len(m.deck) == 0 {
		return "No flashcards for this domain.\n"
	}
	width := m.cardWidth()
	card := cardStyle.Width(width).Render(m.renderCard(width - 6))
	header := mutedStyle.Render(m.renderProgress())
	content := lipgloss.JoinVertical(lipgloss.Center, header, "", card)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *FlashcardModel) cardWidth() int {
	if m.width <= 0 {
		return 72
	}
	w := int(float64(m.width) * 0.70)
	if w < 30 {
		w = m.width
	}
	return w
}

func (m *FlashcardModel) renderProgress() string {
	total := len(m.deck)
	pct := int(math.Round(float64(m.index+1) * 100 / float64(total)))
	return fmt.Sprintf("Card %d/%d · %d%% · studied %d", m.index+1, total, pct, m.studied)
}

func (m *FlashcardModel) renderCard(width int) string {
	q := m.deck[m.index]
	lines := []string{mutedStyle.Render(q.Domain), ""}
	if m.flipped {
		lines = append(lines, mutedStyle.Render("Answer"), correctStyle.Render(strings.Join(wrapText(q.Answer, width), "\n")))
		return strings.Join(lines, "\n")
	}
	lines = append(lines, questionStyle.Render(strings.Join(wrapText(q.Question, width), "\n")))
	if m.showChoices {
		lines = append(lines, "")
		for i, choice := range q.Choices {
			lines = append(lines, choiceStyle.Render(hangingIndent(fmt.Sprintf("%c. ", 'A'+i), choice, width)))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *FlashcardModel) renderFooter() string {
	segments := []string{"space flip", "←/→ prev/next", "c choices", "s shuffle", "q quit"}
	if m.saveErr != nil {
		segments = append(segments, wrongStyle.Render("progress not saved"))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
