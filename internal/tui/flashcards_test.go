package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/secprep/internal/model"
)

type countingRecorder struct {
	calls int
	err   error
}

func (c *countingRecorder) UpdateFlashcardProgress(ctx context.Context) error {
	c.calls++
	return c.err
}

func TestFlashcardFlipCountsAnswerSideOnly(t *testing.T) {
	rec := &countingRecorder{}
	m := NewFlashcardModel(sampleQuestions(), nil, rec, nil)

	m.Update(keyRunes(" "))
	if !m.flipped || rec.calls != 1 {
		t.Fatalf("expected first flip to record, calls=%d", rec.calls)
	}
	if !strings.Contains(m.View(), "Sign") {
		t.Fatalf("expected answer on the back of the card")
	}
	m.Update(keyRunes(" "))
	if m.flipped || rec.calls != 1 {
		t.Fatalf("flipping back should not record, calls=%d", rec.calls)
	}
	m.Update(keyRunes(" "))
	if rec.calls != 2 || m.Studied() != 2 {
		t.Fatalf("expected second study, calls=%d studied=%d", rec.calls, m.Studied())
	}
}

func TestFlashcardNavigationStaysInBounds(t *testing.T) {
	m := NewFlashcardModel(sampleQuestions(), nil, &countingRecorder{}, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.index != 0 {
		t.Fatalf("expected to stay on first card")
	}
	m.Update(keyRunes(" "))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.index != 1 || m.flipped {
		t.Fatalf("expected unflipped second card, index=%d flipped=%v", m.index, m.flipped)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.index != 1 {
		t.Fatalf("expected to stay on last card")
	}
	if !strings.Contains(m.renderProgress(), "Card 2/2 · 100%") {
		t.Fatalf("unexpected progress: %s", m.renderProgress())
	}
}

func TestFlashcardShuffleRestarts(t *testing.T) {
	shuffled := 0
	reverse := func(qs []model.Question) {
		shuffled++
		for i, j := 0, len(qs)-1; i < j; i, j = i+1, j-1 {
			qs[i], qs[j] = qs[j], qs[i]
		}
	}
	m := NewFlashcardModel(sampleQuestions(), reverse, &countingRecorder{}, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(keyRunes("s"))
	if shuffled != 1 || m.index != 0 {
		t.Fatalf("expected shuffle and restart, shuffled=%d index=%d", shuffled, m.index)
	}
	if m.deck[0].Answer != "RSA" {
		t.Fatalf("expected reordered deck")
	}
}

func TestFlashcardChoicesToggle(t *testing.T) {
	m := NewFlashcardModel(sampleQuestions(), nil, &countingRecorder{}, nil)
	if strings.Contains(m.View(), "Firewall") {
		t.Fatalf("choices should be hidden by default")
	}
	m.Update(keyRunes("c"))
	if !strings.Contains(m.View(), "B. Firewall") {
		t.Fatalf("expected choices to be listed")
	}
}

func TestFlashcardSaveErrorIsShown(t *testing.T) {
	m := NewFlashcardModel(sampleQuestions(), nil, &countingRecorder{err: errors.New("locked")}, nil)
	m.Update(keyRunes("f"))
	if !strings.Contains(m.renderFooter(), "progress not saved") {
		t.Fatalf("expected save error in footer")
	}
}

func TestFlashcardEmptyDeck(t *testing.T) {
	rec := &countingRecorder{}
	m := NewFlashcardModel(nil, nil, rec, nil)
	m.Update(keyRunes(" "))
	if rec.calls != 0 {
		t.Fatalf("empty deck should not record study")
	}
	if !strings.Contains(m.View(), "No flashcards") {
		t.Fatalf("expected empty deck message")
	}
}
