package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/secprep/internal/model"
)

type fakeSource struct {
	questions []model.Question
	domain    string
}

func (f *fakeSource) RandomQuestions(count int) []model.Question {
	f.domain = "all"
	return f.questions
}

func (f *fakeSource) DomainQuiz(domain string, count int) []model.Question {
	f.domain = domain
	return f.questions
}

type fakeRecorder struct {
	results []model.QuizResult
	weak    []string
	err     error
}

func (f *fakeRecorder) SaveQuizResult(ctx context.Context, result model.QuizResult) error {
	f.results = append(f.results, result)
	return f.err
}

func (f *fakeRecorder) WeakDomains(ctx context.Context) []string {
	return f.weak
}

func sampleQuestions() []model.Question {
	return []model.Question{
		{Domain: "Risk Management", Question: "Which control deters?", Choices: []string{"Sign", "Firewall", "Backup"}, Answer: "Sign"},
		{Domain: "Cryptography and PKI", Question: "Which is asymmetric?", Choices: []string{"AES", "RSA", "DES"}, Answer: "RSA"},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestQuizAnswersAndSavesResult(t *testing.T) {
	src := &fakeSource{questions: sampleQuestions()}
	rec := &fakeRecorder{weak: []string{"Cryptography and PKI"}}
	m := NewQuizModel(model.Config{Questions: 2, Domain: "all"}, src, rec, nil)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	m.Update(keyRunes("1"))
	if m.phase != phaseFeedback || !m.lastAnswer.Correct {
		t.Fatalf("expected correct feedback after first answer")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseAnswer {
		t.Fatalf("expected next question")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.lastAnswer.Selected != "DES" || m.lastAnswer.Correct {
		t.Fatalf("expected wrong answer DES, got %+v", m.lastAnswer)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseResults {
		t.Fatalf("expected results phase")
	}
	if len(rec.results) != 1 {
		t.Fatalf("expected one saved result, got %d", len(rec.results))
	}
	got := rec.results[0]
	if got.Score != 1 || got.TotalQuestions != 2 || !got.Date.Equal(fixed) {
		t.Fatalf("unexpected result: %+v", got)
	}
	if tally := got.DomainBreakdown["Cryptography and PKI"]; tally.Correct != 0 || tally.Total != 1 {
		t.Fatalf("unexpected crypto tally: %+v", tally)
	}
	view := m.View()
	for _, want := range []string{"Quiz complete", "Score 1/2 (50%)", "Needs work", "Focus next on", "Cryptography and PKI"} {
		if !strings.Contains(view, want) {
			t.Fatalf("results view missing %q:\n%s", want, view)
		}
	}
}

func TestQuizUsesDomainQuiz(t *testing.T) {
	src := &fakeSource{questions: sampleQuestions()}
	NewQuizModel(model.Config{Questions: 5, Domain: "Risk Management"}, src, &fakeRecorder{}, nil)
	if src.domain != "Risk Management" {
		t.Fatalf("expected domain quiz, got %q", src.domain)
	}
}

func TestQuizTimeoutGradesAnsweredOnly(t *testing.T) {
	src := &fakeSource{questions: sampleQuestions()}
	rec := &fakeRecorder{}
	m := NewQuizModel(model.Config{Questions: 2, Timed: true, TimeLimit: time.Minute}, src, rec, nil)

	m.Update(keyRunes("a"))
	m.Update(timer.TimeoutMsg{ID: m.timer.ID()})
	if m.phase != phaseResults || !m.expired {
		t.Fatalf("expected expired results")
	}
	if len(rec.results) != 1 || rec.results[0].TotalQuestions != 1 || rec.results[0].Score != 1 {
		t.Fatalf("expected one graded answer, got %+v", rec.results)
	}
	if !strings.Contains(m.View(), "Time's up") {
		t.Fatalf("expected timeout title")
	}
}

func TestQuizTimeoutWithoutAnswersIsSaved(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewQuizModel(model.Config{Questions: 2, Timed: true, TimeLimit: time.Minute}, &fakeSource{questions: sampleQuestions()}, rec, nil)
	m.Update(timer.TimeoutMsg{ID: m.timer.ID()})
	if m.phase != phaseResults {
		t.Fatalf("expected results phase")
	}
	if len(rec.results) != 1 {
		t.Fatalf("expected one saved result, got %d", len(rec.results))
	}
	if got := rec.results[0]; got.Score != 0 || got.TotalQuestions != 0 || len(got.DomainBreakdown) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if !containsAll(m.View(), []string{"Time's up", "No questions answered."}) {
		t.Fatalf("expected empty timeout view:\n%s", m.View())
	}
}

func TestQuizEmptyBankIsNotSaved(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewQuizModel(model.Config{Questions: 2}, &fakeSource{}, rec, nil)
	if m.phase != phaseResults {
		t.Fatalf("expected results phase for an empty bank")
	}
	if len(rec.results) != 0 {
		t.Fatalf("expected nothing saved, got %d", len(rec.results))
	}
}

func TestQuizIgnoresForeignTimeout(t *testing.T) {
	m := NewQuizModel(model.Config{Questions: 2}, &fakeSource{questions: sampleQuestions()}, &fakeRecorder{}, nil)
	m.Update(timer.TimeoutMsg{ID: 0})
	if m.phase != phaseAnswer {
		t.Fatalf("untimed quiz should ignore timeouts")
	}
}

func TestQuizSaveErrorIsShown(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	m := NewQuizModel(model.Config{Questions: 1}, &fakeSource{questions: sampleQuestions()[:1]}, rec, nil)
	m.Update(keyRunes("1"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.saveErr == nil {
		t.Fatalf("expected save error to be kept")
	}
	if !strings.Contains(m.View(), "Progress was not saved.") {
		t.Fatalf("expected save error in view")
	}
}

func TestQuizNewQuizResets(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewQuizModel(model.Config{Questions: 1}, &fakeSource{questions: sampleQuestions()[:1]}, rec, nil)
	m.Update(keyRunes("2"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(keyRunes("n"))
	if m.phase != phaseAnswer || len(m.session.Answers()) != 0 {
		t.Fatalf("expected a fresh quiz")
	}
}

func TestQuizFooterShowsTimerAndScore(t *testing.T) {
	m := NewQuizModel(model.Config{Questions: 2, Timed: true, TimeLimit: 90 * time.Minute}, &fakeSource{questions: sampleQuestions()}, &fakeRecorder{}, nil)
	m.Update(keyRunes("1"))
	out := m.renderFooter()
	if !containsAll(out, []string{"Time 1:30:00", "Score 1/1", "enter next"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestQuizFooterQuickAnswerMatchesChoices(t *testing.T) {
	m := NewQuizModel(model.Config{Questions: 2}, &fakeSource{questions: sampleQuestions()}, &fakeRecorder{}, nil)
	out := m.renderFooter()
	if !strings.Contains(out, "1-3/a-c quick answer") {
		t.Fatalf("expected hint for three choices: %s", out)
	}
	if strings.Contains(out, "1-4") {
		t.Fatalf("hint should not offer a fourth choice: %s", out)
	}
}

func TestQuickAnswerHint(t *testing.T) {
	cases := map[int]string{
		0:  "",
		1:  "1/a quick answer",
		2:  "1-2/a-b quick answer",
		4:  "1-4/a-d quick answer",
		12: "1-9/a-i quick answer",
	}
	for n, want := range cases {
		if got := quickAnswerHint(n); got != want {
			t.Fatalf("quickAnswerHint(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestChoiceIndex(t *testing.T) {
	cases := []struct {
		key  string
		want int
		ok   bool
	}{
		{"1", 0, true},
		{"4", 3, true},
		{"b", 1, true},
		{"C", 2, true},
		{"5", 0, false},
		{"z", 0, false},
		{"enter", 0, false},
	}
	for _, tc := range cases {
		got, ok := choiceIndex(tc.key, 4)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("choiceIndex(%q) = %d, %v", tc.key, got, ok)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	if got := formatRemaining(65 * time.Second); got != "01:05" {
		t.Fatalf("expected 01:05, got %s", got)
	}
	if got := formatRemaining(-time.Second); got != "00:00" {
		t.Fatalf("expected 00:00, got %s", got)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
