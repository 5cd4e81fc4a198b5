// Package quiz tracks answers for a running quiz and grades it.
package quiz

import (
	"math"
	"time"

	"github.com/verte-zerg/secprep/internal/model"
)

// PassPercent is the practice pass mark.
const PassPercent = 70

// AnswerRecord is one answered question.
type AnswerRecord struct {
	Question model.Question
	Selected string
	Correct  bool
}

// Session holds the delivered questions and the answers given so far.
type Session struct {
	questions []model.Question
	answers   []AnswerRecord
}

// NewSession starts a quiz over questions.
func NewSession(questions []model.Question) *Session {
	return &Session{questions: questions}
}

// Questions returns the delivered questions.
func (s *Session) Questions() []model.Question {
	return s.questions
}

// Index returns the position of the current question.
func (s *Session) Index() int {
	return len(s.answers)
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (model.Question, bool) {
	if s.Done() {
		return model.Question{}, false
	}
	return s.questions[len(s.answers)], true
}

// Answer records choice for the current question and reports whether it was
// correct. Answering a finished session is a no-op.
func (s *Session) Answer(choice string) bool {
	q, ok := s.Current()
	if !ok {
		return false
	}
	correct := q.IsCorrect(choice)
	s.answers = append(s.answers, AnswerRecord{Question: q, Selected: choice, Correct: correct})
	return correct
}

// Answers returns the recorded answers in order.
func (s *Session) Answers() []AnswerRecord {
	return s.answers
}

// Done reports whether every question has been answered.
func (s *Session) Done() bool {
	return len(s.answers) >= len(s.questions)
}

// Result grades the answers recorded so far. Questions left unanswered (for
// example when the timer expires) are not counted.
func (s *Session) Result(now time.Time) model.QuizResult {
	return Grade(s.answers, now)
}

// Grade builds a QuizResult from answer records.
func Grade(answers []AnswerRecord, now time.Time) model.QuizResult {
	breakdown := map[string]model.DomainTally{}
	score := 0
	for _, a := range answers {
		tally := breakdown[a.Question.Domain]
		tally.Total++
		if a.Correct {
			tally.Correct++
			score++
		}
		breakdown[a.Question.Domain] = tally
	}
	return model.QuizResult{
		Score:           score,
		TotalQuestions:  len(answers),
		DomainBreakdown: breakdown,
		Date:            now,
	}
}

// Percentage returns score/total as a rounded percent, 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}

// Passed reports whether a percentage meets the practice pass mark.
func Passed(percent int) bool {
	return percent >= PassPercent
}

// Rating labels a percentage score.
func Rating(percent int) string {
	switch {
	case percent >= 90:
		return "Excellent"
	case percent >= 80:
		return "Good"
	case percent >= PassPercent:
		return "Pass"
	default:
		return "Needs work"
	}
}
