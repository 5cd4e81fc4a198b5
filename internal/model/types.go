// Package model defines shared data structures.
package model

import "time"

// Question is a single multiple-choice item from the question bank.
type Question struct {
	Domain   string   `json:"domain"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   string   `json:"answer"`
}

// IsCorrect reports whether choice matches the question's answer.
func (q Question) IsCorrect(choice string) bool {
	return choice == q.Answer
}

// DomainWeight is the target share (percent) of a domain in a full quiz.
type DomainWeight struct {
	Name   string
	Weight int
}

// DomainStat reports the bank size and configured weight of a domain.
type DomainStat struct {
	Domain string
	Total  int
	Weight int
}

// DomainTally counts answers for one domain within a quiz.
type DomainTally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// QuizResult captures a completed quiz.
type QuizResult struct {
	Score           int                    `json:"score"`
	TotalQuestions  int                    `json:"totalQuestions"`
	DomainBreakdown map[string]DomainTally `json:"domainBreakdown"`
	Date            time.Time              `json:"date"`
}

// StudyProgress is the persisted study history aggregate.
//
// AverageScore is a running mean of raw correct-answer counts, while
// DomainScores holds percentages, one per quiz touching the domain.
type StudyProgress struct {
	TotalQuizzes      int                  `json:"totalQuizzes"`
	AverageScore      float64              `json:"averageScore"`
	DomainScores      map[string][]float64 `json:"domainScores"`
	FlashcardsStudied int                  `json:"flashcardsStudied"`
	LastStudyDate     time.Time            `json:"lastStudyDate"`
}

// DomainAverage summarizes the score history of one domain.
type DomainAverage struct {
	Domain   string
	Average  float64
	Attempts int
	Weight   int
}

// Config defines quiz settings.
type Config struct {
	Questions int
	Domain    string
	Timed     bool
	TimeLimit time.Duration
}

// StatsConfig defines options for stats output.
type StatsConfig struct {
	Window int
	Last   int
}
