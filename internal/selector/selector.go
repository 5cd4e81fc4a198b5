// Package selector picks quiz and flashcard questions from the bank.
package selector

import (
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/secprep/internal/model"
)

// AllDomains selects every domain in Deck.
const AllDomains = "all"

// Selector owns the question bank and the domain weight table.
type Selector struct {
	questions []model.Question
	weights   []model.DomainWeight
	rnd       *rand.Rand
}

// New returns a Selector seeded with the current time.
func New(questions []model.Question, weights []model.DomainWeight) *Selector {
	return NewWithSource(questions, weights, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Selector drawing from src.
func NewWithSource(questions []model.Question, weights []model.DomainWeight, src rand.Source) *Selector {
	return &Selector{
		questions: questions,
		weights:   weights,
		rnd:       rand.New(src),
	}
}

// Weights returns the domain weight table.
func (s *Selector) Weights() []model.DomainWeight {
	return s.weights
}

// AllQuestions returns the full bank in load order.
func (s *Selector) AllQuestions() []model.Question {
	return s.questions
}

// QuestionsByDomain returns every question whose domain matches exactly.
func (s *Selector) QuestionsByDomain(domain string) []model.Question {
	out := []model.Question{}
	for _, q := range s.questions {
		if q.Domain == domain {
			out = append(out, q)
		}
	}
	return out
}

// RandomQuestions draws up to count questions, stratified by domain weight.
// Each weighted domain contributes round(count*weight/100) questions when it
// has enough; the remainder is filled from any unselected question. The
// result is shuffled and never longer than count.
func (s *Selector) RandomQuestions(count int) []model.Question {
	if count <= 0 {
		return []model.Question{}
	}
	selected := make(map[int]struct{}, count)
	picked := make([]int, 0, count)

	for _, dw := range s.weights {
		quota := int(math.Round(float64(count*dw.Weight) / 100))
		pool := s.indexesWhere(func(q model.Question) bool { return q.Domain == dw.Name })
		for _, idx := range s.sample(pool, quota) {
			if _, ok := selected[idx]; ok {
				continue
			}
			selected[idx] = struct{}{}
			picked = append(picked, idx)
		}
	}

	if remaining := count - len(picked); remaining > 0 {
		unused := make([]int, 0, len(s.questions)-len(picked))
		for i := range s.questions {
			if _, ok := selected[i]; !ok {
				unused = append(unused, i)
			}
		}
		picked = append(picked, s.sample(unused, remaining)...)
	}

	s.shuffleIndexes(picked)
	// Rounded quotas can add up to more than count.
	if len(picked) > count {
		picked = picked[:count]
	}
	return s.collect(picked)
}

// DomainQuiz draws up to count questions from a single domain.
func (s *Selector) DomainQuiz(domain string, count int) []model.Question {
	if count <= 0 {
		return []model.Question{}
	}
	pool := s.indexesWhere(func(q model.Question) bool { return q.Domain == domain })
	return s.collect(s.sample(pool, count))
}

// Deck returns a shuffled flashcard deck for a domain, or for the whole bank
// when domain is empty or AllDomains.
func (s *Selector) Deck(domain string) []model.Question {
	all := domain == "" || domain == AllDomains
	pool := s.indexesWhere(func(q model.Question) bool { return all || q.Domain == domain })
	s.shuffleIndexes(pool)
	return s.collect(pool)
}

// Shuffle reorders questions in place.
func (s *Selector) Shuffle(questions []model.Question) {
	s.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}

// DomainStats reports bank size and weight for each weighted domain.
func (s *Selector) DomainStats() []model.DomainStat {
	counts := map[string]int{}
	for _, q := range s.questions {
		counts[q.Domain]++
	}
	out := make([]model.DomainStat, 0, len(s.weights))
	for _, dw := range s.weights {
		out = append(out, model.DomainStat{
			Domain: dw.Name,
			Total:  counts[dw.Name],
			Weight: dw.Weight,
		})
	}
	return out
}

func (s *Selector) indexesWhere(keep func(model.Question) bool) []int {
	var out []int
	for i, q := range s.questions {
		if keep(q) {
			out = append(out, i)
		}
	}
	return out
}

// sample draws min(n, len(pool)) indexes uniformly without replacement.
// pool is reordered in place.
func (s *Selector) sample(pool []int, n int) []int {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}
	// Partial Fisher-Yates: the first n slots end up uniformly chosen.
	for i := 0; i < n; i++ {
		j := i + s.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := make([]int, n)
	copy(out, pool[:n])
	return out
}

func (s *Selector) shuffleIndexes(idx []int) {
	s.rnd.Shuffle(len(idx), func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})
}

func (s *Selector) collect(idx []int) []model.Question {
	out := make([]model.Question, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.questions[i])
	}
	return out
}
