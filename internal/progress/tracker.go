// Package progress tracks study history across sessions.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/secprep/internal/model"
	"github.com/verte-zerg/secprep/internal/stats"
)

// StorageKey is the slot holding the serialized StudyProgress.
const StorageKey = "comptia-security-progress"

var errCorrupt = errors.New("corrupt progress record")

// Storage is a string-keyed persistence medium.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Tracker maintains the StudyProgress aggregate.
//
// Every mutation reads the whole record, updates it, and writes it back. The
// mutex serializes calls within one process only; two processes sharing a
// database can still overwrite each other's updates.
type Tracker struct {
	storage Storage
	now     func() time.Time
	mu      sync.Mutex
}

// New returns a Tracker backed by storage.
func New(storage Storage) *Tracker {
	return NewWithClock(storage, time.Now)
}

// NewWithClock returns a Tracker that timestamps events with now.
func NewWithClock(storage Storage, now func() time.Time) *Tracker {
	return &Tracker{storage: storage, now: now}
}

// Progress returns the stored aggregate. Missing, unreadable, or corrupt data
// yields a fresh default record.
func (t *Tracker) Progress(ctx context.Context) model.StudyProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// SaveQuizResult folds a completed quiz into the aggregate.
func (t *Tracker) SaveQuizResult(ctx context.Context, result model.QuizResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.load(ctx)
	p.TotalQuizzes++
	// Running mean of raw correct counts, not percentages.
	p.AverageScore = (p.AverageScore*float64(p.TotalQuizzes-1) + float64(result.Score)) / float64(p.TotalQuizzes)
	p.LastStudyDate = result.Date
	for domain, tally := range result.DomainBreakdown {
		p.DomainScores[domain] = append(p.DomainScores[domain], Percent(tally.Correct, tally.Total))
	}
	return t.save(ctx, p)
}

// UpdateFlashcardProgress records one flashcard study event.
func (t *Tracker) UpdateFlashcardProgress(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.load(ctx)
	p.FlashcardsStudied++
	p.LastStudyDate = t.now()
	return t.save(ctx, p)
}

// WeakDomains returns domains averaging below 70%, weakest first.
func (t *Tracker) WeakDomains(ctx context.Context) []string {
	return stats.WeakDomains(t.Progress(ctx).DomainScores, stats.WeakThreshold)
}

// Percent returns 100*correct/total, or 0 when total is not positive.
func Percent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) * 100 / float64(total)
}

// Default returns an empty aggregate stamped with now.
func Default(now time.Time) model.StudyProgress {
	return model.StudyProgress{
		DomainScores:  map[string][]float64{},
		LastStudyDate: now,
	}
}

func (t *Tracker) load(ctx context.Context) model.StudyProgress {
	raw, ok, err := t.storage.Get(ctx, StorageKey)
	if err != nil || !ok {
		return Default(t.now())
	}
	p, err := decode(raw)
	if err != nil {
		return Default(t.now())
	}
	return p
}

func (t *Tracker) save(ctx context.Context, p model.StudyProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := t.storage.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func decode(raw string) (model.StudyProgress, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return model.StudyProgress{}, errCorrupt
	}
	var p model.StudyProgress
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return model.StudyProgress{}, err
	}
	if p.TotalQuizzes < 0 || p.FlashcardsStudied < 0 {
		return model.StudyProgress{}, errCorrupt
	}
	// Every saved record carries a study date; an object without one was
	// not written by the tracker.
	if p.LastStudyDate.IsZero() {
		return model.StudyProgress{}, errCorrupt
	}
	if p.DomainScores == nil {
		p.DomainScores = map[string][]float64{}
	}
	return p, nil
}
