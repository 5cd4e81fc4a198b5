package bank

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/secprep/internal/model"
)

// ErrInvalidQuestion is returned for a malformed bank record.
var ErrInvalidQuestion = errors.New("invalid question")

// Validate checks that a question can be asked and graded.
func Validate(q model.Question) error {
	if strings.TrimSpace(q.Domain) == "" {
		return fmt.Errorf("%w: empty domain", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: empty question text", ErrInvalidQuestion)
	}
	if len(q.Choices) < 2 {
		return fmt.Errorf("%w: need at least 2 choices, got %d", ErrInvalidQuestion, len(q.Choices))
	}
	for _, choice := range q.Choices {
		if choice == q.Answer {
			return nil
		}
	}
	return fmt.Errorf("%w: answer %q is not one of the choices", ErrInvalidQuestion, q.Answer)
}
