// Package bank loads the question bank.
package bank

import (
	"bytes"
	_ "embed" // Default question bank.
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/verte-zerg/secprep/internal/model"
)

//go:embed data/questions.json
var defaultBank []byte

// ErrEmptyBank is returned when a bank contains no questions.
var ErrEmptyBank = errors.New("question bank is empty")

// Default returns the embedded question bank.
func Default() ([]model.Question, error) {
	return Decode(bytes.NewReader(defaultBank))
}

// LoadQuestions reads a JSON question bank from the provided file path.
func LoadQuestions(path string) ([]model.Question, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only bank file.
			_ = cerr
		}
	}()
	return Decode(file)
}

// Load returns the bank at path, or the embedded bank when path is empty.
func Load(path string) ([]model.Question, error) {
	if path == "" {
		return Default()
	}
	return LoadQuestions(path)
}

// Decode parses and validates a JSON array of questions.
func Decode(r io.Reader) ([]model.Question, error) {
	var questions []model.Question
	if err := json.NewDecoder(r).Decode(&questions); err != nil {
		return nil, fmt.Errorf("failed to decode question bank: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}
	for i, q := range questions {
		if err := Validate(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}
	return questions, nil
}
