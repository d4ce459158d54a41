package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danielokoye-py/Notestack/internal/models"
)

// ErrNoValidQuestions means the model's output parsed as JSON but contained
// nothing usable after validation.
var ErrNoValidQuestions = errors.New("no valid questions in model output")

// ParseQuestions turns raw LLM output into validated quiz questions. The model
// is told to return a bare JSON array but frequently wraps it in markdown
// fences or prose, so parsing strips fences first and then falls back to
// slicing out the outermost array. Questions missing any required field are
// filtered out; surviving questions without an id get one assigned. The
// caller decides what a parse failure means (the quiz handler substitutes
// FallbackQuestions).
func ParseQuestions(raw string) ([]models.QuizQuestion, error) {
	text := stripCodeFences(strings.TrimSpace(raw))

	questions, err := unmarshalQuestions(text)
	if err != nil {
		// Second chance: slice out the outermost JSON array from prose.
		start := strings.Index(text, "[")
		end := strings.LastIndex(text, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON array in model output: %w", err)
		}
		questions, err = unmarshalQuestions(text[start : end+1])
		if err != nil {
			return nil, fmt.Errorf("model output is not a question array: %w", err)
		}
	}

	valid := questions[:0]
	for _, q := range questions {
		if q.Question == "" || q.CorrectAnswer == "" || q.Explanation == "" || q.Type == "" || q.Difficulty == "" {
			continue
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidQuestions
	}
	return valid, nil
}

func unmarshalQuestions(text string) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func stripCodeFences(text string) string {
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		return strings.TrimSpace(text)
	}
	return text
}
