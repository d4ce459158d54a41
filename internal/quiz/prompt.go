package quiz

import (
	"fmt"
	"strings"

	"github.com/danielokoye-py/Notestack/internal/models"
	"github.com/danielokoye-py/Notestack/internal/retrieval"
)

// BuildPrompt formats the quiz generation request for the LLM. The model is
// asked for a bare JSON array so the parser has a fighting chance; it does not
// always comply, which is what the parser's cleanup paths and the fallback
// questions are for.
func BuildPrompt(questionCount int, types []string, docs []retrieval.DocContext) string {
	if questionCount <= 0 {
		questionCount = 5
	}
	if len(types) == 0 {
		types = []string{"mcq"}
	}

	var content strings.Builder
	for i, d := range docs {
		if i > 0 {
			content.WriteString("\n\n")
		}
		fmt.Fprintf(&content, "Document: %s\n%s", d.Filename, d.Content)
	}

	return fmt.Sprintf(`
Based on the following document content, generate %d educational quiz questions.

Document Content:
%s

Requirements:
1. Generate a mix of question types: %s
2. Include questions of varying difficulty levels (easy, medium, hard)
3. For MCQ questions, provide 4 options with only one correct answer
4. For SAQ (Short Answer Questions), expect 1-2 sentence answers
5. For LAQ (Long Answer Questions), expect paragraph-length answers
6. Include detailed explanations for all correct answers
7. Focus on key concepts, main ideas, and important details from the documents

Return ONLY a valid JSON array of questions in this exact format:
[
  {
    "id": "unique_id_1",
    "type": "mcq",
    "question": "Question text here?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct_answer": "Exact correct option text",
    "explanation": "Detailed explanation of why this is correct and what concept it tests",
    "difficulty": "easy|medium|hard"
  },
  {
    "id": "unique_id_2",
    "type": "saq",
    "question": "Question text here?",
    "correct_answer": "Expected short answer",
    "explanation": "Explanation of the answer and concept",
    "difficulty": "easy|medium|hard"
  }
]

Important:
- Make questions directly relevant to the document content
- Ensure variety in topics covered
- Use clear, educational language
- Test understanding, not just memorization
- Return ONLY the JSON array, no other text
`, questionCount, content.String(), strings.Join(types, ", "))
}

// FallbackQuestions are substituted when the model's output cannot be parsed
// into valid questions, so a flaky model never fails the request outright.
func FallbackQuestions() []models.QuizQuestion {
	return []models.QuizQuestion{
		{
			ID:       "fallback_1",
			Type:     "mcq",
			Question: "Based on the documents, what is the main topic discussed?",
			Options: []string{
				"Primary concept from the document",
				"Secondary concept",
				"Unrelated topic A",
				"Unrelated topic B",
			},
			CorrectAnswer: "Primary concept from the document",
			Explanation:   "This is the main focus of the provided documents based on the content analysis.",
			Difficulty:    "medium",
		},
		{
			ID:            "fallback_2",
			Type:          "saq",
			Question:      "Summarize the key takeaway from the documents in 1-2 sentences.",
			CorrectAnswer: "The documents focus on important concepts that require understanding and application.",
			Explanation:   "A good summary should capture the essential information and main themes presented.",
			Difficulty:    "easy",
		},
	}
}
