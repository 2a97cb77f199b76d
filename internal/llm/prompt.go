package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/csheth/pagewise/internal/plan"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// cleanText drops control characters, collapses whitespace and clips the
// result to limit runes.
func cleanText(text string, limit int) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	return clipText(whitespaceRe.ReplaceAllString(text, " "), limit)
}

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit]))
}

func buildQuizPrompt(title, context string) string {
	if title == "" {
		title = "the document"
	}
	return fmt.Sprintf(`You are a study coach checking comprehension of a day's reading.
Write a multiple-choice quiz with exactly %d questions based ONLY on the text below.
Each question has 4 options, the 0-based index of the correct option, and a one-sentence explanation.
Answer in the same language as the text.
Return ONLY JSON formatted as {"questions":[{"question":"","options":["","","",""],"correctAnswer":0,"explanation":""}]}.

Document: %s

Text:
%s`, quizSize, title, context)
}

func parseQuiz(raw string) ([]plan.QuizQuestion, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty quiz response")
	}

	candidates := []string{raw}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			candidates = append(candidates, raw[start:end+1])
		}
	}
	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.LastIndex(raw, "]"); end > start {
			candidates = append(candidates, raw[start:end+1])
		}
	}

	for _, candidate := range candidates {
		var arr []plan.QuizQuestion
		if err := json.Unmarshal([]byte(candidate), &arr); err == nil {
			if quiz := sanitizeQuiz(arr); len(quiz) > 0 {
				return quiz, nil
			}
			continue
		}
		var wrapper struct {
			Questions []plan.QuizQuestion `json:"questions"`
			Quiz      []plan.QuizQuestion `json:"quiz"`
		}
		if err := json.Unmarshal([]byte(candidate), &wrapper); err == nil {
			values := wrapper.Questions
			if len(values) == 0 {
				values = wrapper.Quiz
			}
			if quiz := sanitizeQuiz(values); len(quiz) > 0 {
				return quiz, nil
			}
		}
	}
	return nil, fmt.Errorf("unable to parse quiz payload")
}

// sanitizeQuiz drops questions that cannot be answered: no text, fewer than
// two options, or a correct index outside the options.
func sanitizeQuiz(questions []plan.QuizQuestion) []plan.QuizQuestion {
	result := make([]plan.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		clean := plan.QuizQuestion{
			Question:      strings.TrimSpace(whitespaceRe.ReplaceAllString(q.Question, " ")),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   strings.TrimSpace(q.Explanation),
		}
		for _, option := range q.Options {
			if option = strings.TrimSpace(option); option != "" {
				clean.Options = append(clean.Options, option)
			}
		}
		if clean.Question == "" || len(clean.Options) < 2 || len(clean.Options) != len(q.Options) {
			continue
		}
		if clean.CorrectAnswer < 0 || clean.CorrectAnswer >= len(clean.Options) {
			continue
		}
		result = append(result, clean)
	}
	return result
}
