package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pagewise/internal/plan"
)

type quizState struct {
	questions []plan.QuizQuestion
	index     int
	cursor    int
	answers   []int
	// revealed is set once the current question was answered.
	revealed bool
	score    int
}

func (m *model) startQuiz(questions []plan.QuizQuestion) {
	m.quiz = quizState{
		questions: questions,
		answers:   make([]int, len(questions)),
	}
	for i := range m.quiz.answers {
		m.quiz.answers[i] = -1
	}
	m.stage = stageQuiz
	m.errorMessage = ""
	m.infoMessage = "Pick an answer with 1-9 or the arrows and Enter."
}

func (q *quizState) current() (plan.QuizQuestion, bool) {
	if q.index < 0 || q.index >= len(q.questions) {
		return plan.QuizQuestion{}, false
	}
	return q.questions[q.index], true
}

func (m *model) handleQuizKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := &m.quiz
	question, ok := q.current()
	if !ok {
		return m.finishQuiz()
	}
	if q.revealed {
		switch key.String() {
		case "enter", "right", "l", " ":
			q.index++
			q.cursor = 0
			q.revealed = false
			if q.index >= len(q.questions) {
				return m.finishQuiz()
			}
		case "esc":
			return m.abandonQuiz()
		}
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if q.cursor > 0 {
			q.cursor--
		}
	case "down", "j":
		if q.cursor < len(question.Options)-1 {
			q.cursor++
		}
	case "enter", " ":
		m.answer(q.cursor)
	case "esc":
		return m.abandonQuiz()
	default:
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(question.Options) {
			q.cursor = n - 1
			m.answer(n - 1)
		}
	}
	return m, nil
}

func (m *model) answer(option int) {
	q := &m.quiz
	q.answers[q.index] = option
	q.revealed = true
}

// abandonQuiz returns to the reader; the generated quiz stays on the day.
func (m *model) abandonQuiz() (tea.Model, tea.Cmd) {
	if m.reader == nil {
		m.stage = stageLibrary
		return m, m.refreshLibrary()
	}
	m.stage = stageReader
	m.infoMessage = "Quiz saved for later. Press c to take it."
	return m, nil
}

// finishQuiz records the result on the day and advances the plan.
func (m *model) finishQuiz() (tea.Model, tea.Cmd) {
	q := &m.quiz
	q.score = plan.Score(q.questions, q.answers)
	m.stage = stageResult
	r := m.reader
	if r == nil {
		return m, nil
	}
	if err := r.plan.CompleteDay(r.dayIndex, q.score, r.handoff.ElapsedSeconds, q.questions, q.answers); err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}
	m.infoMessage = "Progress saved. Enter returns to the library."
	return m, m.jobs.Start(m.config.Context, jobKindSave, savePlanJob(m.config.Plans, r.plan, m.config.SaveTimeout))
}

func (m *model) handleResultKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter", "esc", "q":
		m.closeReader()
		m.stage = stageLibrary
		return m, m.refreshLibrary()
	}
	return m, nil
}
