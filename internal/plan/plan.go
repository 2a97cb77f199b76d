package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrDayOutOfRange reports a day index outside the plan.
var ErrDayOutOfRange = errors.New("day index out of range")

// DefaultPagesPerDay is the day size used when a caller passes a non-positive value.
const DefaultPagesPerDay = 10

// QuizQuestion is one multiple-choice question generated for a reading day.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// ReadingDay is a contiguous page window assigned to one study session.
type ReadingDay struct {
	DayNumber        int            `json:"dayNumber"`
	StartPage        int            `json:"startPage"`
	EndPage          int            `json:"endPage"`
	IsCompleted      bool           `json:"isCompleted"`
	QuizScore        *int           `json:"quizScore,omitempty"`
	TimeSpentSeconds *int           `json:"timeSpentSeconds,omitempty"`
	Quiz             []QuizQuestion `json:"quiz,omitempty"`
	UserAnswers      []int          `json:"userAnswers,omitempty"`
}

// PageCount reports how many pages the day spans.
func (d ReadingDay) PageCount() int {
	return d.EndPage - d.StartPage + 1
}

// Contains reports whether page falls inside the day window.
func (d ReadingDay) Contains(page int) bool {
	return page >= d.StartPage && page <= d.EndPage
}

// HasQuiz reports whether a quiz was already generated for the day.
func (d ReadingDay) HasQuiz() bool {
	return len(d.Quiz) > 0
}

// Plan is a stored reading plan for one document.
type Plan struct {
	ID               string       `json:"id"`
	FileName         string       `json:"fileName"`
	OriginalFileName string       `json:"originalFileName"`
	TotalPages       int          `json:"totalPages"`
	Days             []ReadingDay `json:"days"`
	CurrentDayIndex  int          `json:"currentDayIndex"`
	BlobKey          string       `json:"blobKey"`
	LastAccessed     time.Time    `json:"lastAccessed"`
}

// InvalidSelectionError reports a page selection that cannot produce a plan.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	if e.Reason == "" {
		return "invalid page selection"
	}
	return "invalid page selection: " + e.Reason
}

// Paginate splits selectedPageCount pages into consecutive day windows of
// pagesPerDay pages. The last day absorbs the remainder.
func Paginate(selectedPageCount, pagesPerDay int) ([]ReadingDay, error) {
	if selectedPageCount <= 0 {
		return nil, &InvalidSelectionError{Reason: "select at least one page"}
	}
	if pagesPerDay <= 0 {
		pagesPerDay = DefaultPagesPerDay
	}
	totalDays := (selectedPageCount + pagesPerDay - 1) / pagesPerDay
	days := make([]ReadingDay, 0, totalDays)
	for i := 0; i < totalDays; i++ {
		end := (i + 1) * pagesPerDay
		if end > selectedPageCount {
			end = selectedPageCount
		}
		days = append(days, ReadingDay{
			DayNumber: i + 1,
			StartPage: i*pagesPerDay + 1,
			EndPage:   end,
		})
	}
	return days, nil
}

// New plans selectedPageCount pages of a trimmed document. blobKey names the
// stored trimmed PDF.
func New(fileName, originalFileName string, selectedPageCount, pagesPerDay int, blobKey string, now time.Time) (*Plan, error) {
	days, err := Paginate(selectedPageCount, pagesPerDay)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ID:               uuid.NewString(),
		FileName:         fileName,
		OriginalFileName: originalFileName,
		TotalPages:       selectedPageCount,
		Days:             days,
		BlobKey:          blobKey,
		LastAccessed:     now,
	}, nil
}

// Finished reports whether every day carries a quiz result.
func (p *Plan) Finished() bool {
	return len(p.Days) > 0 && p.CompletedDays() == len(p.Days)
}

// CurrentDay returns the day the reader should open next.
func (p *Plan) CurrentDay() (ReadingDay, bool) {
	if p.CurrentDayIndex < 0 || p.CurrentDayIndex >= len(p.Days) {
		return ReadingDay{}, false
	}
	return p.Days[p.CurrentDayIndex], true
}

// CompletedDays counts the days with a recorded quiz result.
func (p *Plan) CompletedDays() int {
	count := 0
	for _, day := range p.Days {
		if day.IsCompleted {
			count++
		}
	}
	return count
}

// StoreQuiz attaches a generated quiz to the day at index without completing
// it, so a later session can reuse it.
func (p *Plan) StoreQuiz(index int, quiz []QuizQuestion) error {
	if index < 0 || index >= len(p.Days) {
		return errors.Wrapf(ErrDayOutOfRange, "day %d of %d", index, len(p.Days))
	}
	p.Days[index].Quiz = append([]QuizQuestion(nil), quiz...)
	return nil
}

// CompleteDay records the quiz result for the day at index and moves the plan
// to the following day when one exists.
func (p *Plan) CompleteDay(index, score, timeSpentSeconds int, quiz []QuizQuestion, answers []int) error {
	if index < 0 || index >= len(p.Days) {
		return errors.Wrapf(ErrDayOutOfRange, "day %d of %d", index, len(p.Days))
	}
	day := &p.Days[index]
	day.IsCompleted = true
	day.QuizScore = &score
	day.TimeSpentSeconds = &timeSpentSeconds
	if len(quiz) > 0 {
		day.Quiz = append([]QuizQuestion(nil), quiz...)
	}
	day.UserAnswers = append([]int(nil), answers...)
	if index == p.CurrentDayIndex && index+1 < len(p.Days) {
		p.CurrentDayIndex = index + 1
	}
	return nil
}

// Score counts the answers that match the correct option of each question.
func Score(quiz []QuizQuestion, answers []int) int {
	score := 0
	for i, question := range quiz {
		if i < len(answers) && answers[i] == question.CorrectAnswer {
			score++
		}
	}
	return score
}
