package session

import "github.com/csheth/pagewise/internal/plan"

// TextRange assembles cached page text in page order.
type TextRange interface {
	GetRange(start, end int) string
}

// Elapsed reports elapsed study seconds.
type Elapsed interface {
	Read() int
}

// Handoff is what the reader passes on when a day's goal is completed.
type Handoff struct {
	Day            plan.ReadingDay
	Text           string
	ElapsedSeconds int
	// ReuseQuiz is set when the day already carries a quiz; the generator
	// must not be called again.
	ReuseQuiz bool
}

// AtGoalBoundary reports whether displayPage is the last page of day.
func AtGoalBoundary(displayPage int, day plan.ReadingDay) bool {
	return displayPage == day.EndPage
}

// Progress returns the fraction of day read when displayPage is shown,
// clamped to [0, 1].
func Progress(displayPage int, day plan.ReadingDay) float64 {
	total := day.PageCount()
	if total <= 0 {
		return 0
	}
	done := float64(displayPage-day.StartPage+1) / float64(total)
	switch {
	case done < 0:
		return 0
	case done > 1:
		return 1
	default:
		return done
	}
}

// ClampPage keeps page inside the day window.
func ClampPage(page int, day plan.ReadingDay) int {
	if page < day.StartPage {
		return day.StartPage
	}
	if page > day.EndPage {
		return day.EndPage
	}
	return page
}

// Complete snapshots the day's collected text and elapsed time.
func Complete(texts TextRange, timer Elapsed, day plan.ReadingDay) Handoff {
	return Handoff{
		Day:            day,
		Text:           texts.GetRange(day.StartPage, day.EndPage),
		ElapsedSeconds: timer.Read(),
		ReuseQuiz:      day.HasQuiz(),
	}
}
