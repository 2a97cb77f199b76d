package session

import (
	"sync"
	"testing"
	"time"

	"github.com/csheth/pagewise/internal/pagetext"
	"github.com/csheth/pagewise/internal/plan"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTimerReadsWholeSeconds(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	timer := NewTimer(clock)
	if got := timer.Read(); got != 0 {
		t.Fatalf("Read() = %d at start", got)
	}

	clock.Advance(42*time.Second + 900*time.Millisecond)
	if got := timer.Read(); got != 42 {
		t.Fatalf("Read() = %d, want 42", got)
	}
	if got := timer.Read(); got != 42 {
		t.Fatalf("second Read() = %d, read must not change the count", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()

	cases := map[int]string{0: "0m 00s", 42: "0m 42s", 61: "1m 01s", 3600: "60m 00s", -5: "0m 00s"}
	for seconds, want := range cases {
		if got := FormatElapsed(seconds); got != want {
			t.Fatalf("FormatElapsed(%d) = %q, want %q", seconds, got, want)
		}
	}
}

func TestAtGoalBoundary(t *testing.T) {
	t.Parallel()

	day := plan.ReadingDay{DayNumber: 2, StartPage: 11, EndPage: 20}
	for page := 0; page <= 30; page++ {
		want := page == 20
		if got := AtGoalBoundary(page, day); got != want {
			t.Fatalf("AtGoalBoundary(%d) = %v, want %v", page, got, want)
		}
	}
}

func TestProgress(t *testing.T) {
	t.Parallel()

	day := plan.ReadingDay{StartPage: 11, EndPage: 20}
	cases := []struct {
		page int
		want float64
	}{
		{11, 0.1},
		{15, 0.5},
		{20, 1},
		{3, 0},
		{40, 1},
	}
	for _, tc := range cases {
		if got := Progress(tc.page, day); got < tc.want-1e-9 || got > tc.want+1e-9 {
			t.Fatalf("Progress(%d) = %v, want %v", tc.page, got, tc.want)
		}
	}
	if got := ClampPage(25, day); got != 20 {
		t.Fatalf("ClampPage(25) = %d", got)
	}
	if got := ClampPage(1, day); got != 11 {
		t.Fatalf("ClampPage(1) = %d", got)
	}
}

func TestCompleteGathersDayText(t *testing.T) {
	t.Parallel()

	cache := pagetext.New()
	cache.Put(3, "third")
	cache.Put(1, "first")
	cache.Put(2, "second")
	cache.Put(4, "next day")
	clock := &fakeClock{now: time.Unix(0, 0)}
	timer := NewTimer(clock)
	clock.Advance(95 * time.Second)

	day := plan.ReadingDay{DayNumber: 1, StartPage: 1, EndPage: 3}
	handoff := Complete(cache, timer, day)
	if handoff.Text != "first second third" {
		t.Fatalf("Text = %q", handoff.Text)
	}
	if handoff.ElapsedSeconds != 95 {
		t.Fatalf("ElapsedSeconds = %d", handoff.ElapsedSeconds)
	}
	if handoff.ReuseQuiz {
		t.Fatal("day without a quiz must request generation")
	}

	day.Quiz = []plan.QuizQuestion{{Question: "q", Options: []string{"a", "b"}}}
	if !Complete(cache, timer, day).ReuseQuiz {
		t.Fatal("stored quiz should be reused")
	}
}
