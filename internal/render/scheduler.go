// Package render schedules and runs page renders for a single viewport.
package render

import (
	"context"
	"time"
)

// DefaultQuiescence is how long display changes must settle before a render
// starts.
const DefaultQuiescence = 150 * time.Millisecond

// DisplayState is what the user asked to see. It changes instantly.
type DisplayState struct {
	Page int
	Zoom float64
}

// Request is a snapshot of DisplayState taken once the quiescence window
// closed. IDs increase with every request.
type Request struct {
	ID   uint64
	Page int
	Zoom float64
}

// Ticket identifies one quiescence window. Only the newest ticket can fire.
type Ticket uint64

// Phase is the scheduler's position in the render lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseRendering
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Status is how a render ended.
type Status int

const (
	StatusNone Status = iota
	StatusCommitted
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCommitted:
		return "committed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "none"
	}
}

// Scheduler maps display changes to at most one current render. It holds no
// goroutines or timers of its own; callers drive it from a single loop and
// arrange for Fire to be called Quiescence after SetDisplay.
type Scheduler struct {
	quiescence time.Duration

	display DisplayState
	ticket  Ticket
	lastID  uint64
	current Request
	cancel  context.CancelFunc

	phase      Phase
	lastStatus Status
	lastErr    error
}

// NewScheduler returns an idle scheduler. A non-positive quiescence uses
// DefaultQuiescence.
func NewScheduler(quiescence time.Duration) *Scheduler {
	if quiescence <= 0 {
		quiescence = DefaultQuiescence
	}
	return &Scheduler{quiescence: quiescence}
}

func (s *Scheduler) Quiescence() time.Duration { return s.quiescence }

// Display returns the latest requested display state.
func (s *Scheduler) Display() DisplayState { return s.display }

func (s *Scheduler) Phase() Phase { return s.phase }

// Current returns the request that is allowed to commit.
func (s *Scheduler) Current() Request { return s.current }

// LastStatus reports how the last current render ended.
func (s *Scheduler) LastStatus() (Status, error) { return s.lastStatus, s.lastErr }

// SetDisplay records state and opens a new quiescence window. Tickets issued
// earlier become stale.
func (s *Scheduler) SetDisplay(state DisplayState) Ticket {
	s.display = state
	s.ticket++
	s.phase = PhaseDebouncing
	return s.ticket
}

// Fire closes the quiescence window of t. It returns false for stale tickets.
func (s *Scheduler) Fire(t Ticket) (Request, bool) {
	if t != s.ticket {
		return Request{}, false
	}
	s.ticket++
	s.lastID++
	s.current = Request{ID: s.lastID, Page: s.display.Page, Zoom: s.display.Zoom}
	return s.current, true
}

// Begin starts req, cancelling whatever render was in flight. The previous
// render is not awaited; it observes its cancelled context on its own.
func (s *Scheduler) Begin(parent context.Context, req Request) context.Context {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.phase = PhaseRendering
	return ctx
}

// IsCurrent reports whether req is still the request allowed to commit.
func (s *Scheduler) IsCurrent(req Request) bool {
	return req.ID != 0 && req.ID == s.current.ID
}

// Finish records out. It returns true only when out committed and belongs to
// the current request; results of superseded requests are ignored.
func (s *Scheduler) Finish(out Outcome) bool {
	if !s.IsCurrent(out.Request) {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.lastStatus = out.Status
	s.lastErr = out.Err
	if s.phase == PhaseRendering {
		s.phase = PhaseIdle
	}
	return out.Status == StatusCommitted
}

// ResetDocument drops in-flight work and pending windows, for when the
// document behind the viewport changes.
func (s *Scheduler) ResetDocument() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.ticket++
	s.current = Request{}
	s.phase = PhaseIdle
	s.lastStatus = StatusNone
	s.lastErr = nil
}
