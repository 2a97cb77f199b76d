package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

type jobStatus string

const (
	jobKindList   jobKind = "list"
	jobKindOpen   jobKind = "open"
	jobKindRender jobKind = "render"
	jobKindQuiz   jobKind = "quiz"
	jobKindSave   jobKind = "save"
	jobKindTouch  jobKind = "touch"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusCancelled jobStatus = "cancelled"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID       string
	Kind     jobKind
	Status   jobStatus
	Duration time.Duration
	Err      error
}

func (s jobSnapshot) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s %s (duration=%s, err=%v)", s.ID, s.Status, s.Duration, s.Err)
	}
	return fmt.Sprintf("%s %s (duration=%s)", s.ID, s.Status, s.Duration)
}

// jobSignalMsg marks a job as running so the status bar can badge it.
type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobResultEnvelope carries the job's payload back to Update once it ends.
type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

// jobRunner does the blocking part of a job. Returning an error wrapping
// context.Canceled marks the job cancelled rather than failed.
type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	counter atomic.Int64
}

func newJobBus() *jobBus {
	return &jobBus{}
}

// Start runs runner off the update loop under ctx.
func (b *jobBus) Start(ctx context.Context, kind jobKind, runner jobRunner) tea.Cmd {
	if ctx == nil {
		ctx = context.Background()
	}
	running := jobSnapshot{
		ID:     fmt.Sprintf("%s-%d", kind, b.counter.Add(1)),
		Kind:   kind,
		Status: jobStatusRunning,
	}

	announce := func() tea.Msg { return jobSignalMsg{Snapshot: running} }
	run := func() tea.Msg {
		started := time.Now()
		payload, err := runner(ctx)
		done := running
		done.Duration = time.Since(started)
		done.Status = jobOutcome(err)
		if done.Status == jobStatusFailed {
			done.Err = err
		}
		log.Printf("[jobs] %s", done)
		return jobResultEnvelope{Snapshot: done, Payload: payload}
	}
	return tea.Sequence(announce, run)
}

func jobOutcome(err error) jobStatus {
	switch {
	case err == nil:
		return jobStatusSucceeded
	case errors.Is(err, context.Canceled):
		return jobStatusCancelled
	default:
		return jobStatusFailed
	}
}
