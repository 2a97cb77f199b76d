package tui

import (
	"context"

	"github.com/csheth/pagewise/internal/document"
	"github.com/csheth/pagewise/internal/plan"
	"github.com/csheth/pagewise/internal/render"
)

type stage int

const (
	stageLibrary stage = iota
	stageLoading
	stageReader
	stageGenerating
	stageQuiz
	stageResult
)

const heroTagline = "Read a little every day. Prove it with a quiz."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
)

const (
	minZoom  = 0.5
	maxZoom  = 4.0
	zoomStep = 0.25
)

type plansLoadedMsg struct {
	plans []*plan.Plan
	err   error
}

type documentLoadedMsg struct {
	plan *plan.Plan
	doc  *document.Document
	err  error
}

// debounceMsg arrives once the quiescence window of ticket elapsed.
type debounceMsg struct {
	session int
	ticket  render.Ticket
}

// frameMsg arrives one frame after a render request began, so the new page
// label is on screen before the paint starts.
type frameMsg struct {
	session int
	req     render.Request
	ctx     context.Context
}

type renderResultMsg struct {
	session int
	outcome render.Outcome
}

type timerTickMsg struct {
	session int
}

type quizResultMsg struct {
	planID   string
	dayIndex int
	quiz     []plan.QuizQuestion
	err      error
}

type planSavedMsg struct {
	planID string
	err    error
}
