package tui

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pagewise/internal/document"
	"github.com/csheth/pagewise/internal/pagetext"
	"github.com/csheth/pagewise/internal/plan"
	"github.com/csheth/pagewise/internal/render"
	"github.com/csheth/pagewise/internal/session"
)

// readerSession is everything owned by one open reading day. It is dropped
// as a whole when the reader closes or the document changes.
type readerSession struct {
	id       int
	plan     *plan.Plan
	dayIndex int
	day      plan.ReadingDay

	doc       *document.Document
	pipeline  *render.Pipeline
	scheduler *render.Scheduler
	texts     *pagetext.Cache
	timer     *session.Timer

	surface      *render.Canvas
	surfacePage  int
	renderFailed string

	// handoff survives a failed quiz generation so a retry needs no re-read.
	handoff *session.Handoff
	quizErr string
}

func (m *model) openPlan(planID string, known *plan.Plan) tea.Cmd {
	if m.loading {
		return nil
	}
	if m.config.Plans == nil || m.config.Blobs == nil {
		m.errorMessage = "No plan store configured."
		return nil
	}
	m.loading = true
	m.stage = stageLoading
	m.errorMessage = ""
	m.infoMessage = "Opening document…"
	job := m.jobs.Start(m.config.Context, jobKindOpen, openPlanJob(m.config.Plans, m.config.Blobs, m.config.Loader, planID, known))
	return tea.Batch(job, m.spinner.Tick)
}

func (m *model) handleDocumentLoaded(msg documentLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.stage = stageLibrary
		var parseErr *document.ParseError
		if errors.As(msg.err, &parseErr) {
			m.errorMessage = fmt.Sprintf("This PDF cannot be read (%v). Re-import it to continue.", parseErr.Err)
		} else {
			m.errorMessage = "Could not open plan: " + msg.err.Error()
		}
		m.infoMessage = ""
		return m, m.refreshLibrary()
	}

	day, ok := msg.plan.CurrentDay()
	if !ok {
		m.stage = stageLibrary
		m.errorMessage = "Plan has no reading days."
		return m, nil
	}
	pipeline, err := render.NewPipeline(render.DocumentSource(msg.doc), m.config.Reader.SurfaceCacheSize)
	if err != nil {
		m.stage = stageLibrary
		m.errorMessage = err.Error()
		return m, nil
	}
	if day.EndPage > msg.doc.PageCount() {
		m.stage = stageLibrary
		m.errorMessage = fmt.Sprintf("Plan expects %d pages but the stored PDF has %d.", day.EndPage, msg.doc.PageCount())
		return m, nil
	}

	m.closeReader()
	m.sessionSeq++
	m.reader = &readerSession{
		id:        m.sessionSeq,
		plan:      msg.plan,
		dayIndex:  msg.plan.CurrentDayIndex,
		day:       day,
		doc:       msg.doc,
		pipeline:  pipeline,
		scheduler: render.NewScheduler(m.config.Reader.Quiescence),
		texts:     pagetext.New(),
		timer:     session.NewTimer(m.config.Clock),
	}
	m.stage = stageReader
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Day %d: pages %d-%d.", day.DayNumber, day.StartPage, day.EndPage)
	m.viewport.SetContent("")
	m.viewport.GotoTop()

	now := m.config.Clock.Now()
	msg.plan.LastAccessed = now
	cmds := []tea.Cmd{
		m.setDisplay(render.DisplayState{Page: day.StartPage, Zoom: m.config.Reader.InitialZoom}),
		m.timerTick(),
		m.jobs.Start(m.config.Context, jobKindTouch, touchPlanJob(m.config.Plans, msg.plan.ID, now)),
	}
	return m, tea.Batch(cmds...)
}

// closeReader tears down the session; an in-flight render is cancelled and
// its result will not match any session.
func (m *model) closeReader() {
	if m.reader == nil {
		return
	}
	m.reader.scheduler.ResetDocument()
	m.reader = nil
}

// setDisplay applies a display change at once and schedules the debounced
// render request.
func (m *model) setDisplay(state render.DisplayState) tea.Cmd {
	r := m.reader
	ticket := r.scheduler.SetDisplay(state)
	id := r.id
	return tea.Tick(r.scheduler.Quiescence(), func(time.Time) tea.Msg {
		return debounceMsg{session: id, ticket: ticket}
	})
}

func (m *model) handleDebounce(msg debounceMsg) tea.Cmd {
	r := m.reader
	if r == nil || msg.session != r.id {
		return nil
	}
	req, ok := r.scheduler.Fire(msg.ticket)
	if !ok {
		return nil
	}
	ctx := r.scheduler.Begin(m.config.Context, req)
	id := r.id
	return tea.Tick(m.config.Reader.FrameInterval, func(time.Time) tea.Msg {
		return frameMsg{session: id, req: req, ctx: ctx}
	})
}

func (m *model) handleFrame(msg frameMsg) tea.Cmd {
	r := m.reader
	if r == nil || msg.session != r.id || !r.scheduler.IsCurrent(msg.req) {
		return nil
	}
	return m.jobs.Start(msg.ctx, jobKindRender, renderJob(r.pipeline, r.id, msg.req))
}

func (m *model) handleRenderResult(msg renderResultMsg) {
	r := m.reader
	if r == nil || msg.session != r.id {
		return
	}
	out := msg.outcome
	current := r.scheduler.IsCurrent(out.Request)
	if !r.scheduler.Finish(out) {
		if current && out.Status == render.StatusFailed {
			r.renderFailed = fmt.Sprintf("Page %d failed to render. Move to another page to retry.", out.Request.Page)
			log.Printf("[reader] %v", out.Err)
		}
		return
	}
	r.renderFailed = ""
	r.surface = out.Surface
	r.surfacePage = out.Request.Page
	r.texts.Put(out.Request.Page, out.Text)
	m.viewport.SetContent(out.Surface.String())
	m.viewport.GotoTop()
}

func (m *model) timerTick() tea.Cmd {
	id := m.reader.id
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{session: id}
	})
}

func (m *model) handleReaderKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.reader
	if r == nil {
		m.stage = stageLibrary
		return m, nil
	}
	display := r.scheduler.Display()
	switch key.String() {
	case "right", "l", "n":
		if display.Page < r.day.EndPage {
			display.Page++
			return m, m.setDisplay(display)
		}
		return m, nil
	case "left", "h", "p":
		if display.Page > r.day.StartPage {
			display.Page--
			return m, m.setDisplay(display)
		}
		return m, nil
	case "+", "=":
		if zoom := clampZoom(display.Zoom + zoomStep); zoom != display.Zoom {
			display.Zoom = zoom
			return m, m.setDisplay(display)
		}
		return m, nil
	case "-", "_":
		if zoom := clampZoom(display.Zoom - zoomStep); zoom != display.Zoom {
			display.Zoom = zoom
			return m, m.setDisplay(display)
		}
		return m, nil
	case "c", "enter":
		return m.completeDay()
	case "r":
		if r.handoff != nil && r.quizErr != "" {
			return m.requestQuiz()
		}
		return m, nil
	case "esc", "q":
		m.closeReader()
		m.stage = stageLibrary
		m.infoMessage = "Session closed."
		return m, m.refreshLibrary()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

func clampZoom(zoom float64) float64 {
	zoom = math.Round(zoom*100) / 100
	return math.Max(minZoom, math.Min(maxZoom, zoom))
}

// completeDay hands the collected text and elapsed time to quiz generation,
// or straight to the quiz when the day already has one.
func (m *model) completeDay() (tea.Model, tea.Cmd) {
	r := m.reader
	if !session.AtGoalBoundary(r.scheduler.Display().Page, r.day) {
		m.infoMessage = fmt.Sprintf("Reach page %d to finish the day.", r.day.EndPage)
		return m, nil
	}
	if r.handoff == nil {
		handoff := session.Complete(r.texts, r.timer, r.day)
		r.handoff = &handoff
	}
	if r.handoff.ReuseQuiz {
		m.startQuiz(r.day.Quiz)
		return m, nil
	}
	return m.requestQuiz()
}

func (m *model) requestQuiz() (tea.Model, tea.Cmd) {
	r := m.reader
	if m.config.LLM == nil {
		r.quizErr = "no quiz generator configured"
		m.errorMessage = "Configure Ollama or OpenAI to generate quizzes."
		return m, nil
	}
	if missing := r.texts.Missing(r.day.StartPage, r.day.EndPage); len(missing) > 0 {
		log.Printf("[reader] completing day %d without text for pages %v", r.day.DayNumber, missing)
	}
	r.quizErr = ""
	m.errorMessage = ""
	m.stage = stageGenerating
	m.infoMessage = fmt.Sprintf("Generating quiz with %s…", m.config.LLM.Name())
	job := m.jobs.Start(m.config.Context, jobKindQuiz, generateQuizJob(m.config.LLM, r.plan.ID, r.dayIndex, r.handoff.Text, r.plan.FileName))
	return m, tea.Batch(job, m.spinner.Tick)
}

// quizFailed returns to the reader with the handoff kept so r retries.
func (m *model) quizFailed(prefix string, err error) {
	m.stage = stageReader
	m.reader.quizErr = err.Error()
	m.errorMessage = prefix + err.Error()
	m.infoMessage = "Press r to retry. Your reading time and pages are kept."
}

func (m *model) handleQuizResult(msg quizResultMsg) (tea.Model, tea.Cmd) {
	r := m.reader
	if r == nil || r.plan.ID != msg.planID || r.dayIndex != msg.dayIndex || m.stage != stageGenerating {
		return m, nil
	}
	if msg.err != nil {
		m.quizFailed("Quiz generation failed: ", msg.err)
		return m, nil
	}
	if err := r.plan.StoreQuiz(r.dayIndex, msg.quiz); err != nil {
		m.quizFailed("Could not keep the quiz: ", err)
		return m, nil
	}
	r.day.Quiz = msg.quiz
	r.handoff.ReuseQuiz = true
	m.startQuiz(msg.quiz)
	return m, m.jobs.Start(m.config.Context, jobKindSave, savePlanJob(m.config.Plans, r.plan, m.config.SaveTimeout))
}
