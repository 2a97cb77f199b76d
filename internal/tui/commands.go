package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pagewise/internal/document"
	"github.com/csheth/pagewise/internal/llm"
	"github.com/csheth/pagewise/internal/plan"
	"github.com/csheth/pagewise/internal/render"
)

func listPlansJob(plans PlanStore) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 10*time.Second)
		defer cancel()
		list, err := plans.ListPlans(ctx)
		return plansLoadedMsg{plans: list, err: err}, err
	}
}

// openPlanJob fetches the plan when only its id is known, then its blob, then
// parses the document.
func openPlanJob(plans PlanStore, blobs BlobSource, loader *document.Loader, planID string, known *plan.Plan) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		p := known
		if p == nil {
			var err error
			if p, err = plans.GetPlan(ctx, planID); err != nil {
				return documentLoadedMsg{err: err}, err
			}
		}
		data, err := blobs.Get(p.BlobKey)
		if err != nil {
			return documentLoadedMsg{plan: p, err: err}, err
		}
		doc, err := loader.Load(ctx, data)
		return documentLoadedMsg{plan: p, doc: doc, err: err}, err
	}
}

func renderJob(pipeline *render.Pipeline, session int, req render.Request) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		out := pipeline.Run(ctx, req)
		msg := renderResultMsg{session: session, outcome: out}
		switch out.Status {
		case render.StatusCancelled:
			return msg, context.Canceled
		case render.StatusFailed:
			return msg, out.Err
		default:
			return msg, nil
		}
	}
}

func generateQuizJob(client llm.Client, planID string, dayIndex int, text, title string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 3*time.Minute)
		defer cancel()
		quiz, err := client.GenerateQuiz(ctx, text, title)
		return quizResultMsg{planID: planID, dayIndex: dayIndex, quiz: quiz, err: err}, err
	}
}

func savePlanJob(plans PlanStore, p *plan.Plan, timeout time.Duration) jobRunner {
	snapshot := clonePlan(p)
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		err := plans.SavePlan(ctx, snapshot)
		return planSavedMsg{planID: snapshot.ID, err: err}, err
	}
}

func touchPlanJob(plans PlanStore, planID string, at time.Time) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 5*time.Second)
		defer cancel()
		return nil, plans.Touch(ctx, planID, at)
	}
}

// clonePlan copies p deeply enough that a background save never observes
// later edits made by the update loop.
func clonePlan(p *plan.Plan) *plan.Plan {
	out := *p
	out.Days = make([]plan.ReadingDay, len(p.Days))
	for i, day := range p.Days {
		day.Quiz = append([]plan.QuizQuestion(nil), day.Quiz...)
		day.UserAnswers = append([]int(nil), day.UserAnswers...)
		if day.QuizScore != nil {
			score := *day.QuizScore
			day.QuizScore = &score
		}
		if day.TimeSpentSeconds != nil {
			seconds := *day.TimeSpentSeconds
			day.TimeSpentSeconds = &seconds
		}
		out.Days[i] = day
	}
	return &out
}

func trimmedTitle(value string) string {
	value = strings.TrimSpace(value)
	if len([]rune(value)) <= 60 {
		return value
	}
	return fmt.Sprintf("%s…", strings.TrimSpace(string([]rune(value)[:57])))
}
