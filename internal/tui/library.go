package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pagewise/internal/plan"
)

type libraryState struct {
	plans  []*plan.Plan
	cursor int
	loaded bool
}

func (m *model) refreshLibrary() tea.Cmd {
	if m.config.Plans == nil {
		m.library.loaded = true
		return nil
	}
	return m.jobs.Start(m.config.Context, jobKindList, listPlansJob(m.config.Plans))
}

func (m *model) handlePlansLoaded(msg plansLoadedMsg) (tea.Model, tea.Cmd) {
	m.library.loaded = true
	if msg.err != nil {
		m.errorMessage = "Could not list plans: " + msg.err.Error()
		return m, nil
	}
	m.library.plans = msg.plans
	if m.library.cursor >= len(msg.plans) {
		m.library.cursor = 0
	}
	if m.stage == stageLibrary && m.errorMessage == "" {
		if len(msg.plans) == 0 {
			m.infoMessage = ""
		} else {
			m.infoMessage = "Enter opens the current day of the highlighted plan."
		}
	}
	return m, nil
}

func (m *model) handleLibraryKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	lib := &m.library
	switch key.String() {
	case "up", "k":
		if lib.cursor > 0 {
			lib.cursor--
		}
	case "down", "j":
		if lib.cursor < len(lib.plans)-1 {
			lib.cursor++
		}
	case "enter":
		if lib.cursor < len(lib.plans) {
			selected := lib.plans[lib.cursor]
			return m, m.openPlan(selected.ID, selected)
		}
	case "g":
		m.errorMessage = ""
		return m, m.refreshLibrary()
	case "esc", "q":
		return m, tea.Quit
	}
	return m, nil
}
