package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/pagewise/internal/plan"
	"github.com/csheth/pagewise/internal/session"
)

const emptyLibraryText = "No reading plans yet. Import one with: pagewise import <file.pdf>"

func (m *model) View() string {
	var body string
	switch m.stage {
	case stageLibrary:
		body = m.viewLibrary()
	case stageLoading, stageGenerating:
		body = m.viewWaiting()
	case stageReader:
		body = m.viewReader()
	case stageQuiz:
		body = m.viewQuiz()
	case stageResult:
		body = m.viewResult()
	}
	parts := []string{m.heroView(), body, m.messagesView()}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView(), m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	title := heroTitleStyle.Render("pagewise")
	if m.reader != nil && m.stage != stageLibrary {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, helperStyle.Render("  "+trimmedTitle(m.reader.plan.FileName)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, taglineStyle.Render(heroTagline))
}

func (m *model) messagesView() string {
	var parts []string
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(wordwrap.String(m.errorMessage, m.wrapWidth(0))))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.stage == stageLoading || m.stage == stageGenerating {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	return strings.Join(parts, "\n")
}

func (m *model) viewLibrary() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Reading Plans"))
	b.WriteRune('\n')
	if !m.library.loaded {
		b.WriteString(helperStyle.Render("Loading…"))
		return b.String()
	}
	if len(m.library.plans) == 0 {
		b.WriteString(helperStyle.Render(emptyLibraryText))
		return b.String()
	}
	for idx, p := range m.library.plans {
		line := fmt.Sprintf("%s  %s", trimmedTitle(p.FileName), planProgressLabel(p))
		meta := "   " + fmt.Sprintf("%d pages · opened %s", p.TotalPages, humanize.Time(p.LastAccessed))
		if idx == m.library.cursor {
			b.WriteString(currentLineStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteRune('\n')
		b.WriteString(helperStyle.Render(meta))
		b.WriteRune('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func planProgressLabel(p *plan.Plan) string {
	if p.Finished() {
		return successStyle.Render(fmt.Sprintf("complete · %d days", len(p.Days)))
	}
	return fmt.Sprintf("day %d of %d", p.CurrentDayIndex+1, len(p.Days))
}

func (m *model) viewWaiting() string {
	if m.stage == stageGenerating {
		return sectionHeaderStyle.Render("Writing your quiz")
	}
	return sectionHeaderStyle.Render("Opening document")
}

func (m *model) viewReader() string {
	r := m.reader
	if r == nil {
		return ""
	}
	display := r.scheduler.Display()
	header := fmt.Sprintf("Day %d  ·  Page %d / %d  ·  Zoom %d%%  ·  %s",
		r.day.DayNumber,
		display.Page,
		r.day.EndPage,
		int(display.Zoom*100+0.5),
		session.FormatElapsed(r.timer.Read()),
	)
	bar := m.progress.ViewAs(session.Progress(display.Page, r.day))

	page := m.viewport.View()
	if r.surface == nil {
		page = helperStyle.Render("Rendering…")
	}
	parts := []string{
		sectionHeaderStyle.Render(header),
		bar,
		pageBoxStyle.Render(page),
	}
	if r.renderFailed != "" {
		parts = append(parts, errorStyle.Render(r.renderFailed))
	}
	parts = append(parts, m.statusBarView())
	return strings.Join(parts, "\n")
}

func (m *model) statusBarView() string {
	r := m.reader
	stats := []string{fmt.Sprintf("Renderer %s", r.scheduler.Phase())}
	if r.surface != nil && r.surfacePage != r.scheduler.Display().Page {
		stats = append(stats, fmt.Sprintf("showing page %d", r.surfacePage))
	}
	if session.AtGoalBoundary(r.scheduler.Display().Page, r.day) {
		if r.quizErr != "" {
			stats = append(stats, "r retries the quiz")
		} else {
			stats = append(stats, "c completes the day")
		}
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.runningJobs) == 0 {
		return nil
	}
	counts := map[jobKind]int{}
	for _, kind := range m.runningJobs {
		counts[kind]++
	}
	badges := make([]string, 0, len(counts))
	for kind, n := range counts {
		badges = append(badges, fmt.Sprintf("%s×%d", kind, n))
	}
	sort.Strings(badges)
	return badges
}

func (m *model) viewQuiz() string {
	q := &m.quiz
	question, ok := q.current()
	if !ok {
		return ""
	}
	wrap := m.wrapWidth(4)
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Question %d of %d", q.index+1, len(q.questions))))
	b.WriteRune('\n')
	b.WriteString(wordwrap.String(question.Question, wrap))
	b.WriteRune('\n')
	for idx, option := range question.Options {
		label := fmt.Sprintf("%d. %s", idx+1, option)
		switch {
		case q.revealed && idx == question.CorrectAnswer:
			label = correctOptionStyle.Render("✓ " + label)
		case q.revealed && idx == q.answers[q.index]:
			label = wrongOptionStyle.Render("✗ " + label)
		case !q.revealed && idx == q.cursor:
			label = currentLineStyle.Render("▸ " + label)
		default:
			label = "  " + label
		}
		b.WriteRune('\n')
		b.WriteString(label)
	}
	if q.revealed {
		b.WriteRune('\n')
		b.WriteRune('\n')
		if question.Explanation != "" {
			b.WriteString(helperStyle.Render(indentMultiline(wordwrap.String(question.Explanation, wrap), "  ")))
			b.WriteRune('\n')
		}
		b.WriteString(helperStyle.Render("Enter for the next question."))
	}
	return b.String()
}

func (m *model) viewResult() string {
	q := &m.quiz
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Day complete"))
	b.WriteRune('\n')
	b.WriteString(successStyle.Render(fmt.Sprintf("Score %d / %d", q.score, len(q.questions))))
	r := m.reader
	if r == nil {
		return b.String()
	}
	b.WriteRune('\n')
	if r.handoff != nil {
		b.WriteString(fmt.Sprintf("Time read: %s", session.FormatElapsed(r.handoff.ElapsedSeconds)))
		b.WriteRune('\n')
	}
	if next, ok := r.plan.CurrentDay(); ok && r.plan.CurrentDayIndex != r.dayIndex {
		b.WriteString(helperStyle.Render(fmt.Sprintf("Next up: day %d, pages %d-%d.", next.DayNumber, next.StartPage, next.EndPage)))
	} else if r.plan.Finished() {
		b.WriteString(helperStyle.Render("That was the last day of this plan."))
	}
	return b.String()
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	var hints []keyHint
	switch m.stage {
	case stageLibrary:
		hints = []keyHint{
			{"↑/↓", "Select plan"},
			{"Enter", "Read today"},
			{"g", "Refresh"},
			{"q", "Quit"},
		}
	case stageQuiz:
		hints = []keyHint{
			{"1-9", "Answer"},
			{"↑/↓", "Move"},
			{"Enter", "Confirm / next"},
			{"Esc", "Back to reader"},
		}
	default:
		hints = []keyHint{
			{"←/→", "Page"},
			{"+/-", "Zoom"},
			{"PgUp/PgDn", "Scroll"},
			{"c", "Complete day"},
			{"r", "Retry quiz"},
			{"q", "Close"},
		}
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("How a day works"),
		helperStyle.Render("• read from the first to the last page of today's range; page turns render once you stop pressing keys."),
		helperStyle.Render("• on the last page press c to hand the pages to the quiz generator."),
		helperStyle.Render("• if generation fails press r; your pages and reading time are kept."),
		helperStyle.Render("• ? toggles this panel, Ctrl+C quits from anywhere."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}
