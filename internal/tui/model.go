package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/pagewise/internal/document"
	"github.com/csheth/pagewise/internal/llm"
	"github.com/csheth/pagewise/internal/plan"
	"github.com/csheth/pagewise/internal/render"
	"github.com/csheth/pagewise/internal/session"
)

// PlanStore persists reading plans.
type PlanStore interface {
	ListPlans(ctx context.Context) ([]*plan.Plan, error)
	GetPlan(ctx context.Context, id string) (*plan.Plan, error)
	SavePlan(ctx context.Context, p *plan.Plan) error
	Touch(ctx context.Context, id string, at time.Time) error
}

// BlobSource returns stored PDF payloads by key.
type BlobSource interface {
	Get(key string) ([]byte, error)
}

// ReaderOptions tune the reading view.
type ReaderOptions struct {
	Quiescence       time.Duration
	FrameInterval    time.Duration
	InitialZoom      float64
	SurfaceCacheSize int
}

// Config wires runtime options into the TUI program.
type Config struct {
	Plans  PlanStore
	Blobs  BlobSource
	Loader *document.Loader
	LLM    llm.Client
	Reader ReaderOptions
	// OpenPlanID skips the library and opens this plan directly.
	OpenPlanID  string
	SaveTimeout time.Duration
	Clock       session.Clock
	Context     context.Context
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Loader == nil {
		config.Loader = document.NewLoader()
	}
	if config.Reader.Quiescence <= 0 {
		config.Reader.Quiescence = render.DefaultQuiescence
	}
	if config.Reader.FrameInterval <= 0 {
		config.Reader.FrameInterval = time.Second / 60
	}
	if config.Reader.InitialZoom <= 0 {
		config.Reader.InitialZoom = 1.5
	}
	if config.SaveTimeout <= 0 {
		config.SaveTimeout = 10 * time.Second
	}
	if config.Clock == nil {
		config.Clock = session.SystemClock
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	return &model{
		config:      config,
		stage:       stageLibrary,
		jobs:        newJobBus(),
		spinner:     spin,
		viewport:    vp,
		progress:    bar,
		layout:      newPageLayout(),
		infoMessage: "Loading your reading plans…",
	}
}

type model struct {
	config Config
	stage  stage
	jobs   *jobBus

	spinner  spinner.Model
	viewport viewport.Model
	progress progress.Model
	layout   pageLayout

	library libraryState
	reader  *readerSession
	quiz    quizState
	// sessionSeq numbers reader sessions so late messages from a closed one
	// are dropped.
	sessionSeq int

	// loading guards against a second document load while one is pending.
	loading     bool
	runningJobs map[string]jobKind

	helpVisible  bool
	infoMessage  string
	errorMessage string
}

func (m *model) Init() tea.Cmd {
	if m.config.OpenPlanID != "" {
		return m.openPlan(m.config.OpenPlanID, nil)
	}
	return m.refreshLibrary()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageLoading || m.stage == stageGenerating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		if m.runningJobs == nil {
			m.runningJobs = map[string]jobKind{}
		}
		m.runningJobs[msg.Snapshot.ID] = msg.Snapshot.Kind
		return m, nil
	case jobResultEnvelope:
		delete(m.runningJobs, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.closeReader()
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.stage == stageReader {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.progress.Width = m.layout.progressWidth
		return m, nil
	case plansLoadedMsg:
		return m.handlePlansLoaded(msg)
	case documentLoadedMsg:
		return m.handleDocumentLoaded(msg)
	case debounceMsg:
		return m, m.handleDebounce(msg)
	case frameMsg:
		return m, m.handleFrame(msg)
	case renderResultMsg:
		m.handleRenderResult(msg)
		return m, nil
	case timerTickMsg:
		if m.reader == nil || msg.session != m.reader.id {
			return m, nil
		}
		return m, m.timerTick()
	case quizResultMsg:
		return m.handleQuizResult(msg)
	case planSavedMsg:
		if msg.err != nil {
			m.errorMessage = "Could not save progress: " + msg.err.Error()
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "?" && m.stage != stageQuiz {
		m.helpVisible = !m.helpVisible
		return m, nil
	}
	switch m.stage {
	case stageLibrary:
		return m.handleLibraryKey(key)
	case stageReader:
		return m.handleReaderKey(key)
	case stageQuiz:
		return m.handleQuizKey(key)
	case stageResult:
		return m.handleResultKey(key)
	case stageGenerating:
		if key.Type == tea.KeyEsc {
			// The quiz request keeps running; its result is dropped.
			m.stage = stageReader
			m.infoMessage = "Quiz generation abandoned. Press c to try again."
			return m, nil
		}
	case stageLoading:
		if key.Type == tea.KeyEsc || key.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	successStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c")).Bold(true)

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	pageBoxStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#56526e"))
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	correctOptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))
	wrongOptionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true)
)
