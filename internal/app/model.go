// Package app is the terminal dashboard: a bubbletea program over one
// project file with dashboard, task table, Gantt and board tabs.
package app

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/planboard/internal/core/commands"
	"github.com/riordanpawley/planboard/internal/core/timeline"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/services/store"
	"github.com/riordanpawley/planboard/internal/types"
	"github.com/riordanpawley/planboard/internal/ui/board"
	"github.com/riordanpawley/planboard/internal/ui/overlay"
	"github.com/riordanpawley/planboard/internal/ui/styles"
	"github.com/riordanpawley/planboard/internal/ui/toast"
)

// toastTick is how often expired toasts are pruned
const toastTick = time.Second

// Repository loads and saves the project shown by the dashboard
type Repository interface {
	Load() (domain.Project, error)
	Save(p domain.Project) error
}

// Options wires the model's collaborators
type Options struct {
	Repo    Repository
	Reducer *commands.Reducer
	// Events delivers external changes to the project file; nil disables
	// live reload
	Events <-chan store.Event
	// Acknowledge is called after every save so the watcher ignores it
	Acknowledge func()
	Zoom        timeline.Zoom
	LabelWidth  int
	Logger      *slog.Logger
	Now         func() time.Time
}

// saver serializes saves so the file always ends with the newest snapshot,
// even when save commands finish out of order
type saver struct {
	mu      sync.Mutex
	repo    Repository
	ack     func()
	written int
}

func (s *saver) save(version int, p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version <= s.written {
		return nil
	}
	if err := s.repo.Save(p); err != nil {
		return err
	}
	s.written = version
	if s.ack != nil {
		s.ack()
	}
	return nil
}

// pendingConfirm is a command waiting on the confirm dialog
type pendingConfirm struct {
	cmd     commands.Command
	success string
}

// Model is the root bubbletea model
type Model struct {
	repo    Repository
	saver   *saver
	reducer *commands.Reducer
	events  <-chan store.Event
	logger  *slog.Logger
	now     func() time.Time

	project domain.Project
	version int
	loading bool
	loadErr error

	view types.View
	mode types.Mode

	// Task table
	tableCursor int
	tableOffset int
	sort        domain.Sort
	filter      *domain.Filter
	selected    map[string]bool

	// Gantt
	zoom         timeline.Zoom
	labelWidth   int
	ganttOffset  int
	showBaseline bool
	viewport     viewport.Model

	// Board
	boardCursor board.Cursor

	search        textinput.Model
	confirm       *pendingConfirm
	overlays      *overlay.Stack
	overlayStyles *overlay.Styles
	toasts        []types.Toast

	width  int
	height int

	styles  *styles.Styles
	spinner spinner.Model
}

// New creates the model. Nothing is loaded until Init runs.
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by name or id"
	ti.CharLimit = 80

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	reducer := opts.Reducer
	if reducer == nil {
		reducer = commands.NewReducer(commands.WithLogger(logger))
	}
	zoom := opts.Zoom
	if _, err := timeline.ParseZoom(string(zoom)); err != nil {
		zoom = timeline.ZoomWeek
	}
	labelWidth := opts.LabelWidth
	if labelWidth <= 0 {
		labelWidth = 24
	}

	return Model{
		repo:       opts.Repo,
		saver:      &saver{repo: opts.Repo, ack: opts.Acknowledge},
		reducer:    reducer,
		events:     opts.Events,
		logger:     logger,
		now:        now,
		loading:    true,
		view:       types.ViewDashboard,
		mode:       types.ModeNormal,
		filter:     domain.NewFilter(),
		selected:   make(map[string]bool),
		zoom:       zoom,
		labelWidth: labelWidth,
		viewport:   viewport.New(0, 0),
		search:     ti,
		styles:     styles.New(),
		spinner:    s,

		overlays:      overlay.NewStack(),
		overlayStyles: overlay.New(),
	}
}

// Messages

type projectLoadedMsg struct {
	project domain.Project
}

type projectErrorMsg struct {
	err error
}

type savedMsg struct {
	version int
}

type saveErrorMsg struct {
	err error
}

type fileChangedMsg struct {
	event store.Event
}

type watchClosedMsg struct{}

type tickMsg time.Time

// Init returns the initial command for the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadCmd(),
		m.waitForChange(),
		tickEvery(toastTick),
	)
}

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-4, 10)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case projectLoadedMsg:
		wasLoading := m.loading
		m.project = msg.project
		m.loading = false
		m.loadErr = nil
		m.clampCursors()
		if wasLoading {
			m.addToast(types.ToastSuccess, fmt.Sprintf("Loaded %s (%d tasks)", msg.project.Name, len(msg.project.Tasks)))
		}
		return m, nil

	case projectErrorMsg:
		m.loading = false
		m.loadErr = msg.err
		m.logger.Error("failed to load project", "error", msg.err)
		m.addToast(types.ToastError, msg.err.Error())
		return m, nil

	case savedMsg:
		m.logger.Debug("project saved", "version", msg.version)
		return m, nil

	case saveErrorMsg:
		m.logger.Error("failed to save project", "error", msg.err)
		m.addToast(types.ToastError, "Save failed: "+msg.err.Error())
		return m, nil

	case fileChangedMsg:
		if msg.event.Removed {
			m.addToast(types.ToastWarning, "Project file was removed; keeping the loaded copy")
			return m, m.waitForChange()
		}
		m.addToast(types.ToastInfo, "Project file changed, reloading")
		return m, tea.Batch(m.loadCmd(), m.waitForChange())

	case overlay.CloseOverlayMsg:
		m.overlays.Update(msg)
		m.closeOverlay()
		return m, nil

	case overlay.SelectionMsg:
		m.overlays.Update(msg)
		pending := m.confirm
		m.confirm = nil
		m.closeOverlay()
		if msg.Key != overlay.KeyYes || pending == nil {
			return m, nil
		}
		if _, ok := pending.cmd.(commands.BulkDelete); ok {
			m.selected = make(map[string]bool)
		}
		return m.apply(pending.cmd, pending.success)

	case watchClosedMsg:
		m.events = nil
		return m, nil

	case tickMsg:
		m.expireToasts()
		return m, tickEvery(toastTick)
	}

	return m, nil
}

// Commands

// loadCmd reads the project from the repository
func (m Model) loadCmd() tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		p, err := repo.Load()
		if err != nil {
			return projectErrorMsg{err: err}
		}
		return projectLoadedMsg{project: p}
	}
}

// saveCmd writes one snapshot of the project
func (m Model) saveCmd(version int, p domain.Project) tea.Cmd {
	sv := m.saver
	return func() tea.Msg {
		if err := sv.save(version, p); err != nil {
			return saveErrorMsg{err: err}
		}
		return savedMsg{version: version}
	}
}

// waitForChange blocks on the next watcher event
func (m Model) waitForChange() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return fileChangedMsg{event: ev}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// apply runs a command through the reducer on the update loop, so commands
// are strictly ordered, and saves the result in the background
func (m Model) apply(cmd commands.Command, success string) (Model, tea.Cmd) {
	res, err := m.reducer.Apply(m.project, cmd)
	if err != nil {
		m.logger.Warn("command rejected", "type", cmd.Type(), "error", err)
		m.addToast(types.ToastError, err.Error())
		return m, nil
	}

	m.project = res.Project
	m.version++
	for id := range m.selected {
		if _, ok := m.project.TaskByID(id); !ok {
			delete(m.selected, id)
		}
	}
	m.clampCursors()

	if len(res.Warnings) > 0 {
		m.addToast(types.ToastWarning, strings.Join(res.Warnings, "; "))
	}
	if success != "" {
		m.addToast(types.ToastSuccess, success)
	}
	return m, m.saveCmd(m.version, m.project)
}

// addToast adds a toast notification to the list
func (m *Model) addToast(level types.ToastLevel, message string) {
	m.toasts = append(m.toasts, types.NewToast(level, message, m.now()))
}

// expireToasts removes expired toasts from the list
func (m *Model) expireToasts() {
	m.toasts = toast.Prune(m.toasts, m.now())
}
