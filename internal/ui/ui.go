package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlanView ViewState = iota
	SyncView
	ResultView
)

// recentLines is how many per-track messages the sync view keeps on screen.
const recentLines = 8

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	engine       tasks.SyncEngine
	width        int
	height       int
	planning     bool
	plan         *tasks.PlanResult
	pendingList  list.Model
	progressChan chan tasks.ProgressUpdate
	done         chan syncData
	progress     tasks.ProgressUpdate
	recent       []string
	acquired     int
	failed       int
	summary      *models.RunSummary
	err          error
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model driving the provided engine.
func NewModel(ctx context.Context, engine tasks.SyncEngine) *Model {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.accent

	return &Model{
		ctx:      ctx,
		cancel:   cancel,
		view:     PlanView,
		engine:   engine,
		planning: true,
		spinner:  s,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Summary returns the outcome of the run once the program has exited, or nil when no sync was started.
func (m *Model) Summary() (*models.RunSummary, error) {
	return m.summary, m.err
}

// Init computes the plan so the user can review it before anything is downloaded.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchPlan())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.plan != nil {
			m.pendingList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlanView:
			return m.handlePlanKeys(msg)
		case SyncView:
			return m.handleSyncKeys(msg)
		case ResultView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.planning && m.view != SyncView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlanReady:
		data := msg.data.(planData)
		m.planning = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.plan = data.plan
		m.pendingList = list.New(pendingItems(data.plan.Pending), list.NewDefaultDelegate(), 0, 0)
		m.pendingList.Title = fmt.Sprintf("Pending in '%s'", data.plan.Playlist.Title)
		m.pendingList.SetShowHelp(false)
		m.pendingList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		switch update.Phase {
		case tasks.TrackAcquired:
			m.acquired++
			m.pushRecent(styles.ok.Render(update.Message))
		case tasks.TrackFailed:
			m.failed++
			m.pushRecent(styles.err.Render(update.Message))
		}
		return m, m.waitForProgress()

	case MsgSyncComplete:
		data := msg.data.(syncData)
		m.summary = data.summary
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.done = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlanView:
		return m.renderPlan()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.start):
		if m.planning || m.err != nil {
			return m, nil
		}
		m.view = SyncView
		return m, tea.Batch(m.spinner.Tick, m.startSync())
	}
	if m.plan == nil {
		return m, nil
	}

	var cmd tea.Cmd
	m.pendingList, cmd = m.pendingList.Update(msg)
	return m, cmd
}

// handleSyncKeys cancels the run on quit. The engine finishes the current track and reports an interrupted summary.
func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.cancel()
		m.pushRecent(styles.warn.Render("Stopping after the current track..."))
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != PlanView || m.plan == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.pendingList, cmd = m.pendingList.Update(msg)
	return m, cmd
}

func (m *Model) pushRecent(line string) {
	m.recent = append(m.recent, line)
	if len(m.recent) > recentLines {
		m.recent = m.recent[len(m.recent)-recentLines:]
	}
}

func (m *Model) fetchPlan() tea.Cmd {
	return func() tea.Msg {
		plan, err := m.engine.Plan(m.ctx, nil)
		return planReadyMsg(plan, err)
	}
}

func (m *Model) startSync() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan syncData, 1)
	m.progressChan = progress
	m.done = done

	go func() {
		summary, err := m.engine.Run(m.ctx, progress)
		done <- syncData{summary, err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return syncCompleteMsg(nil, nil)
		}

		update, ok := <-progress
		if !ok {
			result := <-done
			return syncCompleteMsg(result.summary, result.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlan() string {
	if m.planning {
		return fmt.Sprintf("%s Scanning directory and fetching playlist...", m.spinner.View())
	}
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("could not plan sync: %v\n\nPress q to quit", m.err))
	}

	left := len(m.plan.Missing) - len(m.plan.Pending)
	info := styles.help.Render(fmt.Sprintf(
		"Local: %d  Remote: %d  Missing: %d  Selected: %d  Left for later runs: %d",
		m.plan.Catalog.Len(), len(m.plan.Playlist.Tracks), len(m.plan.Missing), len(m.plan.Pending), left,
	))

	if len(m.plan.Pending) == 0 {
		title := styles.ok.Render("✓ Nothing to do, the directory is up to date")
		return fmt.Sprintf("%s\n\n%s\n\n%s", title, info, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.start, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", m.pendingList.View(), info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.ScanCatalog:
		phase = "Scanning directory..."
	case tasks.FetchPlaylist:
		phase = "Fetching playlist..."
	case tasks.Reconciling:
		phase = "Reconciling..."
	case tasks.AcquireTrack, tasks.TrackAcquired, tasks.TrackFailed:
		phase = fmt.Sprintf("Acquiring tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Finished:
		phase = "Finishing..."
	default:
		phase = "Processing..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s %s\n%s\n", title, m.spinner.View(), phase, m.progress.Message)
	fmt.Fprintf(&b, "\n%s\n", styles.help.Render(fmt.Sprintf("acquired %d  failed %d", m.acquired, m.failed)))
	for _, line := range m.recent {
		fmt.Fprintf(&b, "%s\n", line)
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("could not sync: %v", m.err)) + "\n\n" + helpView
	}
	if m.summary == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	s := m.summary
	title := styles.ok.Render("✓ Sync Complete!")
	if s.Interrupted {
		title = styles.warn.Render("Sync interrupted")
	}
	info := fmt.Sprintf(
		"\nPlaylist: %s\nAcquired: %d  Failed: %d  Remaining: %d",
		s.Playlist, len(s.Succeeded), len(s.Failed), s.Remaining(),
	)

	var failed string
	if len(s.Failed) > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to acquire %d tracks (retried next run):", len(s.Failed))))
		for _, f := range s.Failed {
			failed += fmt.Sprintf("\n  • %s – %s: %s", f.Artist, f.Title, f.Reason)
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
