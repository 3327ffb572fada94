package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	domainmodel "github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/scheduler"
	"github.com/sandeepkv93/choresd/internal/service"
	"github.com/sandeepkv93/choresd/internal/views"
)

type View string

const (
	ViewBoard   View = "Board"
	ViewStats   View = "Stats"
	ViewHistory View = "History"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Board   string
	Stats   string
	History string
	Help    string
	Quit    string
}

// ChoreService is the slice of the service layer the TUI drives. It is an
// interface so tests can swap in a stub without a database.
type ChoreService interface {
	BuildOverview(ctx context.Context, now time.Time) (service.Overview, error)
	Stats(ctx context.Context, now time.Time) ([]service.PersonStats, error)
	History(ctx context.Context, choreID string, limit int, now time.Time) ([]service.HistoryEntry, error)
	DueNotifications(ctx context.Context, now time.Time) ([]service.Notification, error)
	UpsertChore(ctx context.Context, c domainmodel.Chore) error
	MarkDone(ctx context.Context, choreID, person string, now time.Time) (domainmodel.Chore, error)
	ResetChore(ctx context.Context, choreID string, now time.Time) error
	ForceDue(ctx context.Context, choreID string, now time.Time) error
	AddSubtask(ctx context.Context, choreID, name string) (domainmodel.Subtask, error)
	CompleteSubtask(ctx context.Context, subtaskID int64, person string, now time.Time) (domainmodel.Chore, error)
	Subtasks(ctx context.Context, choreID string) ([]domainmodel.Subtask, error)
	SubtaskChecklist(ctx context.Context, choreID string, now time.Time) ([]service.SubtaskCheck, error)
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type OverviewLoadedMsg struct {
	Overview service.Overview
}

type StatsLoadedMsg struct {
	Rows []service.PersonStats
}

type HistoryLoadedMsg struct {
	Entries []service.HistoryEntry
}

type ChecklistLoadedMsg struct {
	ChoreID string
	Checks  []service.SubtaskCheck
}

// ActionAppliedMsg reports a completed mutation; the board reloads on it.
type ActionAppliedMsg struct {
	Message string
}

type DueCheckMsg struct {
	Event scheduler.DueEvent
}

type DueNotesMsg struct {
	Notes []service.Notification
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

type Model struct {
	CurrentView     View
	Overview        service.Overview
	StatsRows       []service.PersonStats
	HistoryEntries  []service.HistoryEntry
	Cursor          int
	SelectedChoreID string
	Checklist       []service.SubtaskCheck
	SubtaskCursor   int
	Palette         CommandPaletteState
	HelpVisible     bool
	Status          StatusBar
	Keys            GlobalKeyMap
	Notifications   []Notification
	DesktopEnabled  bool
	DueCheckHour    int
	Scheduler       *scheduler.Engine
	Quitting        bool
	LastError       error

	svc      ChoreService
	notifier DesktopNotifier
	now      func() time.Time

	boardList      list.Model
	statsTable     table.Model
	historyTable   table.Model
	commandInput   textinput.Model
	refreshSpinner spinner.Model
	helpModel      help.Model
	detailViewport viewport.Model
	dayProgress    progress.Model
	spinnerActive  bool
}

func NewModel(svc ChoreService) Model {
	m := Model{
		CurrentView:  ViewBoard,
		DueCheckHour: DefaultRuntimeConfig().DueCheckHour,
		Keys: GlobalKeyMap{
			Board:   "1",
			Stats:   "2",
			History: "3",
			Help:    "?",
			Quit:    "q",
		},
		svc:      svc,
		notifier: NoopDesktopNotifier{},
		now:      time.Now,
	}
	m.initBubbleComponents()
	return m
}

func NewModelWithConfig(svc ChoreService, engine *scheduler.Engine, notifier DesktopNotifier, cfg RuntimeConfig) Model {
	m := NewModel(svc)
	m.Scheduler = engine
	m.DesktopEnabled = cfg.DesktopNotifications
	m.DueCheckHour = cfg.DueCheckHour
	if notifier != nil {
		m.notifier = notifier
	}
	return m
}

func (m *Model) initBubbleComponents() {
	m.boardList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.boardList.Title = "Chores"
	m.boardList.SetShowHelp(false)
	m.boardList.SetFilteringEnabled(false)

	m.statsTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Person", Width: 14},
			{Title: "Open", Width: 6},
			{Title: "Done", Width: 6},
			{Title: "Month", Width: 6},
			{Title: "Streak", Width: 7},
		}),
		table.WithRows([]table.Row{}),
		table.WithHeight(8),
	)

	m.historyTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Time", Width: 7},
			{Title: "Chore", Width: 22},
			{Title: "By", Width: 12},
		}),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.refreshSpinner = spinner.New()
	m.refreshSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detailViewport = viewport.New(54, 12)
	m.dayProgress = progress.New(progress.WithDefaultGradient())
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshCmd()}
	if m.Scheduler != nil {
		cmds = append(cmds, waitForDueCmd(m.Scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Board:
			m.CurrentView = ViewBoard
			return m, m.refreshCmd()
		case m.Keys.Stats:
			m.CurrentView = ViewStats
			return m, m.statsCmd()
		case m.Keys.History:
			m.CurrentView = ViewHistory
			return m, m.historyCmd()
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "S":
			if !m.spinnerActive {
				m.spinnerActive = true
				m.Status = StatusBar{Text: "refreshing"}
				return m, tea.Batch(m.refreshSpinner.Tick, m.refreshCmd())
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		if m.CurrentView == ViewBoard {
			return m.handleBoardKey(typed)
		}
		if m.CurrentView == ViewHistory {
			var cmd tea.Cmd
			m.historyTable, cmd = m.historyTable.Update(typed)
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if m.spinnerActive {
			var cmd tea.Cmd
			m.refreshSpinner, cmd = m.refreshSpinner.Update(typed)
			return m, cmd
		}
		return m, nil

	case SwitchViewMsg:
		switch typed.View {
		case ViewBoard:
			m.CurrentView = ViewBoard
			return m, m.refreshCmd()
		case ViewStats:
			m.CurrentView = ViewStats
			return m, m.statsCmd()
		case ViewHistory:
			m.CurrentView = ViewHistory
			return m, m.historyCmd()
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		m.spinnerActive = false
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil

	case OverviewLoadedMsg:
		m.Overview = typed.Overview
		m.spinnerActive = false
		m.clampCursor()
		m.syncSelectedChore()
		m.syncBubbleData()
		if m.SelectedChoreID != "" {
			return m, m.checklistCmd(m.SelectedChoreID)
		}
		return m, nil

	case StatsLoadedMsg:
		m.StatsRows = typed.Rows
		m.syncBubbleData()
		return m, nil

	case HistoryLoadedMsg:
		m.HistoryEntries = typed.Entries
		m.syncBubbleData()
		return m, nil

	case ChecklistLoadedMsg:
		if typed.ChoreID == m.SelectedChoreID {
			m.Checklist = typed.Checks
			if m.SubtaskCursor >= len(m.Checklist) {
				m.SubtaskCursor = 0
			}
		}
		return m, nil

	case ActionAppliedMsg:
		m.Status = StatusBar{Text: typed.Message}
		m.notify("Chores", typed.Message, "info")
		return m, m.refreshCmd()

	case DueCheckMsg:
		cmds := []tea.Cmd{m.dueNotesCmd()}
		if m.Scheduler != nil {
			if typed.Event.ChoreID == "" {
				next := scheduler.NextCheckTime(m.DueCheckHour, m.now())
				if err := m.Scheduler.Schedule(scheduler.DueEvent{TriggerAt: next}); err != nil {
					m.Status = StatusBar{Text: fmt.Sprintf("due check reschedule failed: %v", err), IsError: true}
				}
			}
			cmds = append(cmds, waitForDueCmd(m.Scheduler.C()))
		}
		return m, tea.Batch(cmds...)

	case DueNotesMsg:
		for _, note := range typed.Notes {
			title := note.Title
			if note.Recipient != "" {
				title = note.Recipient + ": " + note.Title
			}
			m.notify(title, note.Message, "info")
		}
		if len(m.Notifications) > 0 && len(typed.Notes) > 0 {
			m.Status = StatusBar{Text: m.Notifications[len(m.Notifications)-1].Title}
		}
		return m, m.refreshCmd()
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = fmt.Sprintf("status: %s", m.Status.Text)
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewBoard:
		leftPane = m.renderBoardView()
	case ViewStats:
		leftPane = m.renderStatsView()
	case ViewHistory:
		leftPane = m.renderHistoryView()
	}
	rightPane := strings.TrimSpace(strings.Join([]string{
		m.renderDetailPane(),
		views.RenderCommandPalette(m.Palette.Active, m.Palette.Input),
		m.renderHelpIfVisible(),
	}, "\n"))

	notificationView := ""
	if m.spinnerActive {
		notificationView = "refresh: " + m.refreshSpinner.View() + " running"
	}
	if last := m.lastNotification(); last != "" {
		notificationView = strings.TrimSpace(notificationView + "\n" + last)
	}

	return views.RenderApp(views.AppData{
		Header:        fmt.Sprintf("choresd | view: %s | selected: %s", m.CurrentView, m.SelectedChoreID),
		DueCount:      m.Overview.DueCount,
		OverdueCount:  m.Overview.OverdueCount,
		DoneToday:     m.Overview.DoneToday,
		LeftPane:      leftPane,
		RightPane:     rightPane,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Notification:  notificationView,
		Footer: fmt.Sprintf(
			"keys: %s board | %s stats | %s history | / command | %s help | %s quit",
			m.Keys.Board, m.Keys.Stats, m.Keys.History, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) lastNotification() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return strings.TrimSpace(views.RenderNotification(n.Level, n.Body))
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{Title: title, Body: body, Level: level, At: m.now()}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}

func (m Model) refreshCmd() tea.Cmd {
	svc, now := m.svc, m.now
	return func() tea.Msg {
		overview, err := svc.BuildOverview(context.Background(), now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return OverviewLoadedMsg{Overview: overview}
	}
}

func (m Model) statsCmd() tea.Cmd {
	svc, now := m.svc, m.now
	return func() tea.Msg {
		rows, err := svc.Stats(context.Background(), now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return StatsLoadedMsg{Rows: rows}
	}
}

func (m Model) historyCmd() tea.Cmd {
	svc, now := m.svc, m.now
	return func() tea.Msg {
		entries, err := svc.History(context.Background(), "", 100, now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return HistoryLoadedMsg{Entries: entries}
	}
}

func (m Model) checklistCmd(choreID string) tea.Cmd {
	svc, now := m.svc, m.now
	return func() tea.Msg {
		checks, err := svc.SubtaskChecklist(context.Background(), choreID, now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return ChecklistLoadedMsg{ChoreID: choreID, Checks: checks}
	}
}

func (m Model) dueNotesCmd() tea.Cmd {
	svc, now := m.svc, m.now
	return func() tea.Msg {
		notes, err := svc.DueNotifications(context.Background(), now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return DueNotesMsg{Notes: notes}
	}
}

func waitForDueCmd(ch <-chan scheduler.DueEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DueCheckMsg{Event: ev}
	}
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Board, Action: "switch to Board"},
		{Key: m.Keys.Stats, Action: "switch to Stats"},
		{Key: m.Keys.History, Action: "switch to History"},
		{Key: "/", Action: "open command palette"},
		{Key: "S", Action: "refresh"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewBoard:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "d", Action: "mark chore done"},
			{Key: "tab", Action: "select subtask"},
			{Key: "t", Action: "complete selected subtask"},
			{Key: "r", Action: "reset today's completion"},
			{Key: "f", Action: "force chore due"},
		}
	case ViewHistory:
		return []KeyBinding{
			{Key: "j/k", Action: "scroll completion log"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
