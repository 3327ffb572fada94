package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sandeepkv93/choresd/internal/commands"
	domainmodel "github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/scheduler"
	"github.com/sandeepkv93/choresd/internal/service"
	"github.com/sandeepkv93/choresd/internal/views"
)

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.Cursor < len(m.Overview.Statuses)-1 {
			m.Cursor++
		}
		m.SubtaskCursor = 0
		m.syncSelectedChore()
		if m.SelectedChoreID != "" {
			return m, m.checklistCmd(m.SelectedChoreID)
		}
		return m, nil
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		m.SubtaskCursor = 0
		m.syncSelectedChore()
		if m.SelectedChoreID != "" {
			return m, m.checklistCmd(m.SelectedChoreID)
		}
		return m, nil
	case "tab":
		if len(m.Checklist) > 0 {
			m.SubtaskCursor = (m.SubtaskCursor + 1) % len(m.Checklist)
		}
		return m, nil
	case "d":
		if m.SelectedChoreID == "" {
			return m, nil
		}
		return m, m.markDoneCmd(m.SelectedChoreID, "")
	case "t":
		if m.SelectedChoreID == "" || len(m.Checklist) == 0 {
			return m, nil
		}
		check := m.Checklist[m.SubtaskCursor]
		if check.Done {
			m.Status = StatusBar{Text: fmt.Sprintf("subtask already done: %s", check.Subtask.Name)}
			return m, nil
		}
		return m, m.completeSubtaskCmd(check.Subtask.ID, check.Subtask.Name, "")
	case "r":
		if m.SelectedChoreID == "" {
			return m, nil
		}
		return m, m.resetCmd(m.SelectedChoreID)
	case "f":
		if m.SelectedChoreID == "" {
			return m, nil
		}
		return m, m.forceDueCmd(m.SelectedChoreID)
	}
	var cmd tea.Cmd
	m.boardList, cmd = m.boardList.Update(msg)
	return m, cmd
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette = CommandPaletteState{}
		m.commandInput.Blur()
		m.Status = StatusBar{}
		return m, nil
	case "enter":
		input := m.commandInput.Value()
		m.Palette = CommandPaletteState{}
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		return m.executeCommand(input)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executeCommand(input string) (tea.Model, tea.Cmd) {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	result, err := commands.Execute(cmd, m.paletteHandlers())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: result.Message}
	if cmd.Type == commands.TypeShow {
		switch cmd.Show.Subject {
		case "stats":
			m.CurrentView = ViewStats
			return m, m.statsCmd()
		case "history":
			m.CurrentView = ViewHistory
			return m, m.historyCmd()
		default:
			m.CurrentView = ViewBoard
			return m, m.refreshCmd()
		}
	}
	return m, tea.Batch(m.refreshCmd(), m.statsCmd(), m.historyCmd())
}

// paletteHandlers runs service calls synchronously; palette commands are
// rare enough that blocking the update loop briefly is fine.
func (m *Model) paletteHandlers() commands.Handlers {
	ctx := context.Background()
	now := m.now()
	return commands.Handlers{
		Add: func(args commands.AddArgs) (commands.Result, error) {
			chore := newChoreWithDefaults(args.Name)
			if err := m.svc.UpsertChore(ctx, chore); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added chore %q", chore.Name)}, nil
		},
		Done: func(args commands.DoneArgs) (commands.Result, error) {
			chore, err := m.resolveChore(args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			done, err := m.svc.MarkDone(ctx, chore.ID, args.By, now)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s done by %s", done.Name, done.LastDoneBy)}, nil
		},
		Subtask: func(args commands.SubtaskArgs) (commands.Result, error) {
			chore, err := m.resolveChore(args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			switch args.Action {
			case "add":
				st, err := m.svc.AddSubtask(ctx, chore.ID, args.Name)
				if err != nil {
					return commands.Result{}, err
				}
				return commands.Result{Message: fmt.Sprintf("added subtask %q to %s", st.Name, chore.Name)}, nil
			case "done":
				checks, err := m.svc.SubtaskChecklist(ctx, chore.ID, now)
				if err != nil {
					return commands.Result{}, err
				}
				for _, check := range checks {
					if !strings.EqualFold(check.Subtask.Name, args.Name) {
						continue
					}
					if _, err := m.svc.CompleteSubtask(ctx, check.Subtask.ID, args.By, now); err != nil {
						return commands.Result{}, err
					}
					return commands.Result{Message: fmt.Sprintf("subtask %q of %s done", check.Subtask.Name, chore.Name)}, nil
				}
				return commands.Result{}, fmt.Errorf("no subtask named %q on %s", args.Name, chore.Name)
			default:
				return commands.Result{}, fmt.Errorf("unsupported subtask action: %s", args.Action)
			}
		},
		Reset: func(args commands.ResetArgs) (commands.Result, error) {
			chore, err := m.resolveChore(args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.svc.ResetChore(ctx, chore.ID, now); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("reset %s", chore.Name)}, nil
		},
		ForceDue: func(args commands.ForceDueArgs) (commands.Result, error) {
			chore, err := m.resolveChore(args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.svc.ForceDue(ctx, chore.ID, now); err != nil {
				return commands.Result{}, err
			}
			if m.Scheduler != nil {
				_ = m.Scheduler.Schedule(scheduler.DueEvent{
					ChoreID:   chore.ID,
					Assignee:  chore.AssignedTo,
					TriggerAt: now,
				})
			}
			return commands.Result{Message: fmt.Sprintf("%s is now due", chore.Name)}, nil
		},
		Show: func(args commands.ShowArgs) (commands.Result, error) {
			switch args.Subject {
			case "board", "chores":
				return commands.Result{Message: "showing board"}, nil
			case "stats":
				return commands.Result{Message: "showing stats"}, nil
			case "history":
				return commands.Result{Message: "showing history"}, nil
			default:
				return commands.Result{}, fmt.Errorf("unsupported show subject: %s", args.Subject)
			}
		},
	}
}

// newChoreWithDefaults is what "/add <name>" creates; the detail fields can
// be adjusted later through the service.
func newChoreWithDefaults(name string) domainmodel.Chore {
	return domainmodel.Chore{
		ID:             uuid.NewString(),
		Name:           name,
		FrequencyType:  domainmodel.FrequencyWeekly,
		FrequencyDays:  7,
		FrequencyTimes: 1,
		Weekday:        -1,
		Monthday:       -1,
		Priority:       domainmodel.PriorityMedium,
		Duration:       15,
		CompletionType: domainmodel.CompleteAll,
		SubtasksPeriod: domainmodel.PeriodWeek,
		StartMonth:     1,
		StartDay:       1,
	}
}

// resolveChore matches first on exact id, then case-insensitive name against
// the loaded overview.
func (m *Model) resolveChore(target string) (domainmodel.Chore, error) {
	for _, status := range m.Overview.Statuses {
		if status.Chore.ID == target {
			return status.Chore, nil
		}
	}
	for _, status := range m.Overview.Statuses {
		if strings.EqualFold(status.Chore.Name, target) {
			return status.Chore, nil
		}
	}
	return domainmodel.Chore{}, fmt.Errorf("no chore matching %q", target)
}

func (m Model) markDoneCmd(choreID, person string) tea.Cmd {
	svc, now := m.svc, m.now
	return func() tea.Msg {
		chore, err := svc.MarkDone(context.Background(), choreID, person, now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return ActionAppliedMsg{Message: fmt.Sprintf("%s done by %s", chore.Name, chore.LastDoneBy)}
	}
}

func (m Model) completeSubtaskCmd(subtaskID int64, name, person string) tea.Cmd {
	svc, now := m.svc, m.now
	return func() tea.Msg {
		chore, err := svc.CompleteSubtask(context.Background(), subtaskID, person, now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return ActionAppliedMsg{Message: fmt.Sprintf("subtask %q of %s done", name, chore.Name)}
	}
}

func (m Model) resetCmd(choreID string) tea.Cmd {
	svc, now := m.svc, m.now
	return func() tea.Msg {
		if err := svc.ResetChore(context.Background(), choreID, now()); err != nil {
			return AppErrorMsg{Err: err}
		}
		return ActionAppliedMsg{Message: "completion undone for today"}
	}
}

func (m Model) forceDueCmd(choreID string) tea.Cmd {
	svc, now := m.svc, m.now
	engine := m.Scheduler
	return func() tea.Msg {
		at := now()
		if err := svc.ForceDue(context.Background(), choreID, at); err != nil {
			return AppErrorMsg{Err: err}
		}
		if engine != nil {
			_ = engine.Schedule(scheduler.DueEvent{ChoreID: choreID, TriggerAt: at})
		}
		return ActionAppliedMsg{Message: "chore forced due"}
	}
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Overview.Statuses) {
		m.Cursor = len(m.Overview.Statuses) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) syncSelectedChore() {
	if len(m.Overview.Statuses) == 0 {
		m.SelectedChoreID = ""
		m.Checklist = nil
		return
	}
	id := m.Overview.Statuses[m.Cursor].Chore.ID
	if id != m.SelectedChoreID {
		m.SelectedChoreID = id
		m.Checklist = nil
		m.SubtaskCursor = 0
	}
}

func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.Overview.Statuses))
	for _, status := range m.Overview.Statuses {
		items = append(items, listItem{
			title:       status.Chore.Name,
			description: fmt.Sprintf("%s, next due %s", status.Chore.AssignedTo, status.NextDue.Format("Jan 2")),
		})
	}
	m.boardList.SetItems(items)
	if m.Cursor < len(items) {
		m.boardList.Select(m.Cursor)
	}

	statsRows := make([]table.Row, 0, len(m.StatsRows))
	for _, row := range m.StatsRows {
		statsRows = append(statsRows, table.Row{
			row.Name,
			fmt.Sprintf("%d", row.OpenCount),
			fmt.Sprintf("%d", row.CompletedToday),
			fmt.Sprintf("%d%%", row.MonthlyShare),
			fmt.Sprintf("%d", row.Streak),
		})
	}
	m.statsTable.SetRows(statsRows)

	names := m.choreNames()
	historyRows := make([]table.Row, 0, len(m.HistoryEntries))
	for _, entry := range m.HistoryEntries {
		historyRows = append(historyRows, table.Row{
			entry.DoneAt.Format("2006-01-02"),
			entry.DoneAt.Format("15:04"),
			names[entry.ChoreID],
			entry.DoneBy,
		})
	}
	m.historyTable.SetRows(historyRows)
}

func (m Model) choreNames() map[string]string {
	names := make(map[string]string, len(m.Overview.Statuses))
	for _, status := range m.Overview.Statuses {
		names[status.Chore.ID] = status.Chore.Name
	}
	return names
}

func boardSection(status service.ChoreStatus) string {
	switch {
	case status.CompletedToday:
		return views.SectionDone
	case status.Overdue:
		return views.SectionOverdue
	case status.DueToday:
		return views.SectionDueToday
	default:
		return views.SectionUpcoming
	}
}

func (m Model) renderBoardView() string {
	items := make([]views.BoardItemData, 0, len(m.Overview.Statuses))
	for _, status := range m.Overview.Statuses {
		items = append(items, views.BoardItemData{
			ID:            status.Chore.ID,
			Name:          status.Chore.Name,
			Icon:          status.Chore.Icon,
			Section:       boardSection(status),
			Assignee:      status.Chore.AssignedTo,
			Priority:      string(status.Chore.Priority),
			NextDue:       status.NextDue.Format("2006-01-02"),
			DaysUntilDue:  status.DaysUntilDue,
			Duration:      status.Chore.Duration,
			SubtasksDone:  status.SubtasksDone,
			SubtasksTotal: status.SubtasksTotal,
		})
	}
	return views.RenderBoardPanel(views.BoardPanelData{
		ListView:   fmt.Sprintf("%d chores, %d due, %d overdue", len(items), m.Overview.DueCount, m.Overview.OverdueCount),
		Items:      items,
		SelectedID: m.SelectedChoreID,
	})
}

func (m Model) renderStatsView() string {
	rows := make([]views.StatsRowData, 0, len(m.StatsRows))
	for _, row := range m.StatsRows {
		rows = append(rows, views.StatsRowData{
			Name:         row.Name,
			Open:         row.OpenCount,
			OpenMinutes:  row.PendingMinutes,
			DoneToday:    row.CompletedToday,
			MinutesToday: row.MinutesToday,
			MonthlyShare: row.MonthlyShare,
			Streak:       row.Streak,
		})
	}
	total := m.Overview.DoneToday + m.Overview.DueCount
	ratio := 0.0
	if total > 0 {
		ratio = float64(m.Overview.DoneToday) / float64(total)
	}
	return views.RenderStatsPanel(views.StatsPanelData{
		TableView:    m.statsTable.View(),
		Rows:         rows,
		DoneToday:    m.Overview.DoneToday,
		DueToday:     m.Overview.DueCount,
		ProgressView: m.dayProgress.ViewAs(ratio),
	})
}

func (m Model) renderHistoryView() string {
	names := m.choreNames()
	entries := make([]views.HistoryEntryData, 0, len(m.HistoryEntries))
	for _, entry := range m.HistoryEntries {
		name := names[entry.ChoreID]
		if name == "" {
			name = entry.ChoreID
		}
		entries = append(entries, views.HistoryEntryData{
			Date:  entry.DoneAt.Format("2006-01-02"),
			Time:  entry.DoneAt.Format("15:04"),
			Chore: name,
			By:    entry.DoneBy,
		})
	}
	return views.RenderHistoryPanel(views.HistoryPanelData{
		TableView: m.historyTable.View(),
		Entries:   entries,
	})
}

func (m Model) renderDetailPane() string {
	if m.SelectedChoreID == "" || len(m.Overview.Statuses) == 0 {
		return views.RenderChoreDetailPane(views.ChoreDetailData{})
	}
	var status service.ChoreStatus
	found := false
	for _, s := range m.Overview.Statuses {
		if s.Chore.ID == m.SelectedChoreID {
			status = s
			found = true
			break
		}
	}
	if !found {
		return views.RenderChoreDetailPane(views.ChoreDetailData{})
	}

	subtasks := make([]views.SubtaskLineData, 0, len(m.Checklist))
	for _, check := range m.Checklist {
		subtasks = append(subtasks, views.SubtaskLineData{Name: check.Subtask.Name, Done: check.Done})
	}
	lastDone, lastDoneBy := "", ""
	if status.Chore.LastDone != nil {
		lastDone = status.Chore.LastDone.Format("2006-01-02")
		lastDoneBy = status.Chore.LastDoneBy
	}
	description := ""
	if status.Chore.Description != "" {
		m.detailViewport.SetContent(views.RenderMarkdown(status.Chore.Description))
		description = m.detailViewport.View()
	}
	return views.RenderChoreDetailPane(views.ChoreDetailData{
		SelectedID:      status.Chore.ID,
		Name:            status.Chore.Name,
		Assignee:        status.Chore.AssignedTo,
		Priority:        string(status.Chore.Priority),
		Frequency:       frequencyLabel(status.Chore),
		NextDue:         status.NextDue.Format("2006-01-02"),
		LastDone:        lastDone,
		LastDoneBy:      lastDoneBy,
		Duration:        status.Chore.Duration,
		Subtasks:        subtasks,
		SubtaskCursor:   m.SubtaskCursor,
		DescriptionView: description,
	})
}

func frequencyLabel(c domainmodel.Chore) string {
	switch c.FrequencyType {
	case domainmodel.FrequencyDaily:
		return "every day"
	case domainmodel.FrequencyWeekly:
		// Weekday is stored Monday=0; Go's enum starts at Sunday.
		if c.Weekday >= 0 && c.Weekday <= 6 {
			return "weekly on " + time.Weekday((c.Weekday+1)%7).String()
		}
		return "weekly"
	case domainmodel.FrequencyMultipleWeekly:
		return fmt.Sprintf("%d times per week", c.FrequencyTimes)
	case domainmodel.FrequencyMonthly:
		if c.Monthday >= 1 {
			return fmt.Sprintf("monthly on day %d", c.Monthday)
		}
		return "monthly"
	case domainmodel.FrequencyMultipleMonthly:
		return fmt.Sprintf("%d times per month", c.FrequencyTimes)
	case domainmodel.FrequencyQuarterly:
		return "every quarter"
	case domainmodel.FrequencySemiAnnual:
		return "twice a year"
	case domainmodel.FrequencyYearly:
		return "once a year"
	case domainmodel.FrequencyFlexible:
		return fmt.Sprintf("within %d days", c.FrequencyDays)
	default:
		return string(c.FrequencyType)
	}
}
