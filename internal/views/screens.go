package views

import (
	"fmt"
	"sort"
	"strings"
)

type BoardItemData struct {
	ID            string
	Name          string
	Icon          string
	Section       string
	Assignee      string
	Priority      string
	NextDue       string
	DaysUntilDue  int
	Duration      int
	SubtasksDone  int
	SubtasksTotal int
}

type BoardPanelData struct {
	ListView   string
	Items      []BoardItemData
	SelectedID string
}

type StatsRowData struct {
	Name         string
	Open         int
	OpenMinutes  int
	DoneToday    int
	MinutesToday int
	MonthlyShare int
	Streak       int
}

type StatsPanelData struct {
	TableView    string
	Rows         []StatsRowData
	DoneToday    int
	DueToday     int
	ProgressView string
}

type HistoryEntryData struct {
	Date  string
	Time  string
	Chore string
	By    string
}

type HistoryPanelData struct {
	TableView string
	Entries   []HistoryEntryData
}

type SubtaskLineData struct {
	Name string
	Done bool
}

type ChoreDetailData struct {
	SelectedID      string
	Name            string
	Assignee        string
	Priority        string
	Frequency       string
	NextDue         string
	LastDone        string
	LastDoneBy      string
	Duration        int
	Subtasks        []SubtaskLineData
	SubtaskCursor   int
	DescriptionView string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

const (
	SectionOverdue  = "Overdue"
	SectionDueToday = "Due today"
	SectionUpcoming = "Upcoming"
	SectionDone     = "Done today"
)

func RenderBoardPanel(data BoardPanelData) string {
	sections := map[string][]BoardItemData{}
	for _, item := range data.Items {
		sections[item.Section] = append(sections[item.Section], item)
	}

	var b strings.Builder
	b.WriteString("board:\n")
	b.WriteString("actions: [j/k]move [d]done [t]subtask [r]reset [f]force-due\n")
	b.WriteString(data.ListView + "\n")
	renderBoardSection(&b, SectionOverdue, sections[SectionOverdue], data.SelectedID)
	renderBoardSection(&b, SectionDueToday, sections[SectionDueToday], data.SelectedID)
	renderBoardSection(&b, SectionUpcoming, sections[SectionUpcoming], data.SelectedID)
	renderBoardSection(&b, SectionDone, sections[SectionDone], data.SelectedID)
	return strings.TrimSpace(b.String())
}

func renderBoardSection(b *strings.Builder, title string, items []BoardItemData, selectedID string) {
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		cursor := " "
		if selectedID == item.ID {
			cursor = ">"
		}
		name := item.Name
		if item.Icon != "" {
			name = item.Icon + " " + name
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, priorityBadge(item), name))
		if item.Assignee != "" {
			b.WriteString(" @" + item.Assignee)
		}
		if item.SubtasksTotal > 0 {
			b.WriteString(fmt.Sprintf(" [%d/%d]", item.SubtasksDone, item.SubtasksTotal))
		}
		switch {
		case item.Section == SectionOverdue:
			b.WriteString(fmt.Sprintf(" (%dd late)", -item.DaysUntilDue))
		case item.Section == SectionUpcoming:
			b.WriteString(fmt.Sprintf(" (in %dd)", item.DaysUntilDue))
		}
		b.WriteString("\n")
	}
}

func priorityBadge(item BoardItemData) string {
	if item.Section == SectionOverdue || item.Priority == "High" {
		return "[RED]"
	}
	if item.Section == SectionDueToday {
		return "[YELLOW]"
	}
	return "[GREEN]"
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString(fmt.Sprintf("today: %d done / %d still due\n", data.DoneToday, data.DueToday))
	if data.ProgressView != "" {
		b.WriteString("progress: " + data.ProgressView + "\n")
	}
	b.WriteString(data.TableView + "\n")
	if len(data.Rows) == 0 {
		b.WriteString("(no household members)")
		return strings.TrimSpace(b.String())
	}
	for _, row := range data.Rows {
		b.WriteString(fmt.Sprintf("- %s: %d open (%dm), %d done today (%dm), %d%% this month, streak %d\n",
			row.Name, row.Open, row.OpenMinutes, row.DoneToday, row.MinutesToday, row.MonthlyShare, row.Streak))
	}
	return strings.TrimSpace(b.String())
}

func RenderHistoryPanel(data HistoryPanelData) string {
	var b strings.Builder
	b.WriteString("history:\n")
	b.WriteString(data.TableView + "\n")

	grouped := make(map[string][]HistoryEntryData)
	days := make([]string, 0)
	for _, entry := range data.Entries {
		if _, ok := grouped[entry.Date]; !ok {
			days = append(days, entry.Date)
		}
		grouped[entry.Date] = append(grouped[entry.Date], entry)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	if len(days) == 0 {
		b.WriteString("(no completions yet)")
		return strings.TrimSpace(b.String())
	}

	for _, day := range days {
		b.WriteString(fmt.Sprintf("\n%s:\n", day))
		for _, entry := range grouped[day] {
			b.WriteString(fmt.Sprintf("  %s %s by %s\n", entry.Time, entry.Chore, entry.By))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderChoreDetailPane(data ChoreDetailData) string {
	if strings.TrimSpace(data.SelectedID) == "" {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("name: %s\n", data.Name))
	b.WriteString(fmt.Sprintf("assigned: %s | priority: %s | %dm\n", data.Assignee, data.Priority, data.Duration))
	b.WriteString(fmt.Sprintf("frequency: %s\n", data.Frequency))
	b.WriteString(fmt.Sprintf("next due: %s\n", data.NextDue))
	if data.LastDone != "" {
		b.WriteString(fmt.Sprintf("last done: %s by %s\n", data.LastDone, data.LastDoneBy))
	}
	if len(data.Subtasks) > 0 {
		b.WriteString("subtasks: [tab]select [t]complete\n")
		for i, st := range data.Subtasks {
			cursor := " "
			if i == data.SubtaskCursor {
				cursor = ">"
			}
			mark := "[ ]"
			if st.Done {
				mark = "[x]"
			}
			b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, mark, st.Name))
		}
	}
	if data.DescriptionView != "" {
		b.WriteString("\n" + data.DescriptionView)
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
