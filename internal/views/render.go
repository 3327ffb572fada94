package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// AppData is the full frame of the chores UI: header, day summary counts,
// the two panes, and the status/notification/footer lines.
type AppData struct {
	Header        string
	DueCount      int
	OverdueCount  int
	DoneToday     int
	LeftPane      string
	RightPane     string
	StatusLine    string
	StatusIsError bool
	Footer        string
	Notification  string
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dueCountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	overdueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	quietStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderApp lays out the two panes under the header and a chore summary
// bar. Overdue counts use the alert color so a neglected board stands out
// before any section is read.
func RenderApp(data AppData) string {
	left := panelStyle.Width(58).Render(data.LeftPane)
	right := panelStyle.Width(58).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := statusStyle.Render(data.StatusLine)
	if data.StatusIsError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		renderSummaryBar(data),
		row,
		status,
	}
	if data.Notification != "" {
		lines = append(lines, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func renderSummaryBar(data AppData) string {
	due := dueCountStyle.Render(fmt.Sprintf("%d due", data.DueCount))
	if data.DueCount == 0 {
		due = quietStyle.Render("0 due")
	}
	overdue := quietStyle.Render("0 overdue")
	if data.OverdueCount > 0 {
		overdue = overdueStyle.Render(fmt.Sprintf("%d overdue", data.OverdueCount))
	}
	done := doneStyle.Render(fmt.Sprintf("%d done today", data.DoneToday))
	return strings.Join([]string{due, overdue, done}, " | ")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
