package views

import (
	"strings"
	"testing"
)

func TestRenderBoardPanelSectionsAndAnnotations(t *testing.T) {
	out := RenderBoardPanel(BoardPanelData{
		ListView:   "3 chores",
		SelectedID: "c2",
		Items: []BoardItemData{
			{ID: "c1", Name: "Water plants", Section: SectionOverdue, Assignee: "Alice", Priority: "Medium", DaysUntilDue: -2},
			{ID: "c2", Name: "Dishes", Section: SectionDueToday, Assignee: "Bob", Priority: "High", SubtasksDone: 1, SubtasksTotal: 3},
			{ID: "c3", Name: "Clean fridge", Section: SectionUpcoming, Priority: "Low", DaysUntilDue: 4},
		},
	})

	for _, want := range []string{
		"Overdue:", "Due today:", "Upcoming:", "Done today:",
		"[RED] Water plants @Alice (2d late)",
		"> [YELLOW] Dishes @Bob [1/3]",
		"[GREEN] Clean fridge (in 4d)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("board output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Done today:\n  (none)") {
		t.Fatalf("empty section should render (none):\n%s", out)
	}
}

func TestRenderBoardPanelHighPriorityAlwaysRed(t *testing.T) {
	out := RenderBoardPanel(BoardPanelData{
		Items: []BoardItemData{
			{ID: "c1", Name: "Give cat medicine", Section: SectionUpcoming, Priority: "High", DaysUntilDue: 1},
		},
	})
	if !strings.Contains(out, "[RED] Give cat medicine") {
		t.Fatalf("high priority should render red even when upcoming:\n%s", out)
	}
}

func TestRenderStatsPanelRows(t *testing.T) {
	out := RenderStatsPanel(StatsPanelData{
		DoneToday: 2,
		DueToday:  3,
		Rows: []StatsRowData{
			{Name: "Alice", Open: 2, OpenMinutes: 35, DoneToday: 1, MinutesToday: 10, MonthlyShare: 60, Streak: 4},
		},
	})
	if !strings.Contains(out, "today: 2 done / 3 still due") {
		t.Fatalf("missing day summary:\n%s", out)
	}
	if !strings.Contains(out, "- Alice: 2 open (35m), 1 done today (10m), 60% this month, streak 4") {
		t.Fatalf("missing person row:\n%s", out)
	}
}

func TestRenderHistoryPanelGroupsByDayNewestFirst(t *testing.T) {
	out := RenderHistoryPanel(HistoryPanelData{
		Entries: []HistoryEntryData{
			{Date: "2026-02-10", Time: "09:00", Chore: "Dishes", By: "Alice"},
			{Date: "2026-02-11", Time: "08:30", Chore: "Vacuum", By: "Bob"},
		},
	})
	newest := strings.Index(out, "2026-02-11:")
	older := strings.Index(out, "2026-02-10:")
	if newest == -1 || older == -1 || newest > older {
		t.Fatalf("days should render newest first:\n%s", out)
	}
	if !strings.Contains(out, "08:30 Vacuum by Bob") {
		t.Fatalf("missing entry line:\n%s", out)
	}
}

func TestRenderChoreDetailPaneSubtasks(t *testing.T) {
	out := RenderChoreDetailPane(ChoreDetailData{
		SelectedID: "c1",
		Name:       "Dishes",
		Assignee:   "Bob",
		Priority:   "High",
		Frequency:  "every day",
		NextDue:    "2026-02-11",
		Duration:   15,
		Subtasks: []SubtaskLineData{
			{Name: "Rinse", Done: true},
			{Name: "Dry"},
		},
		SubtaskCursor: 1,
	})
	if !strings.Contains(out, "  [x] Rinse") {
		t.Fatalf("done subtask should render [x]:\n%s", out)
	}
	if !strings.Contains(out, "> [ ] Dry") {
		t.Fatalf("cursor should sit on the second subtask:\n%s", out)
	}
}

func TestRenderChoreDetailPaneEmptySelection(t *testing.T) {
	out := RenderChoreDetailPane(ChoreDetailData{})
	if !strings.Contains(out, "(no selection)") {
		t.Fatalf("empty selection output: %q", out)
	}
}
