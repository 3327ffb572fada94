package update

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	domainmodel "github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/service"
)

var testClock = time.Date(2026, time.February, 11, 14, 0, 0, 0, time.UTC)

type stubService struct {
	overview service.Overview
	stats    []service.PersonStats
	history  []service.HistoryEntry
	checks   []service.SubtaskCheck
	notes    []service.Notification

	markedDone   []string
	markedBy     []string
	resets       []string
	forced       []string
	completedSub []int64
	upserted     []domainmodel.Chore
}

func (s *stubService) BuildOverview(context.Context, time.Time) (service.Overview, error) {
	return s.overview, nil
}

func (s *stubService) Stats(context.Context, time.Time) ([]service.PersonStats, error) {
	return s.stats, nil
}

func (s *stubService) History(context.Context, string, int, time.Time) ([]service.HistoryEntry, error) {
	return s.history, nil
}

func (s *stubService) DueNotifications(context.Context, time.Time) ([]service.Notification, error) {
	return s.notes, nil
}

func (s *stubService) UpsertChore(_ context.Context, c domainmodel.Chore) error {
	s.upserted = append(s.upserted, c)
	return nil
}

func (s *stubService) MarkDone(_ context.Context, choreID, person string, _ time.Time) (domainmodel.Chore, error) {
	s.markedDone = append(s.markedDone, choreID)
	s.markedBy = append(s.markedBy, person)
	for _, status := range s.overview.Statuses {
		if status.Chore.ID == choreID {
			done := status.Chore
			if person == "" {
				person = done.AssignedTo
			}
			done.LastDoneBy = person
			return done, nil
		}
	}
	return domainmodel.Chore{ID: choreID, LastDoneBy: person}, nil
}

func (s *stubService) ResetChore(_ context.Context, choreID string, _ time.Time) error {
	s.resets = append(s.resets, choreID)
	return nil
}

func (s *stubService) ForceDue(_ context.Context, choreID string, _ time.Time) error {
	s.forced = append(s.forced, choreID)
	return nil
}

func (s *stubService) AddSubtask(_ context.Context, choreID, name string) (domainmodel.Subtask, error) {
	return domainmodel.Subtask{ID: 1, ChoreID: choreID, Name: name}, nil
}

func (s *stubService) CompleteSubtask(_ context.Context, subtaskID int64, _ string, _ time.Time) (domainmodel.Chore, error) {
	s.completedSub = append(s.completedSub, subtaskID)
	if len(s.overview.Statuses) > 0 {
		return s.overview.Statuses[0].Chore, nil
	}
	return domainmodel.Chore{}, nil
}

func (s *stubService) Subtasks(context.Context, string) ([]domainmodel.Subtask, error) {
	return nil, nil
}

func (s *stubService) SubtaskChecklist(context.Context, string, time.Time) ([]service.SubtaskCheck, error) {
	return s.checks, nil
}

func stubOverview() service.Overview {
	dishes := domainmodel.Chore{ID: "chore-dishes", Name: "Dishes", AssignedTo: "Alice", Priority: domainmodel.PriorityHigh}
	vacuum := domainmodel.Chore{ID: "chore-vacuum", Name: "Vacuum", AssignedTo: "Bob", Priority: domainmodel.PriorityLow}
	return service.Overview{
		GeneratedAt: testClock,
		Statuses: []service.ChoreStatus{
			{Chore: dishes, NextDue: testClock, DueToday: true, Actionable: true},
			{Chore: vacuum, NextDue: testClock.AddDate(0, 0, 3), DaysUntilDue: 3},
		},
		DueCount: 1,
	}
}

func newTestModel(svc *stubService) Model {
	m := NewModel(svc)
	m.now = func() time.Time { return testClock }
	return m
}

func loadOverview(t *testing.T, m Model, svc *stubService) Model {
	t.Helper()
	updated, _ := m.Update(OverviewLoadedMsg{Overview: svc.overview})
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func typeInput(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	return m
}

func TestViewSwitchKeysLoadTheirData(t *testing.T) {
	svc := &stubService{
		overview: stubOverview(),
		stats:    []service.PersonStats{{Name: "Alice", OpenCount: 1, Streak: 4}},
	}
	m := newTestModel(svc)

	updated, cmd := m.Update(keyMsg("2"))
	m = updated.(Model)
	if m.CurrentView != ViewStats {
		t.Fatalf("view = %s, want %s", m.CurrentView, ViewStats)
	}
	if cmd == nil {
		t.Fatalf("stats switch should load stats")
	}
	msg := cmd()
	loaded, ok := msg.(StatsLoadedMsg)
	if !ok {
		t.Fatalf("msg = %T, want StatsLoadedMsg", msg)
	}
	if len(loaded.Rows) != 1 || loaded.Rows[0].Name != "Alice" {
		t.Fatalf("unexpected stats rows: %+v", loaded.Rows)
	}

	updated, _ = m.Update(keyMsg("3"))
	m = updated.(Model)
	if m.CurrentView != ViewHistory {
		t.Fatalf("view = %s, want %s", m.CurrentView, ViewHistory)
	}

	updated, _ = m.Update(keyMsg("1"))
	m = updated.(Model)
	if m.CurrentView != ViewBoard {
		t.Fatalf("view = %s, want %s", m.CurrentView, ViewBoard)
	}
}

func TestBoardCursorFollowsSortedOverview(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := loadOverview(t, newTestModel(svc), svc)

	if m.SelectedChoreID != "chore-dishes" {
		t.Fatalf("initial selection = %q, want chore-dishes", m.SelectedChoreID)
	}

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(Model)
	if m.SelectedChoreID != "chore-vacuum" {
		t.Fatalf("after j selection = %q, want chore-vacuum", m.SelectedChoreID)
	}

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(Model)
	if m.SelectedChoreID != "chore-vacuum" {
		t.Fatalf("cursor should clamp at the last chore")
	}

	updated, _ = m.Update(keyMsg("k"))
	m = updated.(Model)
	if m.SelectedChoreID != "chore-dishes" {
		t.Fatalf("after k selection = %q, want chore-dishes", m.SelectedChoreID)
	}
}

func TestMarkDoneKeyRoundTrip(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := loadOverview(t, newTestModel(svc), svc)

	updated, cmd := m.Update(keyMsg("d"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("d should produce a command")
	}
	msg := cmd()
	applied, ok := msg.(ActionAppliedMsg)
	if !ok {
		t.Fatalf("msg = %T, want ActionAppliedMsg", msg)
	}
	if len(svc.markedDone) != 1 || svc.markedDone[0] != "chore-dishes" {
		t.Fatalf("marked = %v, want [chore-dishes]", svc.markedDone)
	}

	updated, refresh := m.Update(applied)
	m = updated.(Model)
	if m.Status.Text != applied.Message {
		t.Fatalf("status = %q, want %q", m.Status.Text, applied.Message)
	}
	if refresh == nil {
		t.Fatalf("a completed action should trigger a board reload")
	}
}

func TestSubtaskCursorAndCompleteKey(t *testing.T) {
	svc := &stubService{
		overview: stubOverview(),
		checks: []service.SubtaskCheck{
			{Subtask: domainmodel.Subtask{ID: 11, Name: "Rinse"}, Done: true},
			{Subtask: domainmodel.Subtask{ID: 12, Name: "Dry"}},
		},
	}
	m := loadOverview(t, newTestModel(svc), svc)
	updated, _ := m.Update(ChecklistLoadedMsg{ChoreID: "chore-dishes", Checks: svc.checks})
	m = updated.(Model)

	updated, _ = m.Update(keyMsg("tab"))
	m = updated.(Model)
	if m.SubtaskCursor != 1 {
		t.Fatalf("SubtaskCursor = %d, want 1", m.SubtaskCursor)
	}

	updated, cmd := m.Update(keyMsg("t"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("t on an open subtask should produce a command")
	}
	if _, ok := cmd().(ActionAppliedMsg); !ok {
		t.Fatalf("expected ActionAppliedMsg")
	}
	if len(svc.completedSub) != 1 || svc.completedSub[0] != 12 {
		t.Fatalf("completed = %v, want [12]", svc.completedSub)
	}
}

func TestCompleteKeyOnDoneSubtaskIsQuiet(t *testing.T) {
	svc := &stubService{
		overview: stubOverview(),
		checks:   []service.SubtaskCheck{{Subtask: domainmodel.Subtask{ID: 11, Name: "Rinse"}, Done: true}},
	}
	m := loadOverview(t, newTestModel(svc), svc)
	updated, _ := m.Update(ChecklistLoadedMsg{ChoreID: "chore-dishes", Checks: svc.checks})
	m = updated.(Model)

	updated, cmd := m.Update(keyMsg("t"))
	m = updated.(Model)
	if cmd != nil {
		t.Fatalf("t on a done subtask should not call the service")
	}
	if len(svc.completedSub) != 0 {
		t.Fatalf("completed = %v, want none", svc.completedSub)
	}
	if !strings.Contains(m.Status.Text, "already done") {
		t.Fatalf("status = %q", m.Status.Text)
	}
}

func TestChecklistLoadedIgnoresStaleChore(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := loadOverview(t, newTestModel(svc), svc)

	updated, _ := m.Update(ChecklistLoadedMsg{
		ChoreID: "chore-vacuum",
		Checks:  []service.SubtaskCheck{{Subtask: domainmodel.Subtask{ID: 9, Name: "Stale"}}},
	})
	m = updated.(Model)
	if len(m.Checklist) != 0 {
		t.Fatalf("checklist for a non-selected chore should be dropped")
	}
}

func TestPaletteDoneCommandResolvesByName(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := loadOverview(t, newTestModel(svc), svc)

	updated, _ := m.Update(keyMsg("/"))
	m = updated.(Model)
	if !m.Palette.Active {
		t.Fatalf("palette should be active")
	}

	m = typeInput(t, m, "done vacuum by:Carol")
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	if m.Palette.Active {
		t.Fatalf("palette should close on enter")
	}
	if len(svc.markedDone) != 1 || svc.markedDone[0] != "chore-vacuum" {
		t.Fatalf("marked = %v, want [chore-vacuum]", svc.markedDone)
	}
	if svc.markedBy[0] != "Carol" {
		t.Fatalf("by = %q, want Carol", svc.markedBy[0])
	}
	if !strings.Contains(m.Status.Text, "Vacuum") {
		t.Fatalf("status = %q", m.Status.Text)
	}
}

func TestPaletteAddCommandCreatesChore(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := loadOverview(t, newTestModel(svc), svc)

	updated, _ := m.Update(keyMsg("/"))
	m = updated.(Model)
	m = typeInput(t, m, "add Water plants")
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	if len(svc.upserted) != 1 {
		t.Fatalf("upserted = %d chores, want 1", len(svc.upserted))
	}
	created := svc.upserted[0]
	if created.Name != "Water plants" {
		t.Fatalf("name = %q", created.Name)
	}
	if created.ID == "" {
		t.Fatalf("add should generate an id")
	}
	if created.FrequencyType != domainmodel.FrequencyWeekly {
		t.Fatalf("default frequency = %q", created.FrequencyType)
	}
}

func TestPaletteRejectsUnknownCommand(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := loadOverview(t, newTestModel(svc), svc)

	updated, _ := m.Update(keyMsg("/"))
	m = updated.(Model)
	m = typeInput(t, m, "frobnicate everything")
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	if !m.Status.IsError {
		t.Fatalf("unknown command should set an error status, got %q", m.Status.Text)
	}
}

func TestPaletteEscCancels(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := loadOverview(t, newTestModel(svc), svc)

	updated, _ := m.Update(keyMsg("/"))
	m = updated.(Model)
	m = typeInput(t, m, "done vacu")
	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(Model)

	if m.Palette.Active {
		t.Fatalf("esc should close the palette")
	}
	if len(svc.markedDone) != 0 {
		t.Fatalf("cancelled command should not reach the service")
	}
}

func TestDueNotesUpdateNotifications(t *testing.T) {
	svc := &stubService{
		overview: stubOverview(),
		notes: []service.Notification{
			{Recipient: "Alice", Title: "Chore due", Message: "You have 1 task on today's schedule: Dishes"},
			{Recipient: "Bob", Title: "2 tasks on today's schedule", Message: "• Trash\n• Vacuum"},
		},
	}
	m := loadOverview(t, newTestModel(svc), svc)

	updated, cmd := m.Update(DueCheckMsg{})
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("due check should query notifications")
	}

	updated, refresh := m.Update(DueNotesMsg{Notes: svc.notes})
	m = updated.(Model)
	if len(m.Notifications) != 2 {
		t.Fatalf("notifications = %d, want one per recipient", len(m.Notifications))
	}
	if m.Notifications[0].Title != "Alice: Chore due" {
		t.Fatalf("title = %q", m.Notifications[0].Title)
	}
	if m.Notifications[1].Title != "Bob: 2 tasks on today's schedule" {
		t.Fatalf("title = %q", m.Notifications[1].Title)
	}
	if m.Status.Text != "Bob: 2 tasks on today's schedule" {
		t.Fatalf("status = %q", m.Status.Text)
	}
	if refresh == nil {
		t.Fatalf("notes should trigger a board reload")
	}
}

func TestViewRendersBoardSectionsAndHeader(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := loadOverview(t, newTestModel(svc), svc)

	out := m.View()
	if !strings.Contains(out, "choresd | view: Board | selected: chore-dishes") {
		t.Fatalf("header missing from view:\n%s", out)
	}
	if !strings.Contains(out, "Due today") || !strings.Contains(out, "Upcoming") {
		t.Fatalf("board sections missing from view:\n%s", out)
	}
	if !strings.Contains(out, "Dishes") || !strings.Contains(out, "Vacuum") {
		t.Fatalf("chores missing from view:\n%s", out)
	}
}

func TestPaletteShowSwitchesView(t *testing.T) {
	svc := &stubService{
		overview: stubOverview(),
		stats:    []service.PersonStats{{Name: "Alice"}},
	}
	m := loadOverview(t, newTestModel(svc), svc)

	updated, _ := m.Update(keyMsg("/"))
	m = updated.(Model)
	m = typeInput(t, m, "show stats")
	updated, cmd := m.Update(keyMsg("enter"))
	m = updated.(Model)
	if m.CurrentView != ViewStats {
		t.Fatalf("show stats left view on %s", m.CurrentView)
	}
	if cmd == nil {
		t.Fatalf("show stats should load stats")
	}
	if _, ok := cmd().(StatsLoadedMsg); !ok {
		t.Fatalf("expected StatsLoadedMsg")
	}

	updated, _ = m.Update(keyMsg("/"))
	m = updated.(Model)
	m = typeInput(t, m, "show history")
	updated, cmd = m.Update(keyMsg("enter"))
	m = updated.(Model)
	if m.CurrentView != ViewHistory {
		t.Fatalf("show history left view on %s", m.CurrentView)
	}
	if cmd == nil {
		t.Fatalf("show history should load the completion log")
	}
}

func TestFrequencyLabelUsesMondayZeroEncoding(t *testing.T) {
	c := domainmodel.Chore{FrequencyType: domainmodel.FrequencyWeekly, Weekday: 0}
	if got := frequencyLabel(c); got != "weekly on Monday" {
		t.Fatalf("label = %q, want weekly on Monday", got)
	}
	c.Weekday = 6
	if got := frequencyLabel(c); got != "weekly on Sunday" {
		t.Fatalf("label = %q, want weekly on Sunday", got)
	}
	c.Weekday = -1
	if got := frequencyLabel(c); got != "weekly" {
		t.Fatalf("label = %q, want weekly", got)
	}
}

func TestQuitKey(t *testing.T) {
	svc := &stubService{overview: stubOverview()}
	m := newTestModel(svc)

	updated, cmd := m.Update(keyMsg("q"))
	m = updated.(Model)
	if !m.Quitting {
		t.Fatalf("q should set Quitting")
	}
	if cmd == nil {
		t.Fatalf("q should return tea.Quit")
	}
}
