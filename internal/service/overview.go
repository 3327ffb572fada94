package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/storage"
)

// ChoreStatus is a chore plus its derived schedule state for one point in
// time, ready for rendering.
type ChoreStatus struct {
	Chore          model.Chore
	NextDue        time.Time
	DaysUntilDue   int
	DueToday       bool
	Overdue        bool
	CompletedToday bool
	Actionable     bool
	SubtasksDone   int
	SubtasksTotal  int
}

// PersonStats summarizes one household member's day and month. Minutes
// come from chore durations; MonthlyShare is the person's percentage of
// all completions this calendar month.
type PersonStats struct {
	Name             string
	Color            string
	OpenCount        int
	CompletedToday   int
	MinutesToday     int
	PendingMinutes   int
	MonthlyCompleted int
	MonthlyShare     int
	Streak           int
}

type Overview struct {
	GeneratedAt  time.Time
	Statuses     []ChoreStatus
	DueCount     int
	OverdueCount int
	DoneToday    int
}

// Notification is one batched desktop message covering every chore of one
// assignee that newly came due.
type Notification struct {
	Recipient string
	Title     string
	Message   string
}

// BuildOverview classifies every chore against now. Rows without a name
// are placeholder artifacts from hand-edited databases and are skipped.
// Statuses sort actionable-first, then by next due date, priority, name.
func (s *Service) BuildOverview(ctx context.Context, now time.Time) (Overview, error) {
	chores, err := s.ListChores(ctx, now)
	if err != nil {
		return Overview{}, err
	}

	out := Overview{GeneratedAt: now, Statuses: make([]ChoreStatus, 0, len(chores))}
	for _, c := range chores {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		status := ChoreStatus{
			Chore:          c,
			NextDue:        c.NextDueDate(now),
			DaysUntilDue:   c.DaysUntilDue(now),
			DueToday:       c.IsDueToday(now),
			Overdue:        c.IsOverdue(now),
			CompletedToday: c.CompletedToday(now),
			Actionable:     c.IsActionable(now),
		}
		if c.HasSubtasks {
			checks, err := s.SubtaskChecklist(ctx, c.ID, now)
			if err != nil {
				return Overview{}, err
			}
			status.SubtasksTotal = len(checks)
			for _, check := range checks {
				if check.Done {
					status.SubtasksDone++
				}
			}
		}
		if status.Actionable {
			out.DueCount++
		}
		if status.Overdue && !status.CompletedToday {
			out.OverdueCount++
		}
		if status.CompletedToday {
			out.DoneToday++
		}
		out.Statuses = append(out.Statuses, status)
	}

	sort.SliceStable(out.Statuses, func(i, j int) bool {
		a, b := out.Statuses[i], out.Statuses[j]
		if a.Actionable != b.Actionable {
			return a.Actionable
		}
		if !a.NextDue.Equal(b.NextDue) {
			return a.NextDue.Before(b.NextDue)
		}
		if ra, rb := a.Chore.Priority.Rank(), b.Chore.Priority.Rank(); ra != rb {
			return ra < rb
		}
		return a.Chore.Name < b.Chore.Name
	})
	return out, nil
}

// Stats builds per-person summaries for every active assignee.
func (s *Service) Stats(ctx context.Context, now time.Time) ([]PersonStats, error) {
	assignees, err := s.ListAssignees(ctx, true)
	if err != nil {
		return nil, err
	}
	chores, err := s.ListChores(ctx, now)
	if err != nil {
		return nil, err
	}
	streaks, err := s.Streaks(ctx, now)
	if err != nil {
		return nil, err
	}

	monthStart := storage.DayKey(model.StartOfPeriod(model.PeriodMonth, now))
	monthRows, err := s.repo.ListHistory(ctx, storage.HistoryListFilter{Since: monthStart})
	if err != nil {
		return nil, err
	}
	monthly := make(map[string]int, len(assignees))
	monthTotal := 0
	for _, row := range monthRows {
		monthly[row.DoneBy]++
		monthTotal++
	}

	out := make([]PersonStats, 0, len(assignees))
	for _, a := range assignees {
		stats := PersonStats{
			Name:             a.Name,
			Color:            a.Color,
			MonthlyCompleted: monthly[a.Name],
			Streak:           streaks[a.Name],
		}
		if monthTotal > 0 {
			stats.MonthlyShare = monthly[a.Name] * 100 / monthTotal
		}
		for _, c := range chores {
			if c.CompletedToday(now) && c.LastDoneBy == a.Name {
				stats.CompletedToday++
				stats.MinutesToday += c.Duration
			}
			if c.AssignedTo != a.Name {
				continue
			}
			if c.IsActionable(now) {
				stats.OpenCount++
				stats.PendingMinutes += c.Duration
			}
		}
		out = append(out, stats)
	}
	return out, nil
}

// DueNotifications gathers every chore that is actionable, opted in to
// notifications, and not yet notified today, then batches them into one
// summary per assignee. Each covered chore gets a notification_log row so
// the next check the same day stays quiet.
func (s *Service) DueNotifications(ctx context.Context, now time.Time) ([]Notification, error) {
	chores, err := s.ListChores(ctx, now)
	if err != nil {
		return nil, err
	}
	day := storage.DayKey(now)

	byPerson := make(map[string][]model.Chore)
	for _, c := range chores {
		if !c.NotifyWhenDue || !c.IsActionable(now) {
			continue
		}
		count, err := s.repo.CountNotificationsOnDay(ctx, c.ID, day)
		if err != nil {
			return nil, fmt.Errorf("count notifications: %w", err)
		}
		if count > 0 {
			continue
		}
		byPerson[c.AssignedTo] = append(byPerson[c.AssignedTo], c)
	}
	if len(byPerson) == 0 {
		return nil, nil
	}

	recipients := make([]string, 0, len(byPerson))
	for person := range byPerson {
		recipients = append(recipients, person)
	}
	sort.Strings(recipients)

	out := make([]Notification, 0, len(recipients))
	for _, person := range recipients {
		pending := byPerson[person]
		sort.SliceStable(pending, func(i, j int) bool {
			if ra, rb := pending[i].Priority.Rank(), pending[j].Priority.Rank(); ra != rb {
				return ra < rb
			}
			return pending[i].Name < pending[j].Name
		})

		for _, c := range pending {
			if err := s.repo.AppendNotificationLog(ctx, c.ID, storage.FormatTime(now)); err != nil {
				return nil, fmt.Errorf("append notification log: %w", err)
			}
		}

		note := Notification{Recipient: person}
		if len(pending) == 1 {
			note.Title = "Chore due"
			note.Message = fmt.Sprintf("You have 1 task on today's schedule: %s", pending[0].Name)
		} else {
			lines := make([]string, 0, len(pending))
			for _, c := range pending {
				lines = append(lines, "• "+c.Name)
			}
			note.Title = fmt.Sprintf("%d tasks on today's schedule", len(pending))
			note.Message = strings.Join(lines, "\n")
		}
		out = append(out, note)

		s.log.Info("due notification batched",
			zap.String("recipient", person),
			zap.Int("chores", len(pending)))
	}
	return out, nil
}
