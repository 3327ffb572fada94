package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/storage"
)

var ErrNotFound = storage.ErrNotFound

// Service owns the chore lifecycle on top of the repository: due-date
// bookkeeping, alternation, subtask aggregation, and notification batching.
type Service struct {
	repo storage.Repository
	log  *zap.Logger
}

func New(repo storage.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, log: logger}
}

// HistoryEntry is a completion record with its timestamp already parsed.
type HistoryEntry struct {
	ID      int64
	ChoreID string
	DoneBy  string
	DoneAt  time.Time
}

func (s *Service) choreFromRow(row storage.Chore, now time.Time) model.Chore {
	out := model.Chore{
		ID:             row.ID,
		Name:           row.Name,
		FrequencyType:  model.FrequencyType(row.FrequencyType),
		FrequencyDays:  row.FrequencyDays,
		FrequencyTimes: row.FrequencyTimes,
		Weekday:        row.Weekday,
		Monthday:       row.Monthday,
		AssignedTo:     row.AssignedTo,
		UseAlternating: row.UseAlternating,
		AlternateWith:  row.AlternateWith,
		LastDoneBy:     row.LastDoneBy,
		NotifyWhenDue:  row.NotifyWhenDue,
		HasSubtasks:    row.HasSubtasks,
		CompletionType: model.CompletionPolicy(row.CompletionType),
		StreakType:     row.StreakType,
		SubtasksPeriod: model.Period(row.SubtasksPeriod),
		Priority:       model.Priority(row.Priority),
		Duration:       row.Duration,
		Icon:           row.Icon,
		Description:    row.Description,
		StartMonth:     row.StartMonth,
		StartDay:       row.StartDay,
	}
	if row.LastDone != "" {
		t, ok := model.ParseInstant(row.LastDone, now)
		if !ok {
			s.log.Warn("unparseable last_done, treating as now",
				zap.String("chore_id", row.ID),
				zap.String("last_done", row.LastDone))
		}
		out.LastDone = &t
	}
	var err error
	if out.ActiveDays, err = model.DecodeDayMap(row.ActiveDays); err != nil {
		s.log.Warn("invalid active_days, ignoring",
			zap.String("chore_id", row.ID), zap.Error(err))
		out.ActiveDays = nil
	}
	if out.ActiveMonthdays, err = model.DecodeDayMap(row.ActiveMonthdays); err != nil {
		s.log.Warn("invalid active_monthdays, ignoring",
			zap.String("chore_id", row.ID), zap.Error(err))
		out.ActiveMonthdays = nil
	}
	return out
}

func rowFromChore(c model.Chore) storage.Chore {
	row := storage.Chore{
		ID:              c.ID,
		Name:            c.Name,
		FrequencyType:   string(c.FrequencyType),
		FrequencyDays:   c.FrequencyDays,
		FrequencyTimes:  c.FrequencyTimes,
		AssignedTo:      c.AssignedTo,
		Priority:        string(c.Priority),
		Duration:        c.Duration,
		LastDoneBy:      c.LastDoneBy,
		Icon:            c.Icon,
		Description:     c.Description,
		AlternateWith:   c.AlternateWith,
		UseAlternating:  c.UseAlternating,
		StartMonth:      c.StartMonth,
		StartDay:        c.StartDay,
		Weekday:         c.Weekday,
		Monthday:        c.Monthday,
		NotifyWhenDue:   c.NotifyWhenDue,
		ActiveDays:      model.EncodeDayMap(c.ActiveDays),
		ActiveMonthdays: model.EncodeDayMap(c.ActiveMonthdays),
		HasSubtasks:     c.HasSubtasks,
		CompletionType:  string(c.CompletionType),
		StreakType:      c.StreakType,
		SubtasksPeriod:  string(c.SubtasksPeriod),
	}
	if c.LastDone != nil {
		row.LastDone = storage.FormatTime(*c.LastDone)
	}
	return row
}

// UpsertChore validates and saves a chore, creating it when the id is new.
func (s *Service) UpsertChore(ctx context.Context, c model.Chore) error {
	if err := c.Validate(); err != nil {
		return err
	}
	row := rowFromChore(c)
	err := s.repo.UpdateChore(ctx, row)
	if errors.Is(err, storage.ErrNotFound) {
		return s.repo.CreateChore(ctx, row)
	}
	return err
}

func (s *Service) GetChore(ctx context.Context, id string) (model.Chore, error) {
	row, err := s.repo.GetChore(ctx, id)
	if err != nil {
		return model.Chore{}, err
	}
	return s.choreFromRow(row, time.Now()), nil
}

func (s *Service) ListChores(ctx context.Context, now time.Time) ([]model.Chore, error) {
	rows, err := s.repo.ListChores(ctx, storage.ChoreListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]model.Chore, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.choreFromRow(row, now))
	}
	return out, nil
}

func (s *Service) DeleteChore(ctx context.Context, id string) error {
	return s.repo.DeleteChore(ctx, id)
}

// MarkDone records a completion, swaps the assignee when the chore
// alternates, and stamps last_done. Chores with subtasks also get a
// completion row per subtask so the aggregate view stays consistent.
func (s *Service) MarkDone(ctx context.Context, choreID, person string, now time.Time) (model.Chore, error) {
	row, err := s.repo.GetChore(ctx, choreID)
	if err != nil {
		return model.Chore{}, err
	}
	if person == "" {
		person = row.AssignedTo
	}

	if _, err := s.repo.AppendHistory(ctx, storage.HistoryEntry{
		ChoreID: choreID,
		DoneBy:  person,
		DoneAt:  storage.FormatTime(now),
	}); err != nil {
		return model.Chore{}, fmt.Errorf("append history: %w", err)
	}

	if row.UseAlternating && row.AlternateWith != "" {
		row.AssignedTo, row.AlternateWith = row.AlternateWith, row.AssignedTo
	}
	row.LastDone = storage.FormatTime(now)
	row.LastDoneBy = person
	if err := s.repo.UpdateChore(ctx, row); err != nil {
		return model.Chore{}, fmt.Errorf("update chore: %w", err)
	}

	if row.HasSubtasks {
		subtasks, err := s.repo.ListSubtasks(ctx, choreID)
		if err != nil {
			return model.Chore{}, fmt.Errorf("list subtasks: %w", err)
		}
		for _, st := range subtasks {
			if _, err := s.repo.AppendSubtaskCompletion(ctx, storage.SubtaskCompletion{
				SubtaskID: st.ID,
				DoneBy:    person,
				DoneAt:    storage.FormatTime(now),
			}); err != nil {
				return model.Chore{}, fmt.Errorf("append subtask completion: %w", err)
			}
		}
	}

	s.log.Info("chore completed",
		zap.String("chore_id", choreID),
		zap.String("done_by", person))
	return s.choreFromRow(row, now), nil
}

// ResetChore undoes today's completions: history rows and subtask
// completions from today are removed and last_done is cleared.
func (s *Service) ResetChore(ctx context.Context, choreID string, now time.Time) error {
	row, err := s.repo.GetChore(ctx, choreID)
	if err != nil {
		return err
	}
	day := storage.DayKey(now)
	if err := s.repo.DeleteHistoryOnDay(ctx, choreID, day); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if row.HasSubtasks {
		if err := s.repo.DeleteSubtaskCompletionsOnDay(ctx, choreID, day); err != nil {
			return fmt.Errorf("delete subtask completions: %w", err)
		}
	}
	row.LastDone = ""
	row.LastDoneBy = ""
	if err := s.repo.UpdateChore(ctx, row); err != nil {
		return fmt.Errorf("update chore: %w", err)
	}
	s.log.Info("chore reset", zap.String("chore_id", choreID))
	return nil
}

// ForceDue backdates last_done just far enough that the chore reports as
// due today. A chore that was never completed is already due and is left
// untouched apart from the optional notification log entry.
func (s *Service) ForceDue(ctx context.Context, choreID string, now time.Time) error {
	row, err := s.repo.GetChore(ctx, choreID)
	if err != nil {
		return err
	}
	chore := s.choreFromRow(row, now)
	if chore.LastDone != nil {
		shift := chore.ForceDueShiftDays()
		backdated := model.DateOf(now).AddDate(0, 0, -(shift + 1))
		row.LastDone = storage.FormatTime(backdated)
		if err := s.repo.UpdateChore(ctx, row); err != nil {
			return fmt.Errorf("update chore: %w", err)
		}
	}
	if row.NotifyWhenDue {
		if err := s.repo.AppendNotificationLog(ctx, choreID, storage.FormatTime(now)); err != nil {
			return fmt.Errorf("append notification log: %w", err)
		}
	}
	s.log.Info("chore forced due", zap.String("chore_id", choreID))
	return nil
}

func (s *Service) History(ctx context.Context, choreID string, limit int, now time.Time) ([]HistoryEntry, error) {
	rows, err := s.repo.ListHistory(ctx, storage.HistoryListFilter{ChoreID: choreID, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		doneAt, ok := model.ParseInstant(row.DoneAt, now)
		if !ok {
			s.log.Warn("unparseable history done_at",
				zap.Int64("history_id", row.ID),
				zap.String("done_at", row.DoneAt))
		}
		out = append(out, HistoryEntry{ID: row.ID, ChoreID: row.ChoreID, DoneBy: row.DoneBy, DoneAt: doneAt})
	}
	return out, nil
}

// AddSubtask appends a subtask at the end of the chore's list and flips
// has_subtasks on the parent.
func (s *Service) AddSubtask(ctx context.Context, choreID, name string) (model.Subtask, error) {
	row, err := s.repo.GetChore(ctx, choreID)
	if err != nil {
		return model.Subtask{}, err
	}
	subtask := model.Subtask{ChoreID: choreID, Name: name}
	if err := subtask.Validate(); err != nil {
		return model.Subtask{}, err
	}
	existing, err := s.repo.ListSubtasks(ctx, choreID)
	if err != nil {
		return model.Subtask{}, fmt.Errorf("list subtasks: %w", err)
	}
	subtask.Position = len(existing)
	id, err := s.repo.CreateSubtask(ctx, storage.Subtask{
		ChoreID:  choreID,
		Name:     subtask.Name,
		Position: subtask.Position,
	})
	if err != nil {
		return model.Subtask{}, fmt.Errorf("create subtask: %w", err)
	}
	subtask.ID = id
	if !row.HasSubtasks {
		row.HasSubtasks = true
		if err := s.repo.UpdateChore(ctx, row); err != nil {
			return model.Subtask{}, fmt.Errorf("update chore: %w", err)
		}
	}
	return subtask, nil
}

// DeleteSubtask removes a subtask and clears has_subtasks on the parent
// when it was the last one.
func (s *Service) DeleteSubtask(ctx context.Context, subtaskID int64) error {
	subtask, err := s.repo.GetSubtask(ctx, subtaskID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSubtask(ctx, subtaskID); err != nil {
		return err
	}
	remaining, err := s.repo.ListSubtasks(ctx, subtask.ChoreID)
	if err != nil {
		return fmt.Errorf("list subtasks: %w", err)
	}
	if len(remaining) == 0 {
		row, err := s.repo.GetChore(ctx, subtask.ChoreID)
		if err != nil {
			return err
		}
		row.HasSubtasks = false
		if err := s.repo.UpdateChore(ctx, row); err != nil {
			return fmt.Errorf("update chore: %w", err)
		}
	}
	return nil
}

func (s *Service) Subtasks(ctx context.Context, choreID string) ([]model.Subtask, error) {
	rows, err := s.repo.ListSubtasks(ctx, choreID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Subtask, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Subtask{ID: row.ID, ChoreID: row.ChoreID, Name: row.Name, Position: row.Position})
	}
	return out, nil
}

// SubtaskCheck is a subtask plus whether it has a completion in the
// chore's current period.
type SubtaskCheck struct {
	Subtask model.Subtask
	Done    bool
}

// SubtaskChecklist reports each subtask of a chore with its done state for
// the period containing now.
func (s *Service) SubtaskChecklist(ctx context.Context, choreID string, now time.Time) ([]SubtaskCheck, error) {
	row, err := s.repo.GetChore(ctx, choreID)
	if err != nil {
		return nil, err
	}
	chore := s.choreFromRow(row, now)
	subtasks, err := s.Subtasks(ctx, choreID)
	if err != nil {
		return nil, err
	}
	if len(subtasks) == 0 {
		return nil, nil
	}

	periodStart := model.StartOfPeriod(chore.SubtasksPeriod, now)
	completions, err := s.repo.ListSubtaskCompletions(ctx, choreID, storage.DayKey(periodStart))
	if err != nil {
		return nil, fmt.Errorf("list subtask completions: %w", err)
	}
	done := make(map[int64]bool, len(completions))
	for _, sc := range completions {
		doneAt, _ := model.ParseInstant(sc.DoneAt, now)
		if !doneAt.Before(periodStart) {
			done[sc.SubtaskID] = true
		}
	}

	out := make([]SubtaskCheck, 0, len(subtasks))
	for _, st := range subtasks {
		out = append(out, SubtaskCheck{Subtask: st, Done: done[st.ID]})
	}
	return out, nil
}

// CompleteSubtask records a single subtask completion and re-evaluates the
// parent chore's aggregate state.
func (s *Service) CompleteSubtask(ctx context.Context, subtaskID int64, person string, now time.Time) (model.Chore, error) {
	subtask, err := s.repo.GetSubtask(ctx, subtaskID)
	if err != nil {
		return model.Chore{}, err
	}
	if _, err := s.repo.AppendSubtaskCompletion(ctx, storage.SubtaskCompletion{
		SubtaskID: subtaskID,
		DoneBy:    person,
		DoneAt:    storage.FormatTime(now),
	}); err != nil {
		return model.Chore{}, fmt.Errorf("append subtask completion: %w", err)
	}
	return s.RecomputeCompletion(ctx, subtask.ChoreID, now)
}

// RecomputeCompletion derives the parent chore's last_done from its
// subtask completions inside the current period. With the "all" policy the
// chore completes when every subtask has a completion this period; with
// "any" a single one suffices. last_done only ever moves to a strictly
// newer calendar date, so re-evaluating is idempotent.
func (s *Service) RecomputeCompletion(ctx context.Context, choreID string, now time.Time) (model.Chore, error) {
	row, err := s.repo.GetChore(ctx, choreID)
	if err != nil {
		return model.Chore{}, err
	}
	chore := s.choreFromRow(row, now)
	if !chore.HasSubtasks {
		return chore, nil
	}
	subtasks, err := s.repo.ListSubtasks(ctx, choreID)
	if err != nil {
		return model.Chore{}, fmt.Errorf("list subtasks: %w", err)
	}
	if len(subtasks) == 0 {
		return chore, nil
	}

	periodStart := model.StartOfPeriod(chore.SubtasksPeriod, now)
	completions, err := s.repo.ListSubtaskCompletions(ctx, choreID, storage.DayKey(periodStart))
	if err != nil {
		return model.Chore{}, fmt.Errorf("list subtask completions: %w", err)
	}

	completed := make(map[int64]bool, len(subtasks))
	var newest time.Time
	var newestBy string
	for _, sc := range completions {
		doneAt, ok := model.ParseInstant(sc.DoneAt, now)
		if !ok {
			s.log.Warn("unparseable subtask completion done_at",
				zap.Int64("completion_id", sc.ID),
				zap.String("done_at", sc.DoneAt))
		}
		if doneAt.Before(periodStart) {
			continue
		}
		completed[sc.SubtaskID] = true
		if doneAt.After(newest) {
			newest = doneAt
			newestBy = sc.DoneBy
		}
	}

	count := 0
	for _, st := range subtasks {
		if completed[st.ID] {
			count++
		}
	}
	shouldComplete := (chore.CompletionType == model.CompleteAll && count == len(subtasks)) ||
		(chore.CompletionType == model.CompleteAny && count > 0)
	if !shouldComplete {
		return chore, nil
	}
	if chore.LastDone != nil && !model.DateOf(newest).After(model.DateOf(*chore.LastDone)) {
		return chore, nil
	}

	row.LastDone = storage.FormatTime(newest)
	row.LastDoneBy = newestBy
	if err := s.repo.UpdateChore(ctx, row); err != nil {
		return model.Chore{}, fmt.Errorf("update chore: %w", err)
	}
	s.log.Info("chore completed via subtasks",
		zap.String("chore_id", choreID),
		zap.String("done_by", newestBy),
		zap.Int("completed", count),
		zap.Int("total", len(subtasks)))
	return s.choreFromRow(row, now), nil
}

// AddAssignee registers a household member with a generated id.
func (s *Service) AddAssignee(ctx context.Context, name, color string) (model.Assignee, error) {
	if color == "" {
		color = "#CCCCCC"
	}
	assignee := model.Assignee{ID: uuid.NewString(), Name: name, Color: color, Active: true}
	if err := assignee.Validate(); err != nil {
		return model.Assignee{}, err
	}
	if err := s.repo.CreateAssignee(ctx, storage.Assignee{
		ID:     assignee.ID,
		Name:   assignee.Name,
		Color:  assignee.Color,
		Active: assignee.Active,
	}); err != nil {
		return model.Assignee{}, fmt.Errorf("create assignee: %w", err)
	}
	return assignee, nil
}

func (s *Service) UpdateAssignee(ctx context.Context, a model.Assignee) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateAssignee(ctx, storage.Assignee{ID: a.ID, Name: a.Name, Color: a.Color, Active: a.Active})
}

func (s *Service) DeleteAssignee(ctx context.Context, id string) error {
	return s.repo.DeleteAssignee(ctx, id)
}

func (s *Service) ListAssignees(ctx context.Context, activeOnly bool) ([]model.Assignee, error) {
	rows, err := s.repo.ListAssignees(ctx, storage.AssigneeListFilter{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	out := make([]model.Assignee, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Assignee{ID: row.ID, Name: row.Name, Color: row.Color, Active: row.Active})
	}
	return out, nil
}
