package service

import (
	"context"
	"sort"
	"strings"

	"github.com/sandeepkv93/choresd/internal/storage"
)

// fakeRepo is an in-memory storage.Repository with the same filter and
// ordering semantics as the SQLite implementation.
type fakeRepo struct {
	chores        map[string]storage.Chore
	history       []storage.HistoryEntry
	subtasks      map[int64]storage.Subtask
	completions   []storage.SubtaskCompletion
	assignees     map[string]storage.Assignee
	notifications []struct{ ChoreID, SentAt string }
	nextID        int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		chores:    make(map[string]storage.Chore),
		subtasks:  make(map[int64]storage.Subtask),
		assignees: make(map[string]storage.Assignee),
	}
}

func (f *fakeRepo) CreateChore(_ context.Context, in storage.Chore) error {
	f.chores[in.ID] = in
	return nil
}

func (f *fakeRepo) GetChore(_ context.Context, id string) (storage.Chore, error) {
	chore, ok := f.chores[id]
	if !ok {
		return storage.Chore{}, storage.ErrNotFound
	}
	return chore, nil
}

func (f *fakeRepo) UpdateChore(_ context.Context, in storage.Chore) error {
	if _, ok := f.chores[in.ID]; !ok {
		return storage.ErrNotFound
	}
	f.chores[in.ID] = in
	return nil
}

func (f *fakeRepo) DeleteChore(_ context.Context, id string) error {
	if _, ok := f.chores[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.chores, id)
	return nil
}

func (f *fakeRepo) ListChores(_ context.Context, filter storage.ChoreListFilter) ([]storage.Chore, error) {
	out := make([]storage.Chore, 0, len(f.chores))
	for _, c := range f.chores {
		if filter.AssignedTo != "" && c.AssignedTo != filter.AssignedTo {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) AppendHistory(_ context.Context, in storage.HistoryEntry) (int64, error) {
	f.nextID++
	in.ID = f.nextID
	f.history = append(f.history, in)
	return in.ID, nil
}

func (f *fakeRepo) ListHistory(_ context.Context, filter storage.HistoryListFilter) ([]storage.HistoryEntry, error) {
	out := make([]storage.HistoryEntry, 0)
	for _, h := range f.history {
		if filter.ChoreID != "" && h.ChoreID != filter.ChoreID {
			continue
		}
		if filter.DoneBy != "" && h.DoneBy != filter.DoneBy {
			continue
		}
		if filter.Since != "" && h.DoneAt < filter.Since {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoneAt > out[j].DoneAt })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeRepo) DeleteHistoryOnDay(_ context.Context, choreID string, day string) error {
	kept := f.history[:0]
	for _, h := range f.history {
		if h.ChoreID == choreID && strings.HasPrefix(h.DoneAt, day) {
			continue
		}
		kept = append(kept, h)
	}
	f.history = kept
	return nil
}

func (f *fakeRepo) CreateSubtask(_ context.Context, in storage.Subtask) (int64, error) {
	f.nextID++
	in.ID = f.nextID
	f.subtasks[in.ID] = in
	return in.ID, nil
}

func (f *fakeRepo) GetSubtask(_ context.Context, id int64) (storage.Subtask, error) {
	subtask, ok := f.subtasks[id]
	if !ok {
		return storage.Subtask{}, storage.ErrNotFound
	}
	return subtask, nil
}

func (f *fakeRepo) DeleteSubtask(_ context.Context, id int64) error {
	if _, ok := f.subtasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.subtasks, id)
	return nil
}

func (f *fakeRepo) ListSubtasks(_ context.Context, choreID string) ([]storage.Subtask, error) {
	out := make([]storage.Subtask, 0)
	for _, s := range f.subtasks {
		if s.ChoreID == choreID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeRepo) AppendSubtaskCompletion(_ context.Context, in storage.SubtaskCompletion) (int64, error) {
	f.nextID++
	in.ID = f.nextID
	f.completions = append(f.completions, in)
	return in.ID, nil
}

func (f *fakeRepo) ListSubtaskCompletions(_ context.Context, choreID string, since string) ([]storage.SubtaskCompletion, error) {
	out := make([]storage.SubtaskCompletion, 0)
	for _, sc := range f.completions {
		subtask, ok := f.subtasks[sc.SubtaskID]
		if !ok || subtask.ChoreID != choreID {
			continue
		}
		if since != "" && sc.DoneAt < since {
			continue
		}
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoneAt < out[j].DoneAt })
	return out, nil
}

func (f *fakeRepo) DeleteSubtaskCompletionsOnDay(_ context.Context, choreID string, day string) error {
	kept := f.completions[:0]
	for _, sc := range f.completions {
		subtask, ok := f.subtasks[sc.SubtaskID]
		if ok && subtask.ChoreID == choreID && strings.HasPrefix(sc.DoneAt, day) {
			continue
		}
		kept = append(kept, sc)
	}
	f.completions = kept
	return nil
}

func (f *fakeRepo) CreateAssignee(_ context.Context, in storage.Assignee) error {
	f.assignees[in.ID] = in
	return nil
}

func (f *fakeRepo) GetAssignee(_ context.Context, id string) (storage.Assignee, error) {
	assignee, ok := f.assignees[id]
	if !ok {
		return storage.Assignee{}, storage.ErrNotFound
	}
	return assignee, nil
}

func (f *fakeRepo) UpdateAssignee(_ context.Context, in storage.Assignee) error {
	if _, ok := f.assignees[in.ID]; !ok {
		return storage.ErrNotFound
	}
	f.assignees[in.ID] = in
	return nil
}

func (f *fakeRepo) DeleteAssignee(_ context.Context, id string) error {
	if _, ok := f.assignees[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.assignees, id)
	return nil
}

func (f *fakeRepo) ListAssignees(_ context.Context, filter storage.AssigneeListFilter) ([]storage.Assignee, error) {
	out := make([]storage.Assignee, 0, len(f.assignees))
	for _, a := range f.assignees {
		if filter.ActiveOnly && !a.Active {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) AppendNotificationLog(_ context.Context, choreID string, sentAt string) error {
	f.notifications = append(f.notifications, struct{ ChoreID, SentAt string }{choreID, sentAt})
	return nil
}

func (f *fakeRepo) CountNotificationsOnDay(_ context.Context, choreID string, day string) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.ChoreID == choreID && strings.HasPrefix(n.SentAt, day) {
			count++
		}
	}
	return count, nil
}

var _ storage.Repository = (*fakeRepo)(nil)
