package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateChore(ctx context.Context, in Chore) error
	GetChore(ctx context.Context, id string) (Chore, error)
	UpdateChore(ctx context.Context, in Chore) error
	DeleteChore(ctx context.Context, id string) error
	ListChores(ctx context.Context, filter ChoreListFilter) ([]Chore, error)

	AppendHistory(ctx context.Context, in HistoryEntry) (int64, error)
	ListHistory(ctx context.Context, filter HistoryListFilter) ([]HistoryEntry, error)
	DeleteHistoryOnDay(ctx context.Context, choreID string, day string) error

	CreateSubtask(ctx context.Context, in Subtask) (int64, error)
	GetSubtask(ctx context.Context, id int64) (Subtask, error)
	DeleteSubtask(ctx context.Context, id int64) error
	ListSubtasks(ctx context.Context, choreID string) ([]Subtask, error)

	AppendSubtaskCompletion(ctx context.Context, in SubtaskCompletion) (int64, error)
	ListSubtaskCompletions(ctx context.Context, choreID string, since string) ([]SubtaskCompletion, error)
	DeleteSubtaskCompletionsOnDay(ctx context.Context, choreID string, day string) error

	CreateAssignee(ctx context.Context, in Assignee) error
	GetAssignee(ctx context.Context, id string) (Assignee, error)
	UpdateAssignee(ctx context.Context, in Assignee) error
	DeleteAssignee(ctx context.Context, id string) error
	ListAssignees(ctx context.Context, filter AssigneeListFilter) ([]Assignee, error)

	AppendNotificationLog(ctx context.Context, choreID string, sentAt string) error
	CountNotificationsOnDay(ctx context.Context, choreID string, day string) (int, error)
}
