package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

// FormatTime renders an instant the way new rows store it. Reads stay
// tolerant of older formats; writes are always canonical.
func FormatTime(t time.Time) string {
	return t.Format(sqliteTimeLayout)
}

// DayKey renders the calendar-date prefix shared by every accepted
// timestamp format, used for same-day matching.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

const choreColumns = `id, name, frequency_type, frequency_days, frequency_times, assigned_to, priority, duration,
	last_done, last_done_by, icon, description, alternate_with, use_alternating, start_month, start_day,
	weekday, monthday, notify_when_due, active_days, active_monthdays, has_subtasks,
	subtasks_completion_type, subtasks_streak_type, subtasks_period`

func (r *SQLiteRepository) CreateChore(ctx context.Context, in Chore) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chores (`+choreColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, in.FrequencyType, in.FrequencyDays, in.FrequencyTimes, in.AssignedTo, in.Priority, in.Duration,
		nullString(in.LastDone), in.LastDoneBy, in.Icon, in.Description, in.AlternateWith, boolInt(in.UseAlternating), in.StartMonth, in.StartDay,
		in.Weekday, in.Monthday, boolInt(in.NotifyWhenDue), nullString(in.ActiveDays), nullString(in.ActiveMonthdays), boolInt(in.HasSubtasks),
		in.CompletionType, in.StreakType, in.SubtasksPeriod,
	)
	return err
}

func (r *SQLiteRepository) GetChore(ctx context.Context, id string) (Chore, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+choreColumns+` FROM chores WHERE id = ?`, id)
	chore, err := scanChore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Chore{}, ErrNotFound
		}
		return Chore{}, err
	}
	return chore, nil
}

func (r *SQLiteRepository) UpdateChore(ctx context.Context, in Chore) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chores
		SET name = ?, frequency_type = ?, frequency_days = ?, frequency_times = ?, assigned_to = ?, priority = ?, duration = ?,
			last_done = ?, last_done_by = ?, icon = ?, description = ?, alternate_with = ?, use_alternating = ?,
			start_month = ?, start_day = ?, weekday = ?, monthday = ?, notify_when_due = ?,
			active_days = ?, active_monthdays = ?, has_subtasks = ?,
			subtasks_completion_type = ?, subtasks_streak_type = ?, subtasks_period = ?
		WHERE id = ?`,
		in.Name, in.FrequencyType, in.FrequencyDays, in.FrequencyTimes, in.AssignedTo, in.Priority, in.Duration,
		nullString(in.LastDone), in.LastDoneBy, in.Icon, in.Description, in.AlternateWith, boolInt(in.UseAlternating),
		in.StartMonth, in.StartDay, in.Weekday, in.Monthday, boolInt(in.NotifyWhenDue),
		nullString(in.ActiveDays), nullString(in.ActiveMonthdays), boolInt(in.HasSubtasks),
		in.CompletionType, in.StreakType, in.SubtasksPeriod, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteChore(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListChores(ctx context.Context, filter ChoreListFilter) ([]Chore, error) {
	query := `SELECT ` + choreColumns + ` FROM chores`
	args := make([]any, 0, 3)
	if filter.AssignedTo != "" {
		query += ` WHERE assigned_to = ?`
		args = append(args, filter.AssignedTo)
	}
	query += ` ORDER BY name ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Chore, 0)
	for rows.Next() {
		chore, scanErr := scanChore(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, chore)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AppendHistory(ctx context.Context, in HistoryEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO chore_history (chore_id, done_by, done_at)
		VALUES (?, ?, ?)`,
		in.ChoreID, in.DoneBy, in.DoneAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ListHistory(ctx context.Context, filter HistoryListFilter) ([]HistoryEntry, error) {
	query := `SELECT id, chore_id, done_by, done_at FROM chore_history`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.ChoreID != "" {
		clauses = append(clauses, "chore_id = ?")
		args = append(args, filter.ChoreID)
	}
	if filter.DoneBy != "" {
		clauses = append(clauses, "done_by = ?")
		args = append(args, filter.DoneBy)
	}
	if filter.Since != "" {
		clauses = append(clauses, "done_at >= ?")
		args = append(args, filter.Since)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY done_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryEntry, 0)
	for rows.Next() {
		var item HistoryEntry
		if scanErr := rows.Scan(&item.ID, &item.ChoreID, &item.DoneBy, &item.DoneAt); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteHistoryOnDay(ctx context.Context, choreID string, day string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM chore_history
		WHERE chore_id = ? AND substr(done_at, 1, 10) = ?`,
		choreID, day,
	)
	return err
}

func (r *SQLiteRepository) CreateSubtask(ctx context.Context, in Subtask) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO subtasks (chore_id, name, position)
		VALUES (?, ?, ?)`,
		in.ChoreID, in.Name, in.Position,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetSubtask(ctx context.Context, id int64) (Subtask, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, chore_id, name, position FROM subtasks WHERE id = ?`, id)
	var out Subtask
	if err := row.Scan(&out.ID, &out.ChoreID, &out.Name, &out.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subtask{}, ErrNotFound
		}
		return Subtask{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteSubtask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListSubtasks(ctx context.Context, choreID string) ([]Subtask, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chore_id, name, position
		FROM subtasks WHERE chore_id = ?
		ORDER BY position ASC, id ASC`, choreID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Subtask, 0)
	for rows.Next() {
		var item Subtask
		if scanErr := rows.Scan(&item.ID, &item.ChoreID, &item.Name, &item.Position); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AppendSubtaskCompletion(ctx context.Context, in SubtaskCompletion) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO subtask_completions (subtask_id, done_by, done_at)
		VALUES (?, ?, ?)`,
		in.SubtaskID, in.DoneBy, in.DoneAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ListSubtaskCompletions(ctx context.Context, choreID string, since string) ([]SubtaskCompletion, error) {
	query := `
		SELECT sc.id, sc.subtask_id, sc.done_by, sc.done_at
		FROM subtask_completions sc
		JOIN subtasks s ON sc.subtask_id = s.id
		WHERE s.chore_id = ?`
	args := []any{choreID}
	if since != "" {
		query += ` AND sc.done_at >= ?`
		args = append(args, since)
	}
	query += ` ORDER BY sc.done_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SubtaskCompletion, 0)
	for rows.Next() {
		var item SubtaskCompletion
		if scanErr := rows.Scan(&item.ID, &item.SubtaskID, &item.DoneBy, &item.DoneAt); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteSubtaskCompletionsOnDay(ctx context.Context, choreID string, day string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM subtask_completions
		WHERE subtask_id IN (SELECT id FROM subtasks WHERE chore_id = ?)
		AND substr(done_at, 1, 10) = ?`,
		choreID, day,
	)
	return err
}

func (r *SQLiteRepository) CreateAssignee(ctx context.Context, in Assignee) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assignees (id, name, color, active)
		VALUES (?, ?, ?, ?)`,
		in.ID, in.Name, in.Color, boolInt(in.Active),
	)
	return err
}

func (r *SQLiteRepository) GetAssignee(ctx context.Context, id string) (Assignee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, color, active FROM assignees WHERE id = ?`, id)
	item, err := scanAssignee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignee{}, ErrNotFound
		}
		return Assignee{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateAssignee(ctx context.Context, in Assignee) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE assignees SET name = ?, color = ?, active = ? WHERE id = ?`,
		in.Name, in.Color, boolInt(in.Active), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteAssignee(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListAssignees(ctx context.Context, filter AssigneeListFilter) ([]Assignee, error) {
	query := `SELECT id, name, color, active FROM assignees`
	args := make([]any, 0, 2)
	if filter.ActiveOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Assignee, 0)
	for rows.Next() {
		item, scanErr := scanAssignee(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AppendNotificationLog(ctx context.Context, choreID string, sentAt string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_log (chore_id, sent_at)
		VALUES (?, ?)`,
		choreID, sentAt,
	)
	return err
}

func (r *SQLiteRepository) CountNotificationsOnDay(ctx context.Context, choreID string, day string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notification_log
		WHERE chore_id = ? AND substr(sent_at, 1, 10) = ?`,
		choreID, day,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChore(s scanner) (Chore, error) {
	var out Chore
	var lastDone sql.NullString
	var activeDays sql.NullString
	var activeMonthdays sql.NullString
	var useAlternating int
	var notifyWhenDue int
	var hasSubtasks int
	if err := s.Scan(
		&out.ID, &out.Name, &out.FrequencyType, &out.FrequencyDays, &out.FrequencyTimes, &out.AssignedTo, &out.Priority, &out.Duration,
		&lastDone, &out.LastDoneBy, &out.Icon, &out.Description, &out.AlternateWith, &useAlternating, &out.StartMonth, &out.StartDay,
		&out.Weekday, &out.Monthday, &notifyWhenDue, &activeDays, &activeMonthdays, &hasSubtasks,
		&out.CompletionType, &out.StreakType, &out.SubtasksPeriod,
	); err != nil {
		return Chore{}, err
	}
	out.LastDone = lastDone.String
	out.ActiveDays = activeDays.String
	out.ActiveMonthdays = activeMonthdays.String
	out.UseAlternating = useAlternating == 1
	out.NotifyWhenDue = notifyWhenDue == 1
	out.HasSubtasks = hasSubtasks == 1
	return out, nil
}

func scanAssignee(s scanner) (Assignee, error) {
	var out Assignee
	var active int
	if err := s.Scan(&out.ID, &out.Name, &out.Color, &active); err != nil {
		return Assignee{}, err
	}
	out.Active = active == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
